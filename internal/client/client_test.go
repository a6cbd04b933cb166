package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"online","model":"tiny.en"}`))
	}))
	defer srv.Close()

	health, err := New(srv.URL + "/").Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "online", health.Status)
	assert.Equal(t, "tiny.en", health.Model)
}

func TestClient_Transcribe(t *testing.T) {
	audio := []byte("RIFF....WAVEfmt ")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transcribe", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)

		assert.Equal(t, "recording.wav", header.Filename)
		assert.Equal(t, audio, data)

		w.Write([]byte(`{"transcript":"Hello world."}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Transcribe(context.Background(), "recording.wav", bytes.NewReader(audio))
	require.NoError(t, err)
	assert.Equal(t, "Hello world.", resp.Transcript)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"bad request", http.StatusBadRequest, `{"detail":"No file uploaded"}`, "No file uploaded"},
		{"model fault", http.StatusInternalServerError, `{"detail":"Invalid data found when processing input"}`, "Invalid data found when processing input"},
		{"plain text", http.StatusBadGateway, "upstream down\n", "upstream down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.Copy(io.Discard, r.Body)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).Transcribe(context.Background(), "a.wav", bytes.NewReader([]byte("x")))

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr), "got %v", err)
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, tt.wantDetail, statusErr.Detail)
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Health(context.Background())
	assert.ErrorContains(t, err, "request to")
}

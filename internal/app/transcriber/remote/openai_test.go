package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	apperrors "whisper-stt/internal/app/errors"
	"whisper-stt/internal/app/transcriber"
	"whisper-stt/internal/config"
)

func newTestTranscriber(t *testing.T, handler http.HandlerFunc) *Transcriber {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	model, err := New(config.ModelConfig{
		OpenAI: config.OpenAIConfig{
			APIKey:  "sk-test-0123456789abcdef",
			BaseURL: srv.URL + "/v1",
			Model:   "whisper-1",
			Timeout: 5 * time.Second,
		},
	}, zap.NewNop())
	require.NoError(t, err)
	return model.(*Transcriber)
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recording.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF0000WAVE"), 0o600))
	return path
}

func TestTranscriber_Transcribe(t *testing.T) {
	tr := newTestTranscriber(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test-0123456789abcdef", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"task": "transcribe",
			"language": "english",
			"duration": 2.5,
			"text": "Hello world.",
			"segments": [
				{"id": 0, "start": 0.0, "end": 1.2, "text": " Hello"},
				{"id": 1, "start": 1.2, "end": 2.5, "text": " world."}
			]
		}`))
	})
	assert.Equal(t, "whisper-1", tr.Name())

	result, err := tr.Transcribe(context.Background(), writeAudio(t), transcriber.Options{BeamSize: 1})
	require.NoError(t, err)
	assert.Equal(t, "english", result.Info.Language)
	assert.Equal(t, 2500*time.Millisecond, result.Info.Duration)

	segments, err := transcriber.Drain(result.Segments)
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, transcriber.Segment{ID: 1, Start: 1.2, End: 2.5, Text: " world."}, segments[1])
	assert.Equal(t, "Hello  world.", transcriber.JoinText(segments))
}

func TestTranscriber_TextOnlyResponse(t *testing.T) {
	tr := newTestTranscriber(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "just text", "duration": 1.0}`))
	})

	result, err := tr.Transcribe(context.Background(), writeAudio(t), transcriber.Options{})
	require.NoError(t, err)
	segments, err := transcriber.Drain(result.Segments)
	require.NoError(t, err)
	assert.Equal(t, "just text", transcriber.JoinText(segments))
}

func TestTranscriber_APIErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantMsg   string
		retryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, "OpenAI API key is invalid or missing", false},
		{"rate limited", http.StatusTooManyRequests, "OpenAI API rate limit exceeded", true},
		{"too large", http.StatusRequestEntityTooLarge, "Audio file is too large for OpenAI API", false},
		{"bad file", http.StatusBadRequest, "Invalid audio file: upstream said no", false},
		{"server error", http.StatusBadGateway, "OpenAI API error: upstream said no", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestTranscriber(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error": {"message": "upstream said no", "type": "invalid_request_error"}}`))
			})

			_, err := tr.Transcribe(context.Background(), writeAudio(t), transcriber.Options{})
			var remoteErr *Error
			require.True(t, errors.As(err, &remoteErr), "got %v", err)
			assert.Equal(t, tt.wantMsg, remoteErr.Message)
			assert.Equal(t, tt.retryable, remoteErr.Retryable)
		})
	}
}

func TestTranscriber_MissingFile(t *testing.T) {
	tr := newTestTranscriber(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := tr.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.wav"), transcriber.Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(config.ModelConfig{OpenAI: config.OpenAIConfig{Model: "whisper-1"}}, zap.NewNop())
	assert.ErrorIs(t, err, apperrors.ErrBackendConfig)
}

func TestTranscriber_NameIsRemoteModel(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  string
	}{
		{"configured model", "gpt-4o-transcribe", "gpt-4o-transcribe"},
		{"default model", "", "whisper-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := New(config.ModelConfig{
				Variant: "tiny.en",
				OpenAI:  config.OpenAIConfig{APIKey: "sk-test", Model: tt.model},
			}, zap.NewNop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, model.Name())
		})
	}
}

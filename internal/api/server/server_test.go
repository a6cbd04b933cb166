package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"whisper-stt/internal/api/services"
	"whisper-stt/internal/app/metrics"
	"whisper-stt/internal/app/scratch"
	"whisper-stt/internal/app/testutil"
	"whisper-stt/internal/config"
)

type testServer struct {
	server *Server
	model  *testutil.MockModel
	dir    string
}

func setupServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Environment = "test"
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"

	dir := filepath.Join(t.TempDir(), "temp_audio")
	area, err := scratch.New(dir)
	require.NoError(t, err)

	model := testutil.NewMockModel(t)
	model.On("Name").Return("tiny.en").Maybe()

	m := metrics.New()
	service := services.NewTranscriptionService(model, area, cfg.Model, m, zap.NewNop())

	return &testServer{
		server: NewServer(NewConfig(cfg), service, m, zap.NewNop()),
		model:  model,
		dir:    dir,
	}
}

func (ts *testServer) upload(t *testing.T, field, filename string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := testutil.MultipartUpload(t, field, filename, testutil.WAVBytes())
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(rec, req)
	return rec
}

func TestServer_HealthCheck(t *testing.T) {
	ts := setupServer(t)

	rec := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"online","model":"tiny.en"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_Transcribe(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		filename   string
		setupMocks func(*testutil.MockModel)
		wantStatus int
		wantBody   string
	}{
		{
			name:     "single segment",
			field:    "file",
			filename: "recording.wav",
			setupMocks: func(m *testutil.MockModel) {
				m.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).
					Return(testutil.Segments("testing one two three"), nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"transcript":"testing one two three"}`,
		},
		{
			name:     "segments are joined",
			field:    "file",
			filename: "recording.wav",
			setupMocks: func(m *testutil.MockModel) {
				m.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).
					Return(testutil.Segments("Hello", "world."), nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"transcript":"Hello world."}`,
		},
		{
			name:     "whitespace filename",
			field:    "file",
			filename: " ",
			setupMocks: func(m *testutil.MockModel) {
				m.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).
					Return(testutil.Segments("spoken"), nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"transcript":"spoken"}`,
		},
		{
			name:       "no file",
			field:      "",
			setupMocks: func(m *testutil.MockModel) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"detail":"No file uploaded"}`,
		},
		{
			name:     "model fault",
			field:    "file",
			filename: "notes.txt",
			setupMocks: func(m *testutil.MockModel) {
				m.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.New("Invalid data found when processing input"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"detail":"Invalid data found when processing input"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupServer(t)
			tt.setupMocks(ts.model)

			rec := ts.upload(t, tt.field, tt.filename)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Empty(t, testutil.ScratchEntries(t, ts.dir))
			ts.model.AssertExpectations(t)
		})
	}
}

func TestServer_CORS(t *testing.T) {
	ts := setupServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/transcribe", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestServer_MetricsEndpoint(t *testing.T) {
	ts := setupServer(t)
	ts.model.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).
		Return(testutil.Segments("ok"), nil)

	require.Equal(t, http.StatusOK, ts.upload(t, "file", "a.wav").Code)

	rec := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `stt_transcriptions_total{outcome="success"} 1`)
	assert.Contains(t, rec.Body.String(), `stt_http_requests_total{method="POST",route="/transcribe",status="200"} 1`)
}

func TestServer_MetricsDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Environment = "test"
	cfg.Metrics.Enabled = false

	area, err := scratch.New(t.TempDir())
	require.NoError(t, err)
	model := testutil.NewMockModel(t)
	m := metrics.New()
	srv := NewServer(NewConfig(cfg), services.NewTranscriptionService(model, area, cfg.Model, m, zap.NewNop()), m, zap.NewNop())

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_StartAndShutdown(t *testing.T) {
	ts := setupServer(t)
	require.NoError(t, ts.server.Start())

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ts.server.Addr() + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, ts.server.Shutdown(ctx))

	_, err = client.Get("http://" + ts.server.Addr() + "/healthz")
	assert.Error(t, err)
}

// Package remote transcribes through an OpenAI-compatible audio API.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	apperrors "whisper-stt/internal/app/errors"
	"whisper-stt/internal/app/transcriber"
	"whisper-stt/internal/config"
)

func init() {
	transcriber.Register(config.BackendOpenAI, New)
}

// Transcriber sends audio files to the audio/transcriptions endpoint and
// asks for verbose_json so segments come back with timestamps.
type Transcriber struct {
	client   *openai.Client
	model    string
	language string
	timeout  time.Duration
	logger   *zap.Logger
}

// New builds the client from cfg.OpenAI.
func New(cfg config.ModelConfig, logger *zap.Logger) (transcriber.Model, error) {
	oc := cfg.OpenAI
	if oc.APIKey == "" {
		return nil, fmt.Errorf("%w: openai api key is required", apperrors.ErrBackendConfig)
	}

	clientConfig := openai.DefaultConfig(oc.APIKey)
	if oc.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(oc.BaseURL, "/")
	}

	logger.Info("Using OpenAI transcription API",
		zap.String("model", oc.Model),
		zap.String("base_url", clientConfig.BaseURL))

	return &Transcriber{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    lo.Ternary(oc.Model != "", oc.Model, openai.Whisper1),
		language: cfg.Language,
		timeout:  oc.Timeout,
		logger:   logger,
	}, nil
}

// Name returns the remote model name.
func (t *Transcriber) Name() string {
	return t.model
}

// Transcribe uploads the file and returns its segments. The response is
// complete before Transcribe returns; segments are replayed from memory.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string, opts transcriber.Options) (*transcriber.Transcription, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, err
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Language: lo.CoalesceOrEmpty(opts.Language, t.language),
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	start := time.Now()
	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, handleAPIError(err)
	}

	t.logger.Debug("Remote transcription finished",
		zap.Int("segments", len(resp.Segments)),
		zap.Duration("elapsed", time.Since(start)))

	return &transcriber.Transcription{
		Info: transcriber.Info{
			Language: resp.Language,
			Duration: time.Duration(resp.Duration * float64(time.Second)),
		},
		Segments: transcriber.FromSlice(segments(resp)),
	}, nil
}

func segments(resp openai.AudioResponse) []transcriber.Segment {
	if len(resp.Segments) == 0 {
		if strings.TrimSpace(resp.Text) == "" {
			return nil
		}
		return []transcriber.Segment{{Start: 0, End: resp.Duration, Text: resp.Text}}
	}

	out := make([]transcriber.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		out = append(out, transcriber.Segment{
			ID:    s.ID,
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}
	return out
}

// Error is a failed remote call with a message fit for API clients.
type Error struct {
	Message   string
	Retryable bool
	cause     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

func handleAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return &Error{Message: "OpenAI API key is invalid or missing", cause: err}
		case http.StatusTooManyRequests:
			return &Error{Message: "OpenAI API rate limit exceeded", Retryable: true, cause: err}
		case http.StatusRequestEntityTooLarge:
			return &Error{Message: "Audio file is too large for OpenAI API", cause: err}
		case http.StatusBadRequest:
			return &Error{Message: "Invalid audio file: " + apiErr.Message, cause: err}
		default:
			return &Error{Message: "OpenAI API error: " + apiErr.Message, Retryable: apiErr.HTTPStatusCode >= 500, cause: err}
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{Message: fmt.Sprintf("OpenAI request failed with status %d", reqErr.HTTPStatusCode), Retryable: true, cause: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return &Error{Message: fmt.Sprintf("Transcription failed: %v", err), Retryable: true, cause: err}
}

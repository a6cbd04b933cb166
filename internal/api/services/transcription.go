package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"whisper-stt/internal/api/dto"
	apierrors "whisper-stt/internal/api/errors"
	"whisper-stt/internal/app/metrics"
	"whisper-stt/internal/app/scratch"
	"whisper-stt/internal/app/transcriber"
	"whisper-stt/internal/config"
)

const statusOnline = "online"

// transcriptionService implements TranscriptionService
type transcriptionService struct {
	model    transcriber.Model
	scratch  *scratch.Area
	sem      *semaphore.Weighted // nil when unbounded
	language string
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewTranscriptionService creates a new transcription service
func NewTranscriptionService(
	model transcriber.Model,
	area *scratch.Area,
	cfg config.ModelConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) TranscriptionService {
	s := &transcriptionService{
		model:    model,
		scratch:  area,
		language: cfg.Language,
		metrics:  m,
		logger:   logger,
	}
	if cfg.MaxConcurrency > 0 {
		s.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrency))
	}
	return s
}

// Health reports the loaded model.
func (s *transcriptionService) Health() dto.HealthResponse {
	return dto.HealthResponse{
		Status: statusOnline,
		Model:  s.model.Name(),
	}
}

// Transcribe runs the full request lifecycle for one upload.
func (s *transcriptionService) Transcribe(ctx context.Context, upload dto.Upload) (*dto.TranscriptResponse, error) {
	filename, ok := scratch.SanitizeFilename(upload.Filename)
	if !ok || upload.Content == nil {
		s.record(metrics.OutcomeInvalid)
		return nil, apierrors.NewInvalidRequestError(apierrors.MsgNoFileUploaded)
	}

	file, err := s.scratch.Create(filename)
	if err != nil {
		s.logger.Error("Failed to create scratch file", zap.String("filename", filename), zap.Error(err))
		s.record(metrics.OutcomeIOFault)
		return nil, apierrors.NewIOFault(err)
	}
	s.metrics.ScratchInUse.Inc()
	defer s.cleanup(file)

	logger := s.logger.With(zap.String("file_id", file.ID.String()), zap.String("filename", filename))

	size, err := file.Write(upload.Content)
	if err != nil {
		logger.Error("Failed to store upload", zap.Error(err))
		s.record(metrics.OutcomeIOFault)
		return nil, apierrors.NewIOFault(err)
	}

	if s.sem != nil {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			logger.Info("Request cancelled while waiting for the model", zap.Error(err))
			s.record(metrics.OutcomeCanceled)
			return nil, apierrors.NewInferenceFailure(err)
		}
		defer s.sem.Release(1)
	}

	logger.Debug("Transcribing", zap.Int64("bytes", size))
	start := time.Now()

	segments, info, err := s.run(ctx, file.Path)
	elapsed := time.Since(start)
	s.metrics.TranscriptionSeconds.Observe(elapsed.Seconds())

	if err != nil {
		logger.Error("Transcription failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		if errors.Is(err, context.Canceled) {
			s.record(metrics.OutcomeCanceled)
		} else {
			s.record(metrics.OutcomeFailure)
		}
		return nil, apierrors.NewInferenceFailure(err)
	}

	transcript := transcriber.JoinText(segments)
	logger.Info("Transcription completed",
		zap.Int("segments", len(segments)),
		zap.String("language", info.Language),
		zap.Duration("audio", info.Duration),
		zap.Duration("elapsed", elapsed))
	s.record(metrics.OutcomeSuccess)

	return &dto.TranscriptResponse{Transcript: transcript}, nil
}

// run calls the model with greedy decoding and drains every segment.
func (s *transcriptionService) run(ctx context.Context, path string) ([]transcriber.Segment, transcriber.Info, error) {
	result, err := s.model.Transcribe(ctx, path, transcriber.Options{
		BeamSize: transcriber.GreedyBeamSize,
		Language: s.language,
	})
	if err != nil {
		return nil, transcriber.Info{}, err
	}

	segments, err := transcriber.Drain(result.Segments)
	return segments, result.Info, err
}

func (s *transcriptionService) cleanup(file *scratch.File) {
	s.metrics.ScratchInUse.Dec()
	if err := file.Remove(); err != nil {
		s.metrics.ScratchCleanupFailed.Inc()
		s.logger.Warn("Failed to remove scratch file", zap.String("path", file.Path), zap.Error(err))
	}
}

func (s *transcriptionService) record(outcome string) {
	s.metrics.Transcriptions.WithLabelValues(outcome).Inc()
}

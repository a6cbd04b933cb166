package services

import (
	"context"

	"whisper-stt/internal/api/dto"
)

// TranscriptionService defines the interface for transcription operations
type TranscriptionService interface {
	// Health reports the service status and the loaded model variant.
	Health() dto.HealthResponse
	// Transcribe stores the upload in the scratch area, runs the model on it
	// and removes the scratch file again, whatever the outcome.
	Transcribe(ctx context.Context, upload dto.Upload) (*dto.TranscriptResponse, error)
}

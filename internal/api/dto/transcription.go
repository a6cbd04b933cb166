package dto

import (
	"io"
	"mime/multipart"

	"whisper-stt/internal/api/errors"
	"whisper-stt/internal/app/scratch"
)

// HealthResponse represents the response of GET /
type HealthResponse struct {
	Status string `json:"status" example:"online"`
	Model  string `json:"model" example:"tiny.en"`
}

// LivenessResponse represents the response of GET /healthz
type LivenessResponse struct {
	Status    string `json:"status" example:"healthy"`
	Timestamp int64  `json:"timestamp" example:"1735689600"`
}

// TranscriptResponse represents a completed transcription
type TranscriptResponse struct {
	Transcript string `json:"transcript" example:"Hello world."`
}

// UploadForm is the multipart body of POST /transcribe
type UploadForm struct {
	File *multipart.FileHeader `form:"file" binding:"required" swaggerignore:"true"`
}

// Validate rejects uploads whose filename reduces to nothing.
func (f *UploadForm) Validate() error {
	if _, ok := scratch.SanitizeFilename(f.File.Filename); !ok {
		return errors.NewInvalidRequestError(errors.MsgNoFileUploaded)
	}
	return nil
}

// Filename returns the sanitised base name of the uploaded file.
func (f *UploadForm) Filename() string {
	name, _ := scratch.SanitizeFilename(f.File.Filename)
	return name
}

// Upload is an uploaded file as handed to the service layer.
type Upload struct {
	Filename string
	Content  io.Reader
}

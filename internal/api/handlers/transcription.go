package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"whisper-stt/internal/api/dto"
	"whisper-stt/internal/api/errors"
	"whisper-stt/internal/api/middleware"
	"whisper-stt/internal/api/services"
)

// TranscriptionHandler handles the speech-to-text endpoints
type TranscriptionHandler struct {
	service services.TranscriptionService
}

// NewTranscriptionHandler creates a new transcription handler
func NewTranscriptionHandler(service services.TranscriptionService) *TranscriptionHandler {
	return &TranscriptionHandler{
		service: service,
	}
}

// Health handles GET /
// Reports that the service is up and which model it serves
//
// @Summary Health check
// @Description Reports service status and the loaded model variant
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is online"
// @Router / [get]
func (h *TranscriptionHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Health())
}

// Liveness handles GET /healthz
//
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} dto.LivenessResponse
// @Router /healthz [get]
func (h *TranscriptionHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, dto.LivenessResponse{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
	})
}

// Transcribe handles POST /transcribe
// Transcribes one uploaded audio file
//
// @Summary Transcribe an audio file
// @Description Stores the upload in a per-request scratch file, runs the speech-to-text model with greedy decoding and returns the joined transcript. The scratch file is always deleted.
// @Tags transcription
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Audio file"
// @Success 200 {object} dto.TranscriptResponse "Transcript"
// @Failure 400 {object} errors.APIError "No file uploaded"
// @Failure 500 {object} errors.APIError "Model or storage failure"
// @Router /transcribe [post]
func (h *TranscriptionHandler) Transcribe(c *gin.Context) {
	var form dto.UploadForm
	if err := middleware.ValidateForm(c, &form, errors.MsgNoFileUploaded); err != nil {
		middleware.HandleError(c, err)
		return
	}

	file, err := form.File.Open()
	if err != nil {
		middleware.HandleError(c, errors.NewIOFault(err))
		return
	}
	defer file.Close()

	response, err := h.service.Transcribe(c.Request.Context(), dto.Upload{
		Filename: form.Filename(),
		Content:  file,
	})
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

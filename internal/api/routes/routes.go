package routes

import (
	"github.com/gin-gonic/gin"
	"whisper-stt/internal/api/handlers"
	"whisper-stt/internal/api/services"
)

// ServiceContainer holds the services the routes depend on
type ServiceContainer struct {
	TranscriptionService services.TranscriptionService
}

// RegisterRoutes registers the public API routes
func RegisterRoutes(router gin.IRouter, container *ServiceContainer) {
	transcriptionHandler := handlers.NewTranscriptionHandler(container.TranscriptionService)

	router.GET("/", transcriptionHandler.Health)
	router.GET("/healthz", transcriptionHandler.Liveness)
	router.POST("/transcribe", transcriptionHandler.Transcribe)
}

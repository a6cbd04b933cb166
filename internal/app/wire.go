//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"go.uber.org/zap"
	"whisper-stt/internal/api/server"
	"whisper-stt/internal/api/services"
	"whisper-stt/internal/app/metrics"
	"whisper-stt/internal/config"
)

// InitializeServer assembles the HTTP server with its model, scratch area and
// metrics. The returned cleanup releases the model.
func InitializeServer(cfg *config.Config, logger *zap.Logger) (*server.Server, func(), error) {
	wire.Build(
		provideModelConfig,
		provideModel,
		provideScratchArea,
		provideServerConfig,
		metrics.New,
		services.NewTranscriptionService,
		server.NewServer,
	)
	return nil, nil, nil
}

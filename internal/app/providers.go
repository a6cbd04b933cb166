package app

import (
	"go.uber.org/zap"
	"whisper-stt/internal/api/server"
	"whisper-stt/internal/app/scratch"
	"whisper-stt/internal/app/transcriber"
	_ "whisper-stt/internal/app/transcriber/fasterwhisper"
	_ "whisper-stt/internal/app/transcriber/remote"
	_ "whisper-stt/internal/app/transcriber/whispercpp"
	"whisper-stt/internal/config"
)

// provideModelConfig exposes the model section on its own so services do not
// depend on the whole configuration.
func provideModelConfig(cfg *config.Config) config.ModelConfig {
	return cfg.Model
}

// provideModel loads the configured backend once for the life of the process.
func provideModel(cfg config.ModelConfig, logger *zap.Logger) (transcriber.Model, func(), error) {
	model, err := transcriber.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if closer, ok := model.(transcriber.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.Warn("Failed to close model", zap.Error(err))
			}
		}
	}
	return model, cleanup, nil
}

// provideScratchArea creates the scratch directory and clears files left by
// a previous run.
func provideScratchArea(cfg *config.Config, logger *zap.Logger) (*scratch.Area, error) {
	area, err := scratch.New(cfg.Scratch.Dir)
	if err != nil {
		return nil, err
	}

	if cfg.Scratch.SweepOnStart {
		removed, err := area.Sweep(cfg.Scratch.SweepOlderThan)
		if err != nil {
			logger.Warn("Scratch sweep incomplete", zap.Error(err))
		}
		if removed > 0 {
			logger.Info("Removed stale scratch files", zap.Int("count", removed), zap.String("dir", area.Dir()))
		}
	}
	return area, nil
}

// provideServerConfig maps the application config onto the HTTP server.
func provideServerConfig(cfg *config.Config) server.Config {
	return server.NewConfig(cfg)
}

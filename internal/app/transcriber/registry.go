package transcriber

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	apperrors "whisper-stt/internal/app/errors"
	"whisper-stt/internal/config"
)

// Creator builds a Model from the process configuration. It is called once,
// at startup; expensive loading belongs here rather than in Transcribe.
type Creator func(cfg config.ModelConfig, logger *zap.Logger) (Model, error)

// registry stores backend creation functions
var (
	registry      = make(map[string]Creator)
	registryMutex sync.RWMutex
)

// Register registers a backend creator under name. Backends call it from init.
func Register(name string, creator Creator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	registry[name] = creator
}

// Open creates the model for cfg.Backend.
func Open(cfg config.ModelConfig, logger *zap.Logger) (Model, error) {
	registryMutex.RLock()
	creator, ok := registry[cfg.Backend]
	registryMutex.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", apperrors.ErrUnknownBackend, cfg.Backend, Registered())
	}

	model, err := creator(cfg, logger.With(zap.String("backend", cfg.Backend)))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s backend: %w", cfg.Backend, err)
	}
	return model, nil
}

// Registered returns all registered backend names, sorted.
func Registered() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

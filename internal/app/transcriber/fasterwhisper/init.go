package fasterwhisper

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	apperrors "whisper-stt/internal/app/errors"
	"whisper-stt/internal/app/transcriber"
	"whisper-stt/internal/config"
)

//go:embed assets/worker.py
var workerScript []byte

func init() {
	transcriber.Register(config.BackendFasterWhisper, New)
}

// New writes the worker script to a temporary directory and starts the pool
// described by cfg.FasterWhisper.
func New(cfg config.ModelConfig, logger *zap.Logger) (transcriber.Model, error) {
	fw := cfg.FasterWhisper
	if _, err := exec.LookPath(fw.Python); err != nil {
		return nil, fmt.Errorf("%w: python interpreter %q not found: %w", apperrors.ErrBackendConfig, fw.Python, err)
	}

	dir, err := os.MkdirTemp("", "stt-faster-whisper-")
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create worker directory")
	}
	script := filepath.Join(dir, "worker.py")
	if err := os.WriteFile(script, workerScript, 0o644); err != nil {
		os.RemoveAll(dir)
		return nil, apperrors.Wrap(err, "failed to write worker script")
	}

	args := []string{
		script,
		"--model", cfg.Variant,
		"--device", cfg.Device,
		"--compute-type", cfg.ComputeType,
		"--cpu-threads", strconv.Itoa(fw.CPUThreads),
	}

	logger.Info("Loading faster-whisper model",
		zap.String("variant", cfg.Variant),
		zap.String("device", cfg.Device),
		zap.String("compute_type", cfg.ComputeType),
		zap.Int("workers", fw.Workers))

	pool, err := NewPool(PoolConfig{
		Name:         cfg.Variant,
		Workers:      fw.Workers,
		StartTimeout: fw.StartTimeout,
		Launch: func() *exec.Cmd {
			cmd := exec.Command(fw.Python, args...)
			cmd.Env = append(os.Environ(), "PYTHONUNBUFFERED=1")
			return cmd
		},
	}, logger)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	pool.cleanup = func() error { return os.RemoveAll(dir) }
	return pool, nil
}

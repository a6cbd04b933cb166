package serve

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"whisper-stt/internal/app"
	"whisper-stt/internal/app/common"
	"whisper-stt/internal/config"
)

var configPath string
var host string
var port string

func init() {
	Cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml",
		"YAML configuration file; missing files fall back to defaults and environment")
	Cmd.Flags().StringVar(&host, "host", config.DefaultHost, "address to listen on")
	Cmd.Flags().StringVarP(&port, "port", "p", config.DefaultPort, "port to listen on")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the speech-to-text HTTP server",
	Long: `Start the speech-to-text HTTP server

- Loads the configured model once, before accepting requests
- GET / reports status and model, POST /transcribe accepts a multipart "file" upload
- Stops gracefully on SIGINT or SIGTERM`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger, err := common.NewLogger(cfg.Log.Development, cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logger.Sync()

		return run(cmd.Context(), cfg, logger)
	},
}

// loadConfig applies --host and --port on top of file and environment
// settings, but only when given explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("host") {
		cfg.Server.Host = host
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Loading model",
		zap.String("backend", cfg.Model.Backend),
		zap.String("variant", cfg.Model.Variant),
		zap.String("device", cfg.Model.Device),
		zap.String("compute_type", cfg.Model.ComputeType),
	)

	srv, cleanup, err := app.InitializeServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	defer cleanup()

	if err := srv.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Received shutdown signal", zap.String("address", cfg.Server.Address()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

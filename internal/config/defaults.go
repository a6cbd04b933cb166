package config

import "time"

// Server defaults
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = "8000"
	DefaultEnvironment     = "development"
	DefaultReadTimeout     = 5 * time.Minute
	DefaultWriteTimeout    = 5 * time.Minute
	DefaultIdleTimeout     = 2 * time.Minute
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsPath     = "/metrics"
)

// Scratch area defaults
const (
	DefaultScratchDir     = "temp_audio"
	DefaultSweepOlderThan = time.Hour
)

// Model defaults, mirroring a small English-only model on CPU with int8 weights.
const (
	DefaultBackend     = "faster_whisper"
	DefaultVariant     = "tiny.en"
	DefaultDevice      = "cpu"
	DefaultComputeType = "int8"

	DefaultPython             = "python3"
	DefaultWorkers            = 1
	DefaultWorkerStartTimeout = 2 * time.Minute

	DefaultWhisperCppBinary   = "whisper-cli"
	DefaultWhisperCppModelDir = "models"

	DefaultOpenAIModel   = "whisper-1"
	DefaultOpenAITimeout = 60 * time.Second
)

// Backend names accepted by model.backend
const (
	BackendFasterWhisper = "faster_whisper"
	BackendWhisperCpp    = "whisper_cpp"
	BackendOpenAI        = "openai"
)

// Default returns a configuration populated with every default value.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			Environment:     DefaultEnvironment,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			CORS: CORSConfig{
				AllowOrigins:     []string{"*"},
				AllowCredentials: true,
			},
		},
		Scratch: ScratchConfig{
			Dir:            DefaultScratchDir,
			SweepOnStart:   true,
			SweepOlderThan: DefaultSweepOlderThan,
		},
		Model: ModelConfig{
			Backend:     DefaultBackend,
			Variant:     DefaultVariant,
			Device:      DefaultDevice,
			ComputeType: DefaultComputeType,
			FasterWhisper: FasterWhisperConfig{
				Python:       DefaultPython,
				Workers:      DefaultWorkers,
				StartTimeout: DefaultWorkerStartTimeout,
			},
			WhisperCpp: WhisperCppConfig{
				Binary:   DefaultWhisperCppBinary,
				ModelDir: DefaultWhisperCppModelDir,
			},
			OpenAI: OpenAIConfig{
				Model:   DefaultOpenAIModel,
				Timeout: DefaultOpenAITimeout,
			},
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
	}
}

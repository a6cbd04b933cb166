package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete process configuration. Everything in it is fixed at
// process start; nothing is adjustable per request.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Scratch ScratchConfig `yaml:"scratch"`
	Model   ModelConfig   `yaml:"model"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" validate:"required"`
	Port            string        `yaml:"port" validate:"required,numeric"`
	Environment     string        `yaml:"environment" validate:"oneof=development production test"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	CORS            CORSConfig    `yaml:"cors"`
}

// CORSConfig lists allowed origins; methods and headers are always unrestricted.
type CORSConfig struct {
	AllowOrigins     []string `yaml:"allow_origins" validate:"min=1"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

// ScratchConfig configures the directory holding per-request audio files.
type ScratchConfig struct {
	Dir            string        `yaml:"dir" validate:"required"`
	SweepOnStart   bool          `yaml:"sweep_on_start"`
	SweepOlderThan time.Duration `yaml:"sweep_older_than" validate:"gte=0"`
}

// ModelConfig selects and configures the transcription backend.
type ModelConfig struct {
	Backend     string `yaml:"backend" validate:"required,oneof=faster_whisper whisper_cpp openai"`
	Variant     string `yaml:"variant" validate:"required"`
	Device      string `yaml:"device" validate:"required,oneof=cpu cuda auto"`
	ComputeType string `yaml:"compute_type" validate:"required"`
	Language    string `yaml:"language"`

	// MaxConcurrency bounds in-flight transcriptions; 0 means unbounded.
	MaxConcurrency int `yaml:"max_concurrency" validate:"gte=0,lte=100"`

	FasterWhisper FasterWhisperConfig `yaml:"faster_whisper"`
	WhisperCpp    WhisperCppConfig    `yaml:"whisper_cpp"`
	OpenAI        OpenAIConfig        `yaml:"openai"`
}

// FasterWhisperConfig configures the persistent Python worker pool.
type FasterWhisperConfig struct {
	Python       string        `yaml:"python" validate:"required"`
	Workers      int           `yaml:"workers" validate:"gte=1,lte=32"`
	StartTimeout time.Duration `yaml:"start_timeout" validate:"gt=0"`
	CPUThreads   int           `yaml:"cpu_threads" validate:"gte=0"`
}

// WhisperCppConfig configures the whisper.cpp command line backend.
type WhisperCppConfig struct {
	Binary    string `yaml:"binary" validate:"required"`
	ModelDir  string `yaml:"model_dir"`
	ModelPath string `yaml:"model_path"`
	Threads   int    `yaml:"threads" validate:"gte=0"`
}

// OpenAIConfig configures the remote OpenAI-compatible backend.
type OpenAIConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	Model   string        `yaml:"model" validate:"required"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"omitempty,startswith=/"`
}

// Address returns host:port for the HTTP listener.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// Load builds the configuration: defaults, then the YAML file at path (if it
// exists), then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// ${VAR} references are expanded before parsing
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnvOrDefault("STT_HOST", c.Server.Host)
	c.Server.Port = getEnvOrDefault("STT_PORT", c.Server.Port)
	c.Server.Environment = getEnvOrDefault("STT_ENV", c.Server.Environment)
	c.Scratch.Dir = getEnvOrDefault("STT_SCRATCH_DIR", c.Scratch.Dir)
	c.Model.Backend = getEnvOrDefault("STT_MODEL_BACKEND", c.Model.Backend)
	c.Model.Variant = getEnvOrDefault("STT_MODEL_VARIANT", c.Model.Variant)
	c.Model.Device = getEnvOrDefault("STT_MODEL_DEVICE", c.Model.Device)
	c.Model.ComputeType = getEnvOrDefault("STT_MODEL_COMPUTE_TYPE", c.Model.ComputeType)
	c.Model.OpenAI.APIKey = getEnvOrDefault("OPENAI_API_KEY", c.Model.OpenAI.APIKey)
	c.Model.OpenAI.BaseURL = getEnvOrDefault("OPENAI_BASE_URL", c.Model.OpenAI.BaseURL)
	c.Log.Level = getEnvOrDefault("STT_LOG_LEVEL", c.Log.Level)
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

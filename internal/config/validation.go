package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags first, then the rules that span several fields.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return describe(validationErrs)
		}
		return err
	}

	if err := ValidateTimeout(cfg.Server.ShutdownTimeout, "shutdown"); err != nil {
		return err
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Path == "" {
		return fmt.Errorf("metrics.path is required when metrics are enabled")
	}

	switch cfg.Model.Backend {
	case BackendOpenAI:
		if err := ValidateAPIKey(cfg.Model.OpenAI.APIKey); err != nil {
			return err
		}
	case BackendWhisperCpp:
		if cfg.Model.WhisperCpp.ModelPath == "" && cfg.Model.WhisperCpp.ModelDir == "" {
			return fmt.Errorf("whisper_cpp requires model_path or model_dir")
		}
	}

	return nil
}

func describe(errs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(errs))
	for _, fieldError := range errs {
		field := strings.ToLower(fieldError.Namespace())

		switch fieldError.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", field, fieldError.Param()))
		case "gt", "gte", "lte", "min":
			msgs = append(msgs, fmt.Sprintf("%s is out of range (%s %s)", field, fieldError.Tag(), fieldError.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ValidateTimeout validates timeout duration
func ValidateTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s timeout must be positive", name)
	}
	if timeout > 30*time.Minute {
		return fmt.Errorf("%s timeout too large (max 30 minutes)", name)
	}
	return nil
}

// ValidateAPIKey validates OpenAI API key format
func ValidateAPIKey(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("OpenAI API key is required for the openai backend")
	}
	if !strings.HasPrefix(apiKey, "sk-") {
		return fmt.Errorf("invalid OpenAI API key format: must start with 'sk-'")
	}
	if len(apiKey) < 20 {
		return fmt.Errorf("invalid OpenAI API key format: too short")
	}
	return nil
}

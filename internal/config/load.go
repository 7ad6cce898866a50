package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config.yaml and from EMBER_*
// environment variables, with env taking precedence. Returns a validated
// Config or an error describing what is missing or malformed.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults double as the key registry: viper only binds environment
	// variables for keys it knows about.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.image_model", "imagen-3.0-generate-002")
	v.SetDefault("ai.transport_timeout_seconds", 120)
	v.SetDefault("engine.max_retries", 3)
	v.SetDefault("engine.timeout_ms", 30000)
	v.SetDefault("engine.backoff_multiplier", 2.0)
	v.SetDefault("engine.backoff_jitter", false)
	v.SetDefault("engine.enable_logging", true)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("EMBER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

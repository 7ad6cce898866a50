package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	AI     AIConfig     `mapstructure:"ai"     validate:"required"`
	Engine EngineConfig `mapstructure:"engine" validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// AIConfig contains settings for the shared generation client.
type AIConfig struct {
	// APIKey may be empty: the server still starts, and generation
	// endpoints fail fast with a "service not configured" error instead of
	// burning a retry cycle against a guaranteed-to-fail call.
	APIKey string `mapstructure:"api_key"`

	Model      string `mapstructure:"model"       validate:"required"`
	ImageModel string `mapstructure:"image_model" validate:"required"`

	// TransportTimeoutSeconds bounds the underlying HTTP client. This is a
	// separate layer from the engine's per-attempt timeout and the two must
	// not be conflated.
	TransportTimeoutSeconds int `mapstructure:"transport_timeout_seconds" validate:"required,gt=0"`
}

// EngineConfig carries the default execution policy applied to each
// generation service's engine.
type EngineConfig struct {
	MaxRetries        int     `mapstructure:"max_retries"        validate:"gte=0"`
	TimeoutMs         int     `mapstructure:"timeout_ms"         validate:"required,gt=0"`
	BackoffMultiplier float64 `mapstructure:"backoff_multiplier" validate:"required,gte=1"`
	BackoffJitter     bool    `mapstructure:"backoff_jitter"`
	EnableLogging     bool    `mapstructure:"enable_logging"`
}

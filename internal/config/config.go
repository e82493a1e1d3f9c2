package config

import "time"

// Config holds all application configuration, grouped by concern.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Jobs     JobConfig      `mapstructure:"jobs" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"required,gt=0"`
}

// ShutdownTimeout returns the graceful shutdown budget.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains token signing and password hashing settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"gt=0,lte=1440"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"gt=0,gtfield=TokenLifetimeMinutes"`
}

// RedisConfig configures the statistics cache. An empty URL disables it.
type RedisConfig struct {
	URL             string `mapstructure:"url" validate:"omitempty,url"`
	StatsTTLSeconds int    `mapstructure:"stats_ttl_seconds" validate:"gt=0"`
}

// StatsTTL returns how long cached statistics stay valid.
func (c RedisConfig) StatsTTL() time.Duration {
	return time.Duration(c.StatsTTLSeconds) * time.Second
}

// JobConfig configures the background job runner.
type JobConfig struct {
	WorkerCount         int    `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize           int    `mapstructure:"queue_size" validate:"gt=0"`
	MaxAttempts         int    `mapstructure:"max_attempts" validate:"gt=0,lte=20"`
	RetryBaseDelayMs    int    `mapstructure:"retry_base_delay_ms" validate:"gt=0"`
	StuckJobAgeMinutes  int    `mapstructure:"stuck_job_age_minutes" validate:"gt=0"`
	ExportDir           string `mapstructure:"export_dir" validate:"required"`
	ExportFormat        string `mapstructure:"export_format" validate:"oneof=json yaml"`
	ReminderConcurrency int    `mapstructure:"reminder_concurrency" validate:"gt=0"`
}

// RetryBaseDelay returns the first backoff interval.
func (c JobConfig) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond
}

// StuckJobAge returns how long a job may stay in processing before recovery
// picks it up again.
func (c JobConfig) StuckJobAge() time.Duration {
	return time.Duration(c.StuckJobAgeMinutes) * time.Minute
}

// LLMConfig configures subtask suggestions. An empty API key disables them.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name" validate:"required_with=GeminiAPIKey"`
	MaxRetries   int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
}

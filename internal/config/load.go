package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// TASKBOARD_DATABASE_URL for database.url.
const EnvPrefix = "TASKBOARD"

// Load reads configuration from defaults, an optional config.yaml in the
// working directory, and environment variables, in increasing precedence.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is like Load but reads the given YAML file instead of searching
// for config.yaml. A missing file is an error when path is non-empty.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.stats_ttl_seconds", 300)

	v.SetDefault("jobs.worker_count", 2)
	v.SetDefault("jobs.queue_size", 100)
	v.SetDefault("jobs.max_attempts", 5)
	v.SetDefault("jobs.retry_base_delay_ms", 500)
	v.SetDefault("jobs.stuck_job_age_minutes", 30)
	v.SetDefault("jobs.export_dir", "exports")
	v.SetDefault("jobs.export_format", "json")
	v.SetDefault("jobs.reminder_concurrency", 4)

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
}

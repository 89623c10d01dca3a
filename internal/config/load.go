package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file: taskflow.yaml in the working directory. A
	// missing file is fine; a malformed one is not.
	v.SetConfigName("taskflow")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables with the TASKFLOW_ prefix override file values,
	// e.g. TASKFLOW_SERVER_PORT=8080, TASKFLOW_DATABASE_URL=postgres://...
	v.SetEnvPrefix("TASKFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers default values for everything that has a sensible
// default. Secrets (database URL, JWT secret, bot token) have none and must
// be supplied by the environment.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	// Secrets default to empty so viper knows the keys and can see their
	// environment overrides; validation rejects the empty values.
	v.SetDefault("database.url", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.api_base_url", "")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("delivery.queue_size", 100)
	v.SetDefault("delivery.worker_count", 2)
	v.SetDefault("delivery.max_attempts", 1)
	v.SetDefault("delivery.retry_backoff", 2*time.Second)
	v.SetDefault("scheduler.sweep_interval", time.Hour)
}

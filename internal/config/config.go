package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Delivery  DeliveryConfig  `mapstructure:"delivery"  validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// DeliveryConfig controls the external-channel delivery queue and workers.
type DeliveryConfig struct {
	// QueueSize is the buffer size of the in-memory delivery job queue.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`

	// WorkerCount is the number of concurrent delivery workers.
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`

	// MaxAttempts bounds delivery attempts per job. The default of 1 keeps
	// external delivery explicitly best-effort with no retry; raising it
	// enables bounded retry with backoff.
	MaxAttempts int `mapstructure:"max_attempts" validate:"required,gt=0"`

	// RetryBackoff is the pause between attempts when MaxAttempts > 1.
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

// SchedulerConfig controls the periodic overdue-task sweep.
type SchedulerConfig struct {
	// SweepInterval is the cadence of the overdue scan.
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"required"`
}

// TelegramConfig contains settings for the external messaging channel.
// When BotToken is empty the external delivery path is disabled and the
// worker pool is still started but never receives jobs.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`

	// APIBaseURL overrides the Bot API endpoint, primarily for tests.
	APIBaseURL string `mapstructure:"api_base_url"`
}

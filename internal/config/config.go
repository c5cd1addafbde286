package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Cards     CardsConfig     `mapstructure:"cards"     validate:"required"`
	Valuation ValuationConfig `mapstructure:"valuation" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// CardsConfig configures the starter-card feed consulted at registration.
type CardsConfig struct {
	FeedURL      string `mapstructure:"feed_url"      validate:"required,url"`
	FeedAPIKey   string `mapstructure:"feed_api_key"  validate:"required"`
	FeedLeagueID string `mapstructure:"feed_league_id" validate:"required"`
	StarterCount int    `mapstructure:"starter_count" validate:"required,gt=0"`
}

// ValuationConfig configures the background revaluation pipeline.
type ValuationConfig struct {
	// SweepSchedule is a cron expression for the periodic full-population
	// revaluation that backstops the post-trade trigger.
	SweepSchedule string `mapstructure:"sweep_schedule" validate:"required"`
	WorkerCount   int    `mapstructure:"worker_count"   validate:"required,gt=0"`
	QueueSize     int    `mapstructure:"queue_size"     validate:"required,gt=0"`
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// FTC Events API (Basic auth)
	FTCAPIUsername string        `envconfig:"FTC_API_USERNAME" required:"true"`
	FTCAPIToken    string        `envconfig:"FTC_API_TOKEN" required:"true"`
	FTCAPIBaseURL  string        `envconfig:"FTC_API_BASE_URL" default:"https://ftc-api.firstinspires.org/v2.0"`
	FTCAPITimeout  time.Duration `envconfig:"FTC_API_TIMEOUT" default:"30s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"ftcinsight"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"ftcinsight"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (API response cache)
	RedisHost     string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int           `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"6h"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Season processing
	CurrentSeason int `envconfig:"CURRENT_SEASON" default:"2024"`
	FirstSeason   int `envconfig:"FIRST_SEASON" default:"2022"`
	MaxWorkers    int `envconfig:"MAX_WORKERS" default:"10"`

	// Rating model
	PriorEpa    float64 `envconfig:"PRIOR_EPA" default:"20.0"`
	EpaKFactor  float64 `envconfig:"EPA_K_FACTOR" default:"0.2"`
	PredictionK float64 `envconfig:"PREDICTION_K" default:"0.8"`

	// Scheduler
	EnableScheduler    bool          `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled bool          `envconfig:"INITIAL_SYNC_ENABLED" default:"true"`
	NightlyRefreshCron string        `envconfig:"NIGHTLY_REFRESH_CRON" default:"0 2 * * *"`
	UpdateInterval     time.Duration `envconfig:"UPDATE_INTERVAL" default:"30m"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.FTCAPIUsername == "" || c.FTCAPIToken == "" {
		return fmt.Errorf("FTC_API_USERNAME and FTC_API_TOKEN are required")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.MaxWorkers < 1 {
		return fmt.Errorf("MAX_WORKERS must be at least 1")
	}

	if c.FirstSeason > c.CurrentSeason {
		return fmt.Errorf("FIRST_SEASON must not be after CURRENT_SEASON")
	}

	if c.EpaKFactor <= 0 || c.EpaKFactor > 1 {
		return fmt.Errorf("EPA_K_FACTOR must be in (0, 1]")
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

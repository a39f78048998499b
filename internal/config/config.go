package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	Log     LogConfig
	Metrics MetricsConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
// In production, always set DB_PASSWORD via environment variable.
// In production, set DB_SSLMODE to "require" or "verify-full".
type DBConfig struct {
	Host           string `envconfig:"DB_HOST" default:"localhost"`
	Port           int    `envconfig:"DB_PORT" default:"5432"`
	User           string `envconfig:"DB_USER" default:"postgres"`
	Password       string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name           string `envconfig:"DB_NAME" default:"coupon_db"`
	SSLMode        string `envconfig:"DB_SSLMODE" default:"disable"` // Use "require" in production
	MaxConns       int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns       int    `envconfig:"DB_MIN_CONNS" default:"5"`
	ConnectRetries int    `envconfig:"DB_CONNECT_RETRIES" default:"5"`
	AutoMigrate    bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns)
}

// RedisConfig holds the category cache configuration.
type RedisConfig struct {
	Enabled          bool   `envconfig:"REDIS_ENABLED" default:"true"`
	Addr             string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password         string `envconfig:"REDIS_PASSWORD" default:""`
	DB               int    `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix        string `envconfig:"REDIS_KEY_PREFIX" default:"coupon-engine:"`
	CategoryCacheTTL int    `envconfig:"CATEGORY_CACHE_TTL" default:"300"` // seconds
}

// CategoryTTL returns the category cache TTL as a duration.
func (c RedisConfig) CategoryTTL() time.Duration {
	return time.Duration(c.CategoryCacheTTL) * time.Second
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"METRICS_PATH" default:"/metrics"`
}

// Load reads the given dotenv files (".env" when none are given) and then
// parses environment variables into the Config struct. Missing dotenv files
// are skipped; variables already present in the environment take precedence.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

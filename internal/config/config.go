// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	App      AppConfig
	Seed     SeedConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	CORSOrigin   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds store connection settings. Driver is one of
// "postgres", "sqlite" or "memory".
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	Migrations bool
	Debug      bool
}

// AuthConfig holds token and guard settings.
type AuthConfig struct {
	JWTSecret       string
	TokenTTL        time.Duration
	RefreshIdentity bool
	EnforceRoles    bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env               string
	LogLevel          string
	OrderStatusPolicy string
}

// SeedConfig controls startup seeding.
type SeedConfig struct {
	DefaultUser     bool
	DefaultEmail    string
	DefaultPassword string
	Catalog         bool
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// IsDevelopment reports whether the app runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.App.Env != "production"
}

// Load reads an optional .env file and then configuration from the environment.
// It uses sensible defaults for local development.
func Load() *Config {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", getEnv("NODE_ENV", "development"))
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("API_PORT", getEnv("PORT", "3001")),
			CORSOrigin:   getEnv("CORS_ORIGIN", "http://localhost:3000"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:       getEnv("DATABASE_HOST", "localhost"),
			Port:       getEnvInt("DATABASE_PORT", 5432),
			User:       getEnv("DATABASE_USER", "dragon_user"),
			Password:   getEnv("DATABASE_PASSWORD", "dragon_password"),
			DBName:     getEnv("DATABASE_NAME", "dragon_db"),
			SSLMode:    getEnv("DATABASE_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "dragon.db"),
			Migrations: getEnvBool("MIGRATIONS", false),
			Debug:      getEnvBool("DB_DEBUG", false),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", devSecret(env)),
			TokenTTL:        getEnvDuration("JWT_TTL", 24*time.Hour),
			RefreshIdentity: getEnvBool("AUTH_REFRESH_IDENTITY", false),
			EnforceRoles:    getEnvBool("AUTH_ENFORCE_ROLES", false),
		},
		App: AppConfig{
			Env:               env,
			LogLevel:          getEnv("LOG_LEVEL", "info"),
			OrderStatusPolicy: strings.ToLower(getEnv("ORDER_STATUS_POLICY", "permissive")),
		},
		Seed: SeedConfig{
			DefaultUser:     getEnvBool("SEED_DEFAULT_USER", env != "production"),
			DefaultEmail:    getEnv("DEFAULT_USER_EMAIL", "admin@dragon.local"),
			DefaultPassword: getEnv("DEFAULT_USER_PASSWORD", "dragon123"),
			Catalog:         getEnvBool("SEED_CATALOG", false),
		},
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "postgres", "sqlite", "memory":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER: unsupported driver %q", c.Database.Driver))
	}
	switch c.App.OrderStatusPolicy {
	case "permissive", "lifecycle":
	default:
		errs = append(errs, fmt.Errorf("ORDER_STATUS_POLICY: unsupported policy %q", c.App.OrderStatusPolicy))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// LogLevel maps LOG_LEVEL to a slog level.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// devSecret keeps local runs working without JWT_SECRET; production must set it.
func devSecret(env string) string {
	if env == "production" {
		return ""
	}
	return "dev-jwt-secret-change-me"
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

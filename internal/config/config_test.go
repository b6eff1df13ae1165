package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("API_PORT", "")
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_TTL", "")

	cfg := Load()
	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
	assert.True(t, cfg.IsDevelopment())
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("API_PORT", "9000")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "90")
	t.Setenv("AUTH_ENFORCE_ROLES", "yes")
	t.Setenv("ORDER_STATUS_POLICY", "Lifecycle")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 90*time.Second, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Auth.EnforceRoles)
	assert.Equal(t, "lifecycle", cfg.App.OrderStatusPolicy)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
	assert.False(t, cfg.IsDevelopment())
	require.NoError(t, cfg.Validate())
}

func TestValidate_Rejects(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("ORDER_STATUS_POLICY", "strict")

	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "oracle")
	assert.Contains(t, err.Error(), "strict")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", d.DSN())
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", d.URL())
}

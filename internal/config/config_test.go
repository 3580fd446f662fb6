package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Setenv("NODE_ENV", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL_TEST", "file::memory:")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "file::memory:", cfg.DatabaseURL)
	assert.Equal(t, "tidechain", cfg.JWTIssuer)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.EnforceInventory)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	viper.Reset()
	t.Setenv("NODE_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_Overrides(t *testing.T) {
	viper.Reset()
	t.Setenv("NODE_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("DATABASE_URL_PROD", "postgres://prod")
	t.Setenv("ENFORCE_CREDIT_INVENTORY", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ADMIN_EMAIL", " Admin@TideChain.org ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://prod", cfg.DatabaseURL)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.True(t, cfg.EnforceInventory)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "admin@tidechain.org", cfg.AdminEmail)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Setenv("NODE_ENV", "")
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DatabaseURL(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "development")
	t.Setenv("NODE_ENV", "")
	t.Setenv("DATABASE_URL_DEV", "")
	t.Setenv("DATABASE_DRIVER", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL_DEV")

	viper.Reset()
	t.Setenv("DATABASE_DRIVER", "sqlite")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "tidechain.db", cfg.DatabaseURL)
	assert.Equal(t, "http://localhost:8080", cfg.PublicAPIURL)
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"SERVER_HOST", "SERVER_PORT", "ENVIRONMENT",
	"SERVER_READ_TIMEOUT_SECONDS", "SERVER_WRITE_TIMEOUT_SECONDS", "SERVER_SHUTDOWN_TIMEOUT_SECONDS",
	"LOG_LEVEL", "LOG_FORMAT", "STORAGE_TYPE", "DATABASE_URL", "DB_MAX_CONNS", "REDIS_URL",
	"JWT_SECRET", "BCRYPT_COST", "CORS_ALLOWED_ORIGINS", "ADMIN_EMAIL", "ADMIN_PASSWORD", "ADMIN_NAME",
}

// clearEnv blanks every variable Load reads so the host environment cannot leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, EnvDevelopment, cfg.Server.Environment)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Equal(t, int32(10), cfg.Storage.MaxConns)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, devJWTSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, AdminConfig{Email: "admin@badminton.club", Password: "admin123", Name: "Administrator"}, cfg.Admin)
	assert.Len(t, cfg.Warnings, 2)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORAGE_TYPE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/club")
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test,")
	t.Setenv("ADMIN_PASSWORD", "changed-password")

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, slog.LevelDebug, cfg.Logging.Level)
	assert.Equal(t, StoragePostgres, cfg.Storage.Type)
	assert.Equal(t, int32(4), cfg.Storage.MaxConns)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadProductionDefaultsToJSONAndNeedsSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	_, err := Load(noEnvFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.IsProduction())
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already set, even to ""
	require.NoError(t, os.Unsetenv("ADMIN_NAME"))
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ADMIN_NAME=Club Captain\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("ADMIN_NAME") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Club Captain", cfg.Admin.Name)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad port", map[string]string{"SERVER_PORT": "http"}, "SERVER_PORT"},
		{"port range", map[string]string{"SERVER_PORT": "70000"}, "SERVER_PORT"},
		{"environment", map[string]string{"ENVIRONMENT": "staging"}, "ENVIRONMENT"},
		{"log level", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"storage", map[string]string{"STORAGE_TYPE": "sqlite"}, "STORAGE_TYPE"},
		{"redis url", map[string]string{"STORAGE_TYPE": "redis"}, "REDIS_URL"},
		{"database url", map[string]string{"STORAGE_TYPE": "postgres"}, "DATABASE_URL"},
		{"bcrypt cost", map[string]string{"BCRYPT_COST": "2"}, "BCRYPT_COST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(noEnvFile(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger := LoggingConfig{Level: slog.LevelWarn, Format: "json"}.NewLogger(os.Stderr)
	assert.IsType(t, &slog.JSONHandler{}, logger.Handler())
	assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
}

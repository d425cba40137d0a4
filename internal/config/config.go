// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment names
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// MinJWTSecretLength is enforced in production
const MinJWTSecretLength = 32

// devJWTSecret is used outside production when JWT_SECRET is unset
const devJWTSecret = "clubhouse-development-secret-do-not-use"

type Config struct {
	Server   ServerConfig
	Logging  LoggingConfig
	Storage  StorageConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Admin    AdminConfig
	Warnings []string
}

type ServerConfig struct {
	Host            string
	Port            int
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type LoggingConfig struct {
	Level  slog.Level
	Format string // text or json
}

type StorageConfig struct {
	Type        string
	DatabaseURL string
	MaxConns    int32
	RedisURL    string
}

type AuthConfig struct {
	JWTSecret  string
	BcryptCost int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// AdminConfig is the account created when the store has no accounts.
// The default password is public; change it after first login.
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

// IsProduction reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// Load reads the given .env files (default ".env"), then the environment.
// Missing .env files are ignored; variables already set are never overridden.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}

	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func load() (*Config, error) {
	var errs []error
	intVar := func(key string, def int) int {
		v, err := getInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", ""),
			Port:            intVar("SERVER_PORT", 3001),
			Environment:     getEnv("ENVIRONMENT", EnvDevelopment),
			ReadTimeout:     time.Duration(intVar("SERVER_READ_TIMEOUT_SECONDS", 15)) * time.Second,
			WriteTimeout:    time.Duration(intVar("SERVER_WRITE_TIMEOUT_SECONDS", 15)) * time.Second,
			ShutdownTimeout: time.Duration(intVar("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Storage: StorageConfig{
			Type:        strings.ToLower(getEnv("STORAGE_TYPE", StorageMemory)),
			DatabaseURL: getEnv("DATABASE_URL", ""),
			MaxConns:    int32(intVar("DB_MAX_CONNS", 10)),
			RedisURL:    getEnv("REDIS_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			BcryptCost: intVar("BCRYPT_COST", 10),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@badminton.club"),
			Password: getEnv("ADMIN_PASSWORD", "admin123"),
			Name:     getEnv("ADMIN_NAME", "Administrator"),
		},
	}

	defaultFormat := "text"
	if cfg.IsProduction() {
		defaultFormat = "json"
	}
	cfg.Logging.Format = strings.ToLower(getEnv("LOG_FORMAT", defaultFormat))
	if err := cfg.Logging.Level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	if cfg.Auth.JWTSecret == "" && !cfg.IsProduction() {
		cfg.Auth.JWTSecret = devJWTSecret
		cfg.Warnings = append(cfg.Warnings, "JWT_SECRET not set, using an insecure development secret")
	}
	if cfg.Admin.Password == "admin123" {
		cfg.Warnings = append(cfg.Warnings, "ADMIN_PASSWORD is the public default, change the bootstrap admin password")
	}

	return cfg, errors.Join(errs...)
}

func (c *Config) validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT out of range: %d", c.Server.Port))
	}
	switch c.Server.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("ENVIRONMENT must be %s or %s, got %q", EnvDevelopment, EnvProduction, c.Server.Environment))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Logging.Format))
	}

	switch c.Storage.Type {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when STORAGE_TYPE=redis"))
		}
	case StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORAGE_TYPE=postgres"))
		}
		if c.Storage.MaxConns <= 0 {
			errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.Storage.MaxConns))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_TYPE must be memory, redis or postgres, got %q", c.Storage.Type))
	}

	if c.IsProduction() && len(c.Auth.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters in production", MinJWTSecretLength))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost))
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must not be empty"))
	}

	return errors.Join(errs...)
}

// NewLogger builds the process logger described by the logging config
func (c LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

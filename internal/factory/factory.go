package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/clubhouse/internal/config"
	"github.com/mcoot/clubhouse/internal/dependencies/clock"
	"github.com/mcoot/clubhouse/internal/services/auth"
	"github.com/mcoot/clubhouse/internal/services/calendar"
	"github.com/mcoot/clubhouse/internal/services/news"
	"github.com/mcoot/clubhouse/internal/services/registration"
	"github.com/mcoot/clubhouse/internal/services/roster"
	"github.com/mcoot/clubhouse/internal/services/session"
	"github.com/mcoot/clubhouse/internal/storage"
	"github.com/mcoot/clubhouse/internal/storage/memory"
	pgstorage "github.com/mcoot/clubhouse/internal/storage/postgres"
	redisstorage "github.com/mcoot/clubhouse/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageMemory
	StorageTypeRedis    = config.StorageRedis
	StorageTypePostgres = config.StoragePostgres
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Services
	Issuer              *session.Issuer
	AuthService         *auth.Service
	RegistrationService *registration.Service
	RosterService       *roster.Service
	CalendarService     *calendar.Service
	NewsService         *news.Service
}

// Config holds configuration for the application factory
type Config struct {
	// JWTSecret signs session tokens (required)
	JWTSecret []byte
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds database settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
}

// ConfigFrom translates the server configuration into factory settings
func ConfigFrom(cfg *config.Config, logger *slog.Logger) Config {
	out := Config{
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		AuthConfig:  auth.Config{BcryptCost: cfg.Auth.BcryptCost},
		Logger:      logger,
		StorageType: cfg.Storage.Type,
	}
	switch cfg.Storage.Type {
	case StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Storage.RedisURL
		out.RedisConfig = &redisCfg
	case StorageTypePostgres:
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.URL = cfg.Storage.DatabaseURL
		pgCfg.MaxConns = cfg.Storage.MaxConns
		out.PostgresConfig = &pgCfg
	}
	return out
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	if len(cfg.JWTSecret) == 0 {
		return nil, errors.New("JWTSecret is required")
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := pgstorage.New(ctx, *cfg.PostgresConfig, logger)
		if err != nil {
			return nil, err
		}
		store = pgStore
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'postgres'", storageType)
	}
	logger.Info("storage ready", slog.String("type", storageType))

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.BcryptCost == 0 {
		authCfg = auth.DefaultConfig()
	}

	app, err := newWithDependencies(store, clock.New(), cfg.JWTSecret, authCfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, secret []byte, authCfg auth.Config) (*App, error) {
	issuer := session.NewIssuer(secret, clk)
	authService, err := auth.New(store, clk, issuer, authCfg)
	if err != nil {
		return nil, err
	}
	registrationService := registration.New(store, clk)

	return &App{
		Storage:             store,
		Clock:               clk,
		Issuer:              issuer,
		AuthService:         authService,
		RegistrationService: registrationService,
		RosterService:       roster.New(store, clk),
		CalendarService:     calendar.New(store, registrationService, clk),
		NewsService:         news.New(store, clk),
	}, nil
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}

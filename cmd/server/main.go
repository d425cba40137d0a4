package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/clubhouse/internal/api"
	"github.com/mcoot/clubhouse/internal/config"
	"github.com/mcoot/clubhouse/internal/factory"
	"github.com/mcoot/clubhouse/internal/services/auth"
)

func main() {
	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Stdout)
	cancel()
	os.Exit(code)
}

// run serves until ctx is done or the server fails, returning the process exit
// code. Storage is closed on every path once it has been opened.
func run(ctx context.Context, stdout io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return 1
	}

	logger := cfg.Logging.NewLogger(stdout)
	slog.SetDefault(logger)

	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}

	app, err := factory.New(ctx, factory.ConfigFrom(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
			return
		}
		logger.Info("storage closed")
	}()

	created, err := app.AuthService.Bootstrap(ctx, auth.BootstrapConfig{
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
		Name:     cfg.Admin.Name,
	})
	if err != nil {
		logger.Error("failed to bootstrap admin account", slog.String("error", err.Error()))
		return 1
	}
	if created {
		logger.Info("created initial admin account", slog.String("email", cfg.Admin.Email))
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:              logger,
		Storage:             app.Storage,
		Clock:               app.Clock,
		Issuer:              app.Issuer,
		AuthService:         app.AuthService,
		RegistrationService: app.RegistrationService,
		RosterService:       app.RosterService,
		CalendarService:     app.CalendarService,
		NewsService:         app.NewsService,
		AllowedOrigins:      cfg.CORS.AllowedOrigins,
	})

	server := api.NewServer(router, api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("environment", cfg.Server.Environment),
		slog.String("storage", cfg.Storage.Type),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

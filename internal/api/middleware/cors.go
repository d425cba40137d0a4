package middleware

import (
	"log/slog"
	"net/http"

	"github.com/rs/cors"
)

// CORS allows browser clients from origins to call the API with bearer tokens
func CORS(origins []string, logger *slog.Logger) func(http.Handler) http.Handler {
	methods := []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: methods,
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})

	logger.Info("CORS configured",
		slog.Any("allowed_origins", origins),
		slog.Any("allowed_methods", methods),
	)
	return c.Handler
}

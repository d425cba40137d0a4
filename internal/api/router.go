package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/clubhouse/internal/api/apierr"
	"github.com/mcoot/clubhouse/internal/api/handler"
	apimiddleware "github.com/mcoot/clubhouse/internal/api/middleware"
	"github.com/mcoot/clubhouse/internal/dependencies/clock"
	"github.com/mcoot/clubhouse/internal/middleware"
	"github.com/mcoot/clubhouse/internal/services/access"
	"github.com/mcoot/clubhouse/internal/services/auth"
	"github.com/mcoot/clubhouse/internal/services/calendar"
	"github.com/mcoot/clubhouse/internal/services/news"
	"github.com/mcoot/clubhouse/internal/services/registration"
	"github.com/mcoot/clubhouse/internal/services/roster"
	"github.com/mcoot/clubhouse/internal/services/session"
	"github.com/mcoot/clubhouse/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger              *slog.Logger
	Storage             storage.Storage
	Clock               clock.Clock
	Issuer              *session.Issuer
	AuthService         *auth.Service
	RegistrationService *registration.Service
	RosterService       *roster.Service
	CalendarService     *calendar.Service
	NewsService         *news.Service
	// AllowedOrigins enables CORS for these origins when non-empty
	AllowedOrigins []string
}

// Route binds a method and path to a handler and its access requirement
type Route struct {
	Method      string
	Path        string
	Requirement access.Requirement
	Handler     http.HandlerFunc
}

// Routes returns the API route table. Paths are relative to /api.
func Routes(cfg RouterConfig) []Route {
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	userHandler := handler.NewUserHandler(cfg.AuthService)
	playerHandler := handler.NewPlayerHandler(cfg.RosterService)
	eventHandler := handler.NewEventHandler(cfg.CalendarService, cfg.RegistrationService)
	tournamentHandler := handler.NewTournamentHandler(cfg.CalendarService, cfg.RegistrationService)
	newsHandler := handler.NewNewsHandler(cfg.NewsService)
	healthHandler := handler.NewHealthHandler(cfg.Storage, cfg.Clock)

	public := access.Public()
	authenticated := access.AuthenticatedOnly()
	admin := access.AdminOnly()

	return []Route{
		// Auth
		{http.MethodPost, "/auth/login", public, authHandler.Login},
		{http.MethodGet, "/auth/me", authenticated, authHandler.Me},
		{http.MethodPost, "/auth/change-password", authenticated, authHandler.ChangePassword},

		// Users
		{http.MethodGet, "/users", admin, userHandler.List},
		{http.MethodPost, "/users", admin, userHandler.Create},
		{http.MethodGet, "/users/{id:[0-9]+}", admin, userHandler.Get},
		{http.MethodPut, "/users/{id:[0-9]+}", admin, userHandler.Update},
		{http.MethodDelete, "/users/{id:[0-9]+}", admin, userHandler.Delete},

		// Players
		{http.MethodGet, "/players", authenticated, playerHandler.List},
		{http.MethodPost, "/players", admin, playerHandler.Create},
		{http.MethodGet, "/players/{id:[0-9]+}", access.SelfOrAdmin("id"), playerHandler.Get},
		{http.MethodPut, "/players/{id:[0-9]+}", access.SelfOrAdmin("id"), playerHandler.Update},
		{http.MethodDelete, "/players/{id:[0-9]+}", admin, playerHandler.Delete},

		// Events
		{http.MethodGet, "/events", authenticated, eventHandler.List},
		{http.MethodPost, "/events", admin, eventHandler.Create},
		{http.MethodGet, "/events/{id:[0-9]+}", authenticated, eventHandler.Get},
		{http.MethodDelete, "/events/{id:[0-9]+}", admin, eventHandler.Delete},
		{http.MethodPost, "/events/{id:[0-9]+}/register/{playerId:[0-9]+}", access.SelfOrAdmin("playerId"), eventHandler.Register},
		{http.MethodDelete, "/events/{id:[0-9]+}/unregister/{playerId:[0-9]+}", access.SelfOrAdmin("playerId"), eventHandler.Unregister},

		// Tournaments
		{http.MethodGet, "/tournaments", authenticated, tournamentHandler.List},
		{http.MethodPost, "/tournaments", admin, tournamentHandler.Create},
		{http.MethodGet, "/tournaments/{id:[0-9]+}", authenticated, tournamentHandler.Get},
		{http.MethodPatch, "/tournaments/{id:[0-9]+}/status", admin, tournamentHandler.UpdateStatus},
		{http.MethodDelete, "/tournaments/{id:[0-9]+}", admin, tournamentHandler.Delete},
		{http.MethodPost, "/tournaments/{id:[0-9]+}/register/{playerId:[0-9]+}", access.SelfOrAdmin("playerId"), tournamentHandler.Register},
		{http.MethodDelete, "/tournaments/{id:[0-9]+}/unregister/{playerId:[0-9]+}", access.SelfOrAdmin("playerId"), tournamentHandler.Unregister},

		// News
		{http.MethodGet, "/news", authenticated, newsHandler.List},
		{http.MethodPost, "/news", admin, newsHandler.Create},
		{http.MethodDelete, "/news/{id:[0-9]+}", admin, newsHandler.Delete},

		// Health check endpoint (no auth)
		{http.MethodGet, "/health", public, healthHandler.Check},
	}
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = r.NotFoundHandler
	api.MethodNotAllowedHandler = r.MethodNotAllowedHandler

	for _, route := range Routes(cfg) {
		guarded := apimiddleware.Require(cfg.Issuer, route.Requirement)(route.Handler)
		api.Handle(route.Path, guarded).Methods(route.Method)
	}

	// Logging wraps recovery so panics are logged with the request id
	var h http.Handler = r
	h = apimiddleware.Recovery(cfg.Logger)(h)
	h = middleware.Logging(cfg.Logger)(h)
	if len(cfg.AllowedOrigins) > 0 {
		h = apimiddleware.CORS(cfg.AllowedOrigins, cfg.Logger)(h)
	}
	return h
}

func notFound(w http.ResponseWriter, r *http.Request) {
	apierr.WriteError(w, r, apierr.NewNotFoundError("route not found"))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apierr.WriteError(w, r, apierr.NewMethodNotAllowedError())
}

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/clubhouse/internal/api/apierr"
	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/services/access"
	"github.com/mcoot/clubhouse/internal/services/session"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Require enforces req before calling the handler. The bearer token is
// verified first; the requirement is only evaluated for a verified identity.
func Require(issuer *session.Issuer, req access.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !req.RequiresIdentity() {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := issuer.Verify(extractToken(r))
			if err != nil {
				apierr.WriteError(w, r, err)
				return
			}

			var owner *model.PlayerID
			if req.Kind() == access.KindSelfOrAdmin {
				id, err := ownerFromPath(r, req.OwnerParam())
				if err != nil {
					apierr.WriteError(w, r, err)
					return
				}
				owner = &id
			}

			if err := access.Authorize(identity, req, owner); err != nil {
				apierr.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// extractToken returns the second space-separated word of the Authorization
// header, or "" when there is none. The scheme is not checked, so "Token abc"
// yields a token that fails verification (403) rather than a missing one (401).
func extractToken(r *http.Request) string {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func ownerFromPath(r *http.Request, param string) (model.PlayerID, error) {
	raw, ok := mux.Vars(r)[param]
	if !ok {
		return 0, fmt.Errorf("route has no %q parameter", param)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierr.NewInvalidRequestError(fmt.Sprintf("invalid %s", param))
	}
	return model.PlayerID(id), nil
}

// WithIdentity returns a context carrying the verified identity
func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// GetIdentity returns the verified identity from the request context
func GetIdentity(ctx context.Context) *model.Identity {
	identity, _ := ctx.Value(identityContextKey).(*model.Identity)
	return identity
}

// MustGetIdentity returns the verified identity or panics
func MustGetIdentity(ctx context.Context) *model.Identity {
	identity := GetIdentity(ctx)
	if identity == nil {
		panic("no identity in context - Require middleware not applied?")
	}
	return identity
}

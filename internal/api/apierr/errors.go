package apierr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/clubhouse/internal/middleware"
	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/services/access"
	"github.com/mcoot/clubhouse/internal/services/auth"
	"github.com/mcoot/clubhouse/internal/services/session"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Error codes
const (
	CodeValidation            = "VALIDATION_ERROR"
	CodeUnauthenticated       = "UNAUTHENTICATED"
	CodeMissingToken          = "MISSING_TOKEN"
	CodeInvalidToken          = "INVALID_TOKEN"
	CodeForbidden             = "FORBIDDEN"
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeAccountNotApproved    = "ACCOUNT_NOT_APPROVED"
	CodeDuplicateEmail        = "DUPLICATE_EMAIL"
	CodeDuplicateRegistration = "DUPLICATE_REGISTRATION"
	CodeEventFull             = "EVENT_FULL"
	CodeLastAdmin             = "LAST_ADMIN_PROTECTED"
	CodeNotFound              = "NOT_FOUND"
	CodeMethodNotAllowed      = "METHOD_NOT_ALLOWED"
	CodeInternalError         = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with a client-facing code and message
type httpError struct {
	status  int
	code    string
	message string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.message
}

// WriteError writes an error response. Unmapped errors become a generic 500
// and are logged with the request-scoped logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	he := toHTTPError(err)
	if he.status == http.StatusInternalServerError {
		middleware.Logger(r.Context()).Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.message, Code: he.code})
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return &httpError{http.StatusBadRequest, CodeValidation, ve.Message}
	}

	switch {
	// Authentication
	case errors.Is(err, session.ErrMissingToken):
		return &httpError{http.StatusUnauthorized, CodeMissingToken, "Missing token"}
	case errors.Is(err, session.ErrInvalidToken):
		return &httpError{http.StatusForbidden, CodeInvalidToken, "Invalid token"}
	case errors.Is(err, access.ErrUnauthenticated):
		return &httpError{http.StatusUnauthorized, CodeUnauthenticated, "Authentication required"}
	case errors.Is(err, access.ErrForbidden):
		return &httpError{http.StatusForbidden, CodeForbidden, "Insufficient permissions"}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password"}
	case errors.Is(err, auth.ErrAccountNotApproved):
		return &httpError{http.StatusForbidden, CodeAccountNotApproved, "Account not approved"}

	// Constraint violations
	case errors.Is(err, model.ErrDuplicateEmail), errors.Is(err, model.ErrDuplicatePlayerEmail):
		return &httpError{http.StatusBadRequest, CodeDuplicateEmail, "Email already in use"}
	case errors.Is(err, model.ErrDuplicateRegistration):
		return &httpError{http.StatusBadRequest, CodeDuplicateRegistration, "Already registered"}
	case errors.Is(err, model.ErrEventFull):
		return &httpError{http.StatusBadRequest, CodeEventFull, "Event is full"}
	case errors.Is(err, model.ErrLastAdmin):
		return &httpError{http.StatusBadRequest, CodeLastAdmin, "Cannot remove the last administrator"}

	// Missing rows
	case errors.Is(err, model.ErrAccountNotFound):
		return &httpError{http.StatusNotFound, CodeNotFound, "User not found"}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, CodeNotFound, "Player not found"}
	case errors.Is(err, model.ErrEventNotFound):
		return &httpError{http.StatusNotFound, CodeNotFound, "Event not found"}
	case errors.Is(err, model.ErrTournamentNotFound):
		return &httpError{http.StatusNotFound, CodeNotFound, "Tournament not found"}
	case errors.Is(err, model.ErrNewsNotFound):
		return &httpError{http.StatusNotFound, CodeNotFound, "News item not found"}

	default:
		return &httpError{http.StatusInternalServerError, CodeInternalError, "Internal server error"}
	}
}

// NewInvalidRequestError creates a validation error for malformed input
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, CodeValidation, message}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, CodeInternalError, "Internal server error"}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) error {
	return &httpError{http.StatusNotFound, CodeNotFound, message}
}

// NewMethodNotAllowedError creates an error for a known path with the wrong method
func NewMethodNotAllowedError() error {
	return &httpError{http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed"}
}

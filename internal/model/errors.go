package model

import "errors"

// Common errors used across the application
var (
	// Not found errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrNewsNotFound       = errors.New("news item not found")

	// Constraint errors
	ErrDuplicateEmail        = errors.New("email already in use")
	ErrDuplicatePlayerEmail  = errors.New("player email already in use")
	ErrDuplicateRegistration = errors.New("player is already registered")
	ErrLastAdmin             = errors.New("cannot remove the last administrator")
	ErrEventFull             = errors.New("event is full")
	ErrPasswordChanged       = errors.New("password was changed concurrently")
)

// ValidationError reports malformed or missing input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// IsNotFound reports whether err is one of the not-found errors
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrPlayerNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrTournamentNotFound) ||
		errors.Is(err, ErrNewsNotFound)
}

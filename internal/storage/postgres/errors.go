package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mcoot/clubhouse/internal/model"
)

// SQLSTATE codes translated into domain errors
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Constraint names from the schema, mapped to the domain error they signal
var constraintErrors = map[string]error{
	"accounts_email_key":                   model.ErrDuplicateEmail,
	"players_email_key":                    model.ErrDuplicatePlayerEmail,
	"accounts_player_id_fkey":              model.ErrPlayerNotFound,
	"event_registrations_unique":           model.ErrDuplicateRegistration,
	"tournament_registrations_unique":      model.ErrDuplicateRegistration,
	"event_registrations_entity_fkey":      model.ErrEventNotFound,
	"tournament_registrations_entity_fkey": model.ErrTournamentNotFound,
	"event_registrations_player_fkey":      model.ErrPlayerNotFound,
	"tournament_registrations_player_fkey": model.ErrPlayerNotFound,
	"news_author_fkey":                     model.ErrAccountNotFound,
}

// translateError maps constraint violations onto domain errors and
// pgx.ErrNoRows onto notFound. Other errors pass through unchanged.
func translateError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) && notFound != nil {
		return notFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	if pgErr.Code != codeUniqueViolation && pgErr.Code != codeForeignKeyViolation {
		return err
	}
	if mapped, ok := constraintErrors[pgErr.ConstraintName]; ok {
		return mapped
	}
	return err
}

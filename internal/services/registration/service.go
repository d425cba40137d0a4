// Package registration is the ledger of player sign-ups for events and tournaments.
package registration

import (
	"context"
	"fmt"

	"github.com/mcoot/clubhouse/internal/dependencies/clock"
	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/services/access"
	"github.com/mcoot/clubhouse/internal/storage"
)

// Service manages registrations. At most one registration exists per
// (entity, player) pair; the storage layer enforces this atomically.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
}

// New creates a new registration Service
func New(storage storage.Storage, clock clock.Clock) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
	}
}

// Register signs playerID up for entity. The requester must be an admin or
// linked to playerID. A second registration fails with model.ErrDuplicateRegistration.
func (s *Service) Register(ctx context.Context, requester *model.Identity, entity model.EntityRef, playerID model.PlayerID) error {
	if err := validateRef(entity); err != nil {
		return err
	}
	if err := access.CheckSelfOrAdmin(requester, playerID); err != nil {
		return err
	}
	return s.storage.AddRegistration(ctx, entity, playerID, s.clock.Now())
}

// Unregister removes playerID from entity. It succeeds whether or not a registration existed.
func (s *Service) Unregister(ctx context.Context, requester *model.Identity, entity model.EntityRef, playerID model.PlayerID) error {
	if err := validateRef(entity); err != nil {
		return err
	}
	if err := access.CheckSelfOrAdmin(requester, playerID); err != nil {
		return err
	}
	return s.storage.RemoveRegistration(ctx, entity, playerID)
}

// ListParticipants returns the players registered to entity in registration order.
// An unknown entity has no participants.
func (s *Service) ListParticipants(ctx context.Context, entity model.EntityRef) ([]model.PlayerID, error) {
	if err := validateRef(entity); err != nil {
		return nil, err
	}
	return s.storage.ListParticipants(ctx, entity)
}

func validateRef(entity model.EntityRef) error {
	switch entity.Kind {
	case model.EntityEvent, model.EntityTournament:
	default:
		return model.NewValidationError(fmt.Sprintf("unknown entity kind %q", entity.Kind))
	}
	if entity.ID <= 0 {
		return model.NewValidationError("invalid entity id")
	}
	return nil
}

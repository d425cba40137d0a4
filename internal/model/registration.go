package model

import (
	"fmt"
	"time"
)

// EntityKind names the kind of activity a registration belongs to
type EntityKind string

const (
	EntityEvent      EntityKind = "event"
	EntityTournament EntityKind = "tournament"
)

// NotFoundErr returns the not-found sentinel for the entity kind
func (k EntityKind) NotFoundErr() error {
	if k == EntityTournament {
		return ErrTournamentNotFound
	}
	return ErrEventNotFound
}

// EntityRef identifies one event or tournament
type EntityRef struct {
	Kind EntityKind
	ID   int64
}

// EventRef returns a reference to an event
func EventRef(id EventID) EntityRef {
	return EntityRef{Kind: EntityEvent, ID: int64(id)}
}

// TournamentRef returns a reference to a tournament
func TournamentRef(id TournamentID) EntityRef {
	return EntityRef{Kind: EntityTournament, ID: int64(id)}
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// Registration links a player to an event or tournament.
// At most one registration exists per (entity, player) pair.
type Registration struct {
	Entity       EntityRef
	PlayerID     PlayerID
	RegisteredAt time.Time
}

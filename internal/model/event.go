package model

import "time"

// EventID uniquely identifies a club event
type EventID int64

// Event is a club activity players can sign up for
type Event struct {
	ID              EventID
	Name            string
	Date            time.Time // calendar date, UTC midnight
	Description     *string
	Location        *string
	MaxParticipants *int // nil means unlimited
	CreatedAt       time.Time
}

// HasCapacityFor reports whether another participant fits when current are already registered
func (e *Event) HasCapacityFor(current int) bool {
	return e.MaxParticipants == nil || current < *e.MaxParticipants
}

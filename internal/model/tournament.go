package model

import "time"

// TournamentID uniquely identifies a tournament
type TournamentID int64

// TournamentStatus is the lifecycle state of a tournament
type TournamentStatus string

const (
	TournamentStatusUpcoming  TournamentStatus = "upcoming"
	TournamentStatusOngoing   TournamentStatus = "ongoing"
	TournamentStatusCompleted TournamentStatus = "completed"
	TournamentStatusCancelled TournamentStatus = "cancelled"
)

// IsValid reports whether s is a known tournament status
func (s TournamentStatus) IsValid() bool {
	switch s {
	case TournamentStatusUpcoming, TournamentStatusOngoing, TournamentStatusCompleted, TournamentStatusCancelled:
		return true
	}
	return false
}

// Tournament is a competition players can enter
type Tournament struct {
	ID          TournamentID
	Name        string
	Date        time.Time
	Format      string // e.g. singles, doubles, mixed
	Description *string
	Status      TournamentStatus
	CreatedAt   time.Time
}

package model

import (
	"math"
	"time"
)

// PlayerID uniquely identifies a roster profile
type PlayerID int64

// Player is a club roster profile
type Player struct {
	ID              PlayerID
	Name            string
	Email           string
	Phone           *string
	LevelOfficial   *string
	LevelApero      int
	RatingTechnical int
	Avatar          *string
	Stats           PlayerStats
	CreatedAt       time.Time
}

// PlayerStats holds the aggregate match record of a player.
// Losses and WinRate are derived from MatchesPlayed and Wins.
type PlayerStats struct {
	MatchesPlayed int
	Wins          int
	Losses        int
	WinRate       int // percentage, 0-100
}

// NewPlayerStats builds stats from the recorded totals, deriving losses and win rate
func NewPlayerStats(matchesPlayed, wins int) PlayerStats {
	return PlayerStats{
		MatchesPlayed: matchesPlayed,
		Wins:          wins,
		Losses:        matchesPlayed - wins,
		WinRate:       WinRate(matchesPlayed, wins),
	}
}

// WinRate returns round(100 * wins / matchesPlayed), or 0 when no match was played
func WinRate(matchesPlayed, wins int) int {
	if matchesPlayed <= 0 {
		return 0
	}
	return int(math.Round(float64(wins) * 100 / float64(matchesPlayed)))
}

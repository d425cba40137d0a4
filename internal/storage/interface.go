package storage

import (
	"context"
	"time"

	"github.com/mcoot/clubhouse/internal/model"
)

// Storage defines the interface for data persistence.
//
// Create methods assign the record ID. Multi-record mutations (cascading
// deletes, last-admin checks, registration capacity) are atomic in every backend.
type Storage interface {
	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]*model.Account, error)
	// UpdateAccount applies update to the stored record and returns the result.
	// It fails with model.ErrLastAdmin when it would demote the only admin.
	UpdateAccount(ctx context.Context, id model.AccountID, update model.AccountUpdate) (*model.Account, error)
	// ReplacePasswordHash sets a new hash only while the stored hash still equals
	// current, failing with model.ErrPasswordChanged otherwise
	ReplacePasswordHash(ctx context.Context, id model.AccountID, current, replacement string) error
	// DeleteAccount fails with model.ErrLastAdmin when id is the only admin
	DeleteAccount(ctx context.Context, id model.AccountID) error
	CountAccounts(ctx context.Context) (int, error)

	// Player operations
	CreatePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	ListPlayers(ctx context.Context) ([]*model.Player, error)
	UpdatePlayer(ctx context.Context, player *model.Player) error
	// DeletePlayer also drops the player's registrations and unlinks accounts
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Event operations
	CreateEvent(ctx context.Context, event *model.Event) error
	GetEvent(ctx context.Context, id model.EventID) (*model.Event, error)
	ListEvents(ctx context.Context) ([]*model.Event, error)
	DeleteEvent(ctx context.Context, id model.EventID) error

	// Tournament operations
	CreateTournament(ctx context.Context, tournament *model.Tournament) error
	GetTournament(ctx context.Context, id model.TournamentID) (*model.Tournament, error)
	ListTournaments(ctx context.Context) ([]*model.Tournament, error)
	UpdateTournamentStatus(ctx context.Context, id model.TournamentID, status model.TournamentStatus) error
	DeleteTournament(ctx context.Context, id model.TournamentID) error

	// Registration operations
	AddRegistration(ctx context.Context, entity model.EntityRef, playerID model.PlayerID, at time.Time) error
	// RemoveRegistration is a no-op when no registration exists
	RemoveRegistration(ctx context.Context, entity model.EntityRef, playerID model.PlayerID) error
	// ListParticipants returns player IDs in registration order; empty for unknown entities
	ListParticipants(ctx context.Context, entity model.EntityRef) ([]model.PlayerID, error)

	// News operations
	CreateNews(ctx context.Context, item *model.NewsItem) error
	ListNews(ctx context.Context) ([]*model.NewsItem, error)
	DeleteNews(ctx context.Context, id model.NewsID) error

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error
	Close() error
}

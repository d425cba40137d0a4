// Package calendar manages club events and tournaments.
package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mcoot/clubhouse/internal/dependencies/clock"
	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/services/registration"
	"github.com/mcoot/clubhouse/internal/storage"
)

// Service handles event and tournament CRUD. Read results are decorated with
// their participants from the registration ledger.
type Service struct {
	storage       storage.Storage
	registrations *registration.Service
	clock         clock.Clock
}

// New creates a new calendar Service
func New(storage storage.Storage, registrations *registration.Service, clock clock.Clock) *Service {
	return &Service{
		storage:       storage,
		registrations: registrations,
		clock:         clock,
	}
}

// EventView is an event with its registered players
type EventView struct {
	Event        *model.Event
	Participants []model.PlayerID
}

// TournamentView is a tournament with its registered players
type TournamentView struct {
	Tournament   *model.Tournament
	Participants []model.PlayerID
}

// EventInput describes a new event
type EventInput struct {
	Name            string
	Date            time.Time
	Description     *string
	Location        *string
	MaxParticipants *int
}

// TournamentInput describes a new tournament
type TournamentInput struct {
	Name        string
	Date        time.Time
	Format      string
	Description *string
	Status      model.TournamentStatus // defaults to upcoming
}

// Event operations

// ListEvents returns every event, most recent date first
func (s *Service) ListEvents(ctx context.Context) ([]EventView, error) {
	events, err := s.storage.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]EventView, 0, len(events))
	for _, event := range events {
		participants, err := s.registrations.ListParticipants(ctx, model.EventRef(event.ID))
		if err != nil {
			return nil, err
		}
		views = append(views, EventView{Event: event, Participants: participants})
	}
	return views, nil
}

// GetEvent returns one event with its participants
func (s *Service) GetEvent(ctx context.Context, id model.EventID) (*EventView, error) {
	event, err := s.storage.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	participants, err := s.registrations.ListParticipants(ctx, model.EventRef(id))
	if err != nil {
		return nil, err
	}
	return &EventView{Event: event, Participants: participants}, nil
}

// CreateEvent validates and stores a new event
func (s *Service) CreateEvent(ctx context.Context, input EventInput) (*EventView, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, model.NewValidationError("name is required")
	}
	if input.Date.IsZero() {
		return nil, model.NewValidationError("date is required")
	}
	if input.MaxParticipants != nil && *input.MaxParticipants <= 0 {
		return nil, model.NewValidationError("max participants must be positive")
	}

	event := &model.Event{
		Name:            name,
		Date:            truncateToDay(input.Date),
		Description:     input.Description,
		Location:        input.Location,
		MaxParticipants: input.MaxParticipants,
		CreatedAt:       s.clock.Now(),
	}
	if err := s.storage.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	return &EventView{Event: event, Participants: []model.PlayerID{}}, nil
}

// DeleteEvent removes an event and its registrations. Unknown IDs are ignored.
func (s *Service) DeleteEvent(ctx context.Context, id model.EventID) error {
	return s.storage.DeleteEvent(ctx, id)
}

// Tournament operations

// ListTournaments returns every tournament, most recent date first
func (s *Service) ListTournaments(ctx context.Context) ([]TournamentView, error) {
	tournaments, err := s.storage.ListTournaments(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]TournamentView, 0, len(tournaments))
	for _, tournament := range tournaments {
		participants, err := s.registrations.ListParticipants(ctx, model.TournamentRef(tournament.ID))
		if err != nil {
			return nil, err
		}
		views = append(views, TournamentView{Tournament: tournament, Participants: participants})
	}
	return views, nil
}

// GetTournament returns one tournament with its participants
func (s *Service) GetTournament(ctx context.Context, id model.TournamentID) (*TournamentView, error) {
	tournament, err := s.storage.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	participants, err := s.registrations.ListParticipants(ctx, model.TournamentRef(id))
	if err != nil {
		return nil, err
	}
	return &TournamentView{Tournament: tournament, Participants: participants}, nil
}

// CreateTournament validates and stores a new tournament
func (s *Service) CreateTournament(ctx context.Context, input TournamentInput) (*TournamentView, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, model.NewValidationError("name is required")
	}
	if input.Date.IsZero() {
		return nil, model.NewValidationError("date is required")
	}
	status := input.Status
	if status == "" {
		status = model.TournamentStatusUpcoming
	}
	if !status.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("invalid status %q", status))
	}

	tournament := &model.Tournament{
		Name:        name,
		Date:        truncateToDay(input.Date),
		Format:      strings.TrimSpace(input.Format),
		Description: input.Description,
		Status:      status,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.storage.CreateTournament(ctx, tournament); err != nil {
		return nil, err
	}
	return &TournamentView{Tournament: tournament, Participants: []model.PlayerID{}}, nil
}

// UpdateTournamentStatus moves a tournament to a new status
func (s *Service) UpdateTournamentStatus(ctx context.Context, id model.TournamentID, status model.TournamentStatus) (*TournamentView, error) {
	if !status.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("invalid status %q", status))
	}
	if err := s.storage.UpdateTournamentStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.GetTournament(ctx, id)
}

// DeleteTournament removes a tournament and its registrations. Unknown IDs are ignored.
func (s *Service) DeleteTournament(ctx context.Context, id model.TournamentID) error {
	return s.storage.DeleteTournament(ctx, id)
}

// truncateToDay keeps only the calendar date, in UTC
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

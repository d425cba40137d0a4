// Package roster manages player profiles and their match statistics.
package roster

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/mcoot/clubhouse/internal/dependencies/clock"
	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/services/access"
	"github.com/mcoot/clubhouse/internal/storage"
)

// Service handles player CRUD
type Service struct {
	storage storage.Storage
	clock   clock.Clock
}

// New creates a new roster Service
func New(storage storage.Storage, clock clock.Clock) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
	}
}

// Profile holds the editable profile fields of a player
type Profile struct {
	Name            string
	Email           string
	Phone           *string
	LevelOfficial   *string
	LevelApero      int
	RatingTechnical int
	Avatar          *string
}

// Update is a full rewrite of a player's profile and recorded totals
type Update struct {
	Profile
	MatchesPlayed int
	Wins          int
}

// List returns the players visible to requester. Admins see every player;
// members see only their linked player, or nothing when unlinked.
func (s *Service) List(ctx context.Context, requester *model.Identity) ([]*model.Player, error) {
	if requester.IsAdmin() {
		return s.storage.ListPlayers(ctx)
	}
	if requester == nil || requester.PlayerID == nil {
		return []*model.Player{}, nil
	}

	player, err := s.storage.GetPlayer(ctx, *requester.PlayerID)
	if errors.Is(err, model.ErrPlayerNotFound) {
		return []*model.Player{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []*model.Player{player}, nil
}

// Get returns a single player. The requester must be an admin or linked to it.
func (s *Service) Get(ctx context.Context, requester *model.Identity, id model.PlayerID) (*model.Player, error) {
	if err := access.CheckSelfOrAdmin(requester, id); err != nil {
		return nil, err
	}
	return s.storage.GetPlayer(ctx, id)
}

// Create adds a player with zeroed statistics
func (s *Service) Create(ctx context.Context, profile Profile) (*model.Player, error) {
	profile, err := normalizeProfile(profile)
	if err != nil {
		return nil, err
	}

	player := &model.Player{
		Name:            profile.Name,
		Email:           profile.Email,
		Phone:           profile.Phone,
		LevelOfficial:   profile.LevelOfficial,
		LevelApero:      profile.LevelApero,
		RatingTechnical: profile.RatingTechnical,
		Avatar:          profile.Avatar,
		Stats:           model.NewPlayerStats(0, 0),
		CreatedAt:       s.clock.Now(),
	}
	if err := s.storage.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// Update rewrites a player. Losses and win rate are derived from the totals.
// The requester must be an admin or linked to the player.
func (s *Service) Update(ctx context.Context, requester *model.Identity, id model.PlayerID, update Update) (*model.Player, error) {
	if err := access.CheckSelfOrAdmin(requester, id); err != nil {
		return nil, err
	}

	profile, err := normalizeProfile(update.Profile)
	if err != nil {
		return nil, err
	}
	if update.MatchesPlayed < 0 || update.Wins < 0 {
		return nil, model.NewValidationError("matches played and wins must not be negative")
	}
	if update.Wins > update.MatchesPlayed {
		return nil, model.NewValidationError("wins cannot exceed matches played")
	}

	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	player.Name = profile.Name
	player.Email = profile.Email
	player.Phone = profile.Phone
	player.LevelOfficial = profile.LevelOfficial
	player.LevelApero = profile.LevelApero
	player.RatingTechnical = profile.RatingTechnical
	player.Avatar = profile.Avatar
	player.Stats = model.NewPlayerStats(update.MatchesPlayed, update.Wins)

	if err := s.storage.UpdatePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// Delete removes a player with its registrations and unlinks its accounts.
// Deleting an unknown player is not an error.
func (s *Service) Delete(ctx context.Context, id model.PlayerID) error {
	return s.storage.DeletePlayer(ctx, id)
}

func normalizeProfile(p Profile) (Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))

	if p.Name == "" {
		return p, model.NewValidationError("name is required")
	}
	if p.Email == "" {
		return p, model.NewValidationError("email is required")
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return p, model.NewValidationError("invalid email")
	}
	if p.LevelApero < 0 || p.RatingTechnical < 0 {
		return p, model.NewValidationError("levels must not be negative")
	}

	p.Phone = blankToNil(p.Phone)
	p.LevelOfficial = blankToNil(p.LevelOfficial)
	p.Avatar = blankToNil(p.Avatar)
	return p, nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

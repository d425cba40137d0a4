package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state with the store.
type Storage struct {
	mu sync.RWMutex

	accounts    map[model.AccountID]*model.Account
	emailIndex  map[string]model.AccountID
	players     map[model.PlayerID]*model.Player
	events      map[model.EventID]*model.Event
	tournaments map[model.TournamentID]*model.Tournament
	news        map[model.NewsID]*model.NewsItem

	// registrations per entity, in registration order
	registrations map[model.EntityRef][]model.Registration

	nextAccountID    model.AccountID
	nextPlayerID     model.PlayerID
	nextEventID      model.EventID
	nextTournamentID model.TournamentID
	nextNewsID       model.NewsID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts:      make(map[model.AccountID]*model.Account),
		emailIndex:    make(map[string]model.AccountID),
		players:       make(map[model.PlayerID]*model.Player),
		events:        make(map[model.EventID]*model.Event),
		tournaments:   make(map[model.TournamentID]*model.Tournament),
		news:          make(map[model.NewsID]*model.NewsItem),
		registrations: make(map[model.EntityRef][]model.Registration),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(account.Email)
	if _, exists := s.emailIndex[key]; exists {
		return model.ErrDuplicateEmail
	}
	if account.PlayerID != nil {
		if _, ok := s.players[*account.PlayerID]; !ok {
			return model.ErrPlayerNotFound
		}
	}

	s.nextAccountID++
	account.ID = s.nextAccountID
	s.accounts[account.ID] = copyAccount(account)
	s.emailIndex[key] = account.ID
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return copyAccount(account), nil
}

func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[normalizeEmail(email)]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return copyAccount(s.accounts[id]), nil
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]*model.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		account := copyAccount(a)
		if account.PlayerID != nil {
			if p, ok := s.players[*account.PlayerID]; ok {
				name := p.Name
				account.PlayerName = &name
			}
		}
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (s *Storage) UpdateAccount(ctx context.Context, id model.AccountID, update model.AccountUpdate) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}

	newKey := normalizeEmail(update.Email)
	if owner, taken := s.emailIndex[newKey]; taken && owner != id {
		return nil, model.ErrDuplicateEmail
	}
	if update.PlayerID != nil {
		if _, ok := s.players[*update.PlayerID]; !ok {
			return nil, model.ErrPlayerNotFound
		}
	}
	if existing.IsAdmin() && update.Role != model.RoleAdmin && s.adminCountLocked() <= 1 {
		return nil, model.ErrLastAdmin
	}

	updated := copyAccount(existing)
	update.Apply(updated)
	delete(s.emailIndex, normalizeEmail(existing.Email))
	s.emailIndex[newKey] = id
	s.accounts[id] = updated
	return copyAccount(updated), nil
}

func (s *Storage) ReplacePasswordHash(ctx context.Context, id model.AccountID, current, replacement string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.accounts[id]
	if !ok {
		return model.ErrAccountNotFound
	}
	if existing.PasswordHash != current {
		return model.ErrPasswordChanged
	}
	existing.PasswordHash = replacement
	return nil
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return model.ErrAccountNotFound
	}
	if account.IsAdmin() && s.adminCountLocked() <= 1 {
		return model.ErrLastAdmin
	}

	delete(s.accounts, id)
	delete(s.emailIndex, normalizeEmail(account.Email))

	// News keeps its content but loses the author reference
	for _, item := range s.news {
		if item.AuthorID != nil && *item.AuthorID == id {
			item.AuthorID = nil
		}
	}
	return nil
}

func (s *Storage) CountAccounts(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts), nil
}

func (s *Storage) adminCountLocked() int {
	count := 0
	for _, a := range s.accounts {
		if a.IsAdmin() {
			count++
		}
	}
	return count
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playerEmailTakenLocked(player.Email, 0) {
		return model.ErrDuplicatePlayerEmail
	}

	s.nextPlayerID++
	player.ID = s.nextPlayerID
	s.players[player.ID] = copyPlayer(player)
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return copyPlayer(player), nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, copyPlayer(p))
	}
	// Newest first
	sort.Slice(players, func(i, j int) bool {
		if !players[i].CreatedAt.Equal(players[j].CreatedAt) {
			return players[i].CreatedAt.After(players[j].CreatedAt)
		}
		return players[i].ID > players[j].ID
	})
	return players, nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.players[player.ID]
	if !ok {
		return model.ErrPlayerNotFound
	}
	if s.playerEmailTakenLocked(player.Email, player.ID) {
		return model.ErrDuplicatePlayerEmail
	}

	updated := copyPlayer(player)
	updated.CreatedAt = existing.CreatedAt
	s.players[player.ID] = updated
	return nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[id]; !ok {
		return nil
	}
	delete(s.players, id)

	for ref, regs := range s.registrations {
		s.registrations[ref] = removePlayer(regs, id)
	}
	for _, a := range s.accounts {
		if a.PlayerID != nil && *a.PlayerID == id {
			a.PlayerID = nil
		}
	}
	return nil
}

func (s *Storage) playerEmailTakenLocked(email string, except model.PlayerID) bool {
	key := normalizeEmail(email)
	for id, p := range s.players {
		if id != except && normalizeEmail(p.Email) == key {
			return true
		}
	}
	return false
}

// Event operations

func (s *Storage) CreateEvent(ctx context.Context, event *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEventID++
	event.ID = s.nextEventID
	s.events[event.ID] = copyEvent(event)
	return nil
}

func (s *Storage) GetEvent(ctx context.Context, id model.EventID) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[id]
	if !ok {
		return nil, model.ErrEventNotFound
	}
	return copyEvent(event), nil
}

func (s *Storage) ListEvents(ctx context.Context) ([]*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*model.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, copyEvent(e))
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.After(events[j].Date)
		}
		return events[i].ID > events[j].ID
	})
	return events, nil
}

func (s *Storage) DeleteEvent(ctx context.Context, id model.EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, id)
	delete(s.registrations, model.EventRef(id))
	return nil
}

// Tournament operations

func (s *Storage) CreateTournament(ctx context.Context, tournament *model.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTournamentID++
	tournament.ID = s.nextTournamentID
	s.tournaments[tournament.ID] = copyTournament(tournament)
	return nil
}

func (s *Storage) GetTournament(ctx context.Context, id model.TournamentID) (*model.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tournament, ok := s.tournaments[id]
	if !ok {
		return nil, model.ErrTournamentNotFound
	}
	return copyTournament(tournament), nil
}

func (s *Storage) ListTournaments(ctx context.Context) ([]*model.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tournaments := make([]*model.Tournament, 0, len(s.tournaments))
	for _, t := range s.tournaments {
		tournaments = append(tournaments, copyTournament(t))
	}
	sort.Slice(tournaments, func(i, j int) bool {
		if !tournaments[i].Date.Equal(tournaments[j].Date) {
			return tournaments[i].Date.After(tournaments[j].Date)
		}
		return tournaments[i].ID > tournaments[j].ID
	})
	return tournaments, nil
}

func (s *Storage) UpdateTournamentStatus(ctx context.Context, id model.TournamentID, status model.TournamentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tournament, ok := s.tournaments[id]
	if !ok {
		return model.ErrTournamentNotFound
	}
	tournament.Status = status
	return nil
}

func (s *Storage) DeleteTournament(ctx context.Context, id model.TournamentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tournaments, id)
	delete(s.registrations, model.TournamentRef(id))
	return nil
}

// Registration operations

func (s *Storage) AddRegistration(ctx context.Context, entity model.EntityRef, playerID model.PlayerID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.entityExistsLocked(entity) {
		return entity.Kind.NotFoundErr()
	}
	if _, ok := s.players[playerID]; !ok {
		return model.ErrPlayerNotFound
	}

	regs := s.registrations[entity]
	for _, r := range regs {
		if r.PlayerID == playerID {
			return model.ErrDuplicateRegistration
		}
	}
	if entity.Kind == model.EntityEvent {
		if !s.events[model.EventID(entity.ID)].HasCapacityFor(len(regs)) {
			return model.ErrEventFull
		}
	}

	s.registrations[entity] = append(regs, model.Registration{
		Entity:       entity,
		PlayerID:     playerID,
		RegisteredAt: at,
	})
	return nil
}

func (s *Storage) RemoveRegistration(ctx context.Context, entity model.EntityRef, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	regs, ok := s.registrations[entity]
	if !ok {
		return nil
	}
	s.registrations[entity] = removePlayer(regs, playerID)
	return nil
}

func (s *Storage) ListParticipants(ctx context.Context, entity model.EntityRef) ([]model.PlayerID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	regs := s.registrations[entity]
	ids := make([]model.PlayerID, 0, len(regs))
	for _, r := range regs {
		ids = append(ids, r.PlayerID)
	}
	return ids, nil
}

func (s *Storage) entityExistsLocked(entity model.EntityRef) bool {
	switch entity.Kind {
	case model.EntityEvent:
		_, ok := s.events[model.EventID(entity.ID)]
		return ok
	case model.EntityTournament:
		_, ok := s.tournaments[model.TournamentID(entity.ID)]
		return ok
	}
	return false
}

// News operations

func (s *Storage) CreateNews(ctx context.Context, item *model.NewsItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextNewsID++
	item.ID = s.nextNewsID
	stored := *item
	stored.AuthorName = nil
	s.news[item.ID] = &stored
	return nil
}

func (s *Storage) ListNews(ctx context.Context) ([]*model.NewsItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]*model.NewsItem, 0, len(s.news))
	for _, n := range s.news {
		item := *n
		if item.AuthorID != nil {
			if author, ok := s.accounts[*item.AuthorID]; ok {
				name := author.Name
				item.AuthorName = &name
			}
		}
		items = append(items, &item)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

func (s *Storage) DeleteNews(ctx context.Context, id model.NewsID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.news, id)
	return nil
}

// Ping always succeeds for the in-memory store
func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func (s *Storage) Close() error {
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func removePlayer(regs []model.Registration, playerID model.PlayerID) []model.Registration {
	kept := regs[:0:0]
	for _, r := range regs {
		if r.PlayerID != playerID {
			kept = append(kept, r)
		}
	}
	return kept
}

func copyAccount(a *model.Account) *model.Account {
	c := *a
	if a.PlayerID != nil {
		id := *a.PlayerID
		c.PlayerID = &id
	}
	c.PlayerName = nil
	return &c
}

func copyPlayer(p *model.Player) *model.Player {
	c := *p
	return &c
}

func copyEvent(e *model.Event) *model.Event {
	c := *e
	if e.MaxParticipants != nil {
		n := *e.MaxParticipants
		c.MaxParticipants = &n
	}
	return &c
}

func copyTournament(t *model.Tournament) *model.Tournament {
	c := *t
	return &c
}

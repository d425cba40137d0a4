package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/storage"
)

// ErrTxConflict is returned when an optimistic transaction kept losing races
var ErrTxConflict = errors.New("redis transaction conflict: retries exhausted")

// Storage is a Redis-backed implementation of the storage interface.
//
// Records are stored as JSON strings. Multi-key mutations run inside
// WATCH/MULTI/EXEC so invariants hold under concurrent writers.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = DefaultConfig().MaxTxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	id, err := s.nextID(ctx, "account")
	if err != nil {
		return err
	}
	emailKey := accountEmailIndexKey(account.Email)
	watched := []string{emailKey}
	if account.PlayerID != nil {
		watched = append(watched, playerKey(*account.PlayerID))
	}

	err = s.watch(ctx, func(tx *redis.Tx) error {
		if taken, err := exists(ctx, tx, emailKey); err != nil {
			return err
		} else if taken {
			return model.ErrDuplicateEmail
		}
		if account.PlayerID != nil {
			if ok, err := exists(ctx, tx, playerKey(*account.PlayerID)); err != nil {
				return err
			} else if !ok {
				return model.ErrPlayerNotFound
			}
		}

		record := *account
		record.ID = model.AccountID(id)
		data, err := encode(&record)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, accountKey(record.ID), data, 0)
			pipe.Set(ctx, emailKey, int64(record.ID), 0)
			pipe.ZAdd(ctx, accountsIndexKey(), redis.Z{Score: float64(record.ID), Member: int64(record.ID)})
			if record.IsAdmin() {
				pipe.SAdd(ctx, adminsIndexKey(), int64(record.ID))
			}
			if record.PlayerID != nil {
				pipe.SAdd(ctx, accountsByPlayerIndexKey(*record.PlayerID), int64(record.ID))
			}
			return nil
		})
		return err
	}, watched...)
	if err != nil {
		return err
	}

	account.ID = model.AccountID(id)
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	return getJSON[model.Account](ctx, s.client, accountKey(id), model.ErrAccountNotFound)
}

func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	id, err := s.client.Get(ctx, accountEmailIndexKey(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}
	return s.GetAccount(ctx, model.AccountID(id))
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	accounts, err := listJSON[model.Account](ctx, s.client, accountsIndexKey(), func(id int64) string {
		return accountKey(model.AccountID(id))
	})
	if err != nil {
		return nil, err
	}

	for _, account := range accounts {
		if account.PlayerID == nil {
			continue
		}
		player, err := s.GetPlayer(ctx, *account.PlayerID)
		if errors.Is(err, model.ErrPlayerNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		name := player.Name
		account.PlayerName = &name
	}
	return accounts, nil
}

func (s *Storage) UpdateAccount(ctx context.Context, id model.AccountID, update model.AccountUpdate) (*model.Account, error) {
	key := accountKey(id)
	newEmailKey := accountEmailIndexKey(update.Email)
	watched := []string{key, newEmailKey, adminsIndexKey()}
	if update.PlayerID != nil {
		watched = append(watched, playerKey(*update.PlayerID))
	}

	var record *model.Account
	err := s.watch(ctx, func(tx *redis.Tx) error {
		existing, err := getJSON[model.Account](ctx, tx, key, model.ErrAccountNotFound)
		if err != nil {
			return err
		}

		if owner, err := tx.Get(ctx, newEmailKey).Int64(); err == nil && model.AccountID(owner) != id {
			return model.ErrDuplicateEmail
		} else if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if update.PlayerID != nil {
			if ok, err := exists(ctx, tx, playerKey(*update.PlayerID)); err != nil {
				return err
			} else if !ok {
				return model.ErrPlayerNotFound
			}
		}
		if existing.IsAdmin() && update.Role != model.RoleAdmin {
			admins, err := tx.SCard(ctx, adminsIndexKey()).Result()
			if err != nil {
				return err
			}
			if admins <= 1 {
				return model.ErrLastAdmin
			}
		}

		updated := *existing
		update.Apply(&updated)
		data, err := encode(&updated)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.Del(ctx, accountEmailIndexKey(existing.Email))
			pipe.Set(ctx, newEmailKey, int64(id), 0)
			if updated.IsAdmin() {
				pipe.SAdd(ctx, adminsIndexKey(), int64(id))
			} else {
				pipe.SRem(ctx, adminsIndexKey(), int64(id))
			}
			if existing.PlayerID != nil {
				pipe.SRem(ctx, accountsByPlayerIndexKey(*existing.PlayerID), int64(id))
			}
			if updated.PlayerID != nil {
				pipe.SAdd(ctx, accountsByPlayerIndexKey(*updated.PlayerID), int64(id))
			}
			return nil
		})
		if err != nil {
			return err
		}
		record = &updated
		return nil
	}, watched...)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Storage) ReplacePasswordHash(ctx context.Context, id model.AccountID, current, replacement string) error {
	key := accountKey(id)

	return s.watch(ctx, func(tx *redis.Tx) error {
		existing, err := getJSON[model.Account](ctx, tx, key, model.ErrAccountNotFound)
		if err != nil {
			return err
		}
		if existing.PasswordHash != current {
			return model.ErrPasswordChanged
		}

		existing.PasswordHash = replacement
		data, err := encode(existing)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.AccountID) error {
	key := accountKey(id)
	authoredKey := newsByAuthorIndexKey(id)

	return s.watch(ctx, func(tx *redis.Tx) error {
		existing, err := getJSON[model.Account](ctx, tx, key, model.ErrAccountNotFound)
		if err != nil {
			return err
		}
		if existing.IsAdmin() {
			admins, err := tx.SCard(ctx, adminsIndexKey()).Result()
			if err != nil {
				return err
			}
			if admins <= 1 {
				return model.ErrLastAdmin
			}
		}

		// News keeps its content but loses the author reference
		authored, err := loadLinked[model.NewsItem](ctx, tx, authoredKey, func(id int64) string {
			return newsKey(model.NewsID(id))
		})
		if err != nil {
			return err
		}
		rewrites := make(map[string][]byte, len(authored))
		for _, item := range authored {
			item.AuthorID = nil
			data, err := encode(item)
			if err != nil {
				return err
			}
			rewrites[newsKey(item.ID)] = data
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key, accountEmailIndexKey(existing.Email), authoredKey)
			pipe.ZRem(ctx, accountsIndexKey(), int64(id))
			pipe.SRem(ctx, adminsIndexKey(), int64(id))
			if existing.PlayerID != nil {
				pipe.SRem(ctx, accountsByPlayerIndexKey(*existing.PlayerID), int64(id))
			}
			for k, data := range rewrites {
				pipe.Set(ctx, k, data, 0)
			}
			return nil
		})
		return err
	}, key, adminsIndexKey(), authoredKey)
}

func (s *Storage) CountAccounts(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, accountsIndexKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	id, err := s.nextID(ctx, "player")
	if err != nil {
		return err
	}
	emailKey := playerEmailIndexKey(player.Email)

	err = s.watch(ctx, func(tx *redis.Tx) error {
		if taken, err := exists(ctx, tx, emailKey); err != nil {
			return err
		} else if taken {
			return model.ErrDuplicatePlayerEmail
		}

		record := *player
		record.ID = model.PlayerID(id)
		data, err := encode(&record)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, playerKey(record.ID), data, 0)
			pipe.Set(ctx, emailKey, int64(record.ID), 0)
			pipe.ZAdd(ctx, playersIndexKey(), redis.Z{Score: float64(record.ID), Member: int64(record.ID)})
			return nil
		})
		return err
	}, emailKey)
	if err != nil {
		return err
	}

	player.ID = model.PlayerID(id)
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return getJSON[model.Player](ctx, s.client, playerKey(id), model.ErrPlayerNotFound)
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	players, err := listJSON[model.Player](ctx, s.client, playersIndexKey(), func(id int64) string {
		return playerKey(model.PlayerID(id))
	})
	if err != nil {
		return nil, err
	}
	// Newest first
	sort.SliceStable(players, func(i, j int) bool {
		if !players[i].CreatedAt.Equal(players[j].CreatedAt) {
			return players[i].CreatedAt.After(players[j].CreatedAt)
		}
		return players[i].ID > players[j].ID
	})
	return players, nil
}

func (s *Storage) UpdatePlayer(ctx context.Context, player *model.Player) error {
	key := playerKey(player.ID)
	newEmailKey := playerEmailIndexKey(player.Email)

	return s.watch(ctx, func(tx *redis.Tx) error {
		existing, err := getJSON[model.Player](ctx, tx, key, model.ErrPlayerNotFound)
		if err != nil {
			return err
		}
		if owner, err := tx.Get(ctx, newEmailKey).Int64(); err == nil && model.PlayerID(owner) != player.ID {
			return model.ErrDuplicatePlayerEmail
		} else if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		record := *player
		record.CreatedAt = existing.CreatedAt
		data, err := encode(&record)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.Del(ctx, playerEmailIndexKey(existing.Email))
			pipe.Set(ctx, newEmailKey, int64(record.ID), 0)
			return nil
		})
		return err
	}, key, newEmailKey)
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	key := playerKey(id)
	regsKey := playerRegistrationsIndexKey(id)
	linkedKey := accountsByPlayerIndexKey(id)

	return s.watch(ctx, func(tx *redis.Tx) error {
		existing, err := getJSON[model.Player](ctx, tx, key, model.ErrPlayerNotFound)
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		refs, err := tx.SMembers(ctx, regsKey).Result()
		if err != nil {
			return err
		}
		linked, err := loadLinked[model.Account](ctx, tx, linkedKey, func(id int64) string {
			return accountKey(model.AccountID(id))
		})
		if err != nil {
			return err
		}
		unlinked := make(map[string][]byte, len(linked))
		for _, account := range linked {
			account.PlayerID = nil
			data, err := encode(account)
			if err != nil {
				return err
			}
			unlinked[accountKey(account.ID)] = data
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key, playerEmailIndexKey(existing.Email), regsKey, linkedKey)
			pipe.ZRem(ctx, playersIndexKey(), int64(id))
			for _, raw := range refs {
				ref, err := parseEntityRef(raw)
				if err != nil {
					return err
				}
				pipe.ZRem(ctx, participantsKey(ref), int64(id))
			}
			for k, data := range unlinked {
				pipe.Set(ctx, k, data, 0)
			}
			return nil
		})
		return err
	}, key, regsKey, linkedKey)
}

// Event operations

func (s *Storage) CreateEvent(ctx context.Context, event *model.Event) error {
	id, err := s.nextID(ctx, "event")
	if err != nil {
		return err
	}
	record := *event
	record.ID = model.EventID(id)
	data, err := encode(&record)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, eventKey(record.ID), data, 0)
		pipe.ZAdd(ctx, eventsIndexKey(), redis.Z{Score: float64(record.ID), Member: int64(record.ID)})
		return nil
	})
	if err != nil {
		return err
	}
	event.ID = record.ID
	return nil
}

func (s *Storage) GetEvent(ctx context.Context, id model.EventID) (*model.Event, error) {
	return getJSON[model.Event](ctx, s.client, eventKey(id), model.ErrEventNotFound)
}

func (s *Storage) ListEvents(ctx context.Context) ([]*model.Event, error) {
	events, err := listJSON[model.Event](ctx, s.client, eventsIndexKey(), func(id int64) string {
		return eventKey(model.EventID(id))
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.After(events[j].Date)
		}
		return events[i].ID > events[j].ID
	})
	return events, nil
}

func (s *Storage) DeleteEvent(ctx context.Context, id model.EventID) error {
	return s.deleteEntity(ctx, model.EventRef(id), eventsIndexKey())
}

// Tournament operations

func (s *Storage) CreateTournament(ctx context.Context, tournament *model.Tournament) error {
	id, err := s.nextID(ctx, "tournament")
	if err != nil {
		return err
	}
	record := *tournament
	record.ID = model.TournamentID(id)
	data, err := encode(&record)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tournamentKey(record.ID), data, 0)
		pipe.ZAdd(ctx, tournamentsIndexKey(), redis.Z{Score: float64(record.ID), Member: int64(record.ID)})
		return nil
	})
	if err != nil {
		return err
	}
	tournament.ID = record.ID
	return nil
}

func (s *Storage) GetTournament(ctx context.Context, id model.TournamentID) (*model.Tournament, error) {
	return getJSON[model.Tournament](ctx, s.client, tournamentKey(id), model.ErrTournamentNotFound)
}

func (s *Storage) ListTournaments(ctx context.Context) ([]*model.Tournament, error) {
	tournaments, err := listJSON[model.Tournament](ctx, s.client, tournamentsIndexKey(), func(id int64) string {
		return tournamentKey(model.TournamentID(id))
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tournaments, func(i, j int) bool {
		if !tournaments[i].Date.Equal(tournaments[j].Date) {
			return tournaments[i].Date.After(tournaments[j].Date)
		}
		return tournaments[i].ID > tournaments[j].ID
	})
	return tournaments, nil
}

func (s *Storage) UpdateTournamentStatus(ctx context.Context, id model.TournamentID, status model.TournamentStatus) error {
	key := tournamentKey(id)
	return s.watch(ctx, func(tx *redis.Tx) error {
		tournament, err := getJSON[model.Tournament](ctx, tx, key, model.ErrTournamentNotFound)
		if err != nil {
			return err
		}
		tournament.Status = status
		data, err := encode(tournament)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)
}

func (s *Storage) DeleteTournament(ctx context.Context, id model.TournamentID) error {
	return s.deleteEntity(ctx, model.TournamentRef(id), tournamentsIndexKey())
}

// deleteEntity removes an event or tournament together with its registrations
func (s *Storage) deleteEntity(ctx context.Context, ref model.EntityRef, indexKey string) error {
	key := entityKey(ref)
	partsKey := participantsKey(ref)

	return s.watch(ctx, func(tx *redis.Tx) error {
		players, err := tx.ZRange(ctx, partsKey, 0, -1).Result()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key, partsKey)
			pipe.ZRem(ctx, indexKey, ref.ID)
			for _, raw := range players {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					return err
				}
				pipe.SRem(ctx, playerRegistrationsIndexKey(model.PlayerID(id)), ref.String())
			}
			return nil
		})
		return err
	}, key, partsKey)
}

// Registration operations

func (s *Storage) AddRegistration(ctx context.Context, entity model.EntityRef, playerID model.PlayerID, at time.Time) error {
	order, err := s.nextID(ctx, "registration")
	if err != nil {
		return err
	}
	key := entityKey(entity)
	partsKey := participantsKey(entity)
	pKey := playerKey(playerID)

	return s.watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return entity.Kind.NotFoundErr()
		}
		if err != nil {
			return err
		}
		if ok, err := exists(ctx, tx, pKey); err != nil {
			return err
		} else if !ok {
			return model.ErrPlayerNotFound
		}

		member := strconv.FormatInt(int64(playerID), 10)
		if _, err := tx.ZScore(ctx, partsKey, member).Result(); err == nil {
			return model.ErrDuplicateRegistration
		} else if !errors.Is(err, redis.Nil) {
			return err
		}

		if entity.Kind == model.EntityEvent {
			var event model.Event
			if err := json.Unmarshal(data, &event); err != nil {
				return err
			}
			current, err := tx.ZCard(ctx, partsKey).Result()
			if err != nil {
				return err
			}
			if !event.HasCapacityFor(int(current)) {
				return model.ErrEventFull
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZAdd(ctx, partsKey, redis.Z{Score: float64(order), Member: member})
			pipe.SAdd(ctx, playerRegistrationsIndexKey(playerID), entity.String())
			return nil
		})
		return err
	}, key, pKey, partsKey)
}

func (s *Storage) RemoveRegistration(ctx context.Context, entity model.EntityRef, playerID model.PlayerID) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, participantsKey(entity), int64(playerID))
		pipe.SRem(ctx, playerRegistrationsIndexKey(playerID), entity.String())
		return nil
	})
	return err
}

func (s *Storage) ListParticipants(ctx context.Context, entity model.EntityRef) ([]model.PlayerID, error) {
	members, err := s.client.ZRange(ctx, participantsKey(entity), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]model.PlayerID, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt participant %q: %w", m, err)
		}
		ids = append(ids, model.PlayerID(id))
	}
	return ids, nil
}

// News operations

func (s *Storage) CreateNews(ctx context.Context, item *model.NewsItem) error {
	id, err := s.nextID(ctx, "news")
	if err != nil {
		return err
	}
	record := *item
	record.ID = model.NewsID(id)
	record.AuthorName = nil
	data, err := encode(&record)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, newsKey(record.ID), data, 0)
		pipe.ZAdd(ctx, newsIndexKey(), redis.Z{Score: float64(record.ID), Member: int64(record.ID)})
		if record.AuthorID != nil {
			pipe.SAdd(ctx, newsByAuthorIndexKey(*record.AuthorID), int64(record.ID))
		}
		return nil
	})
	if err != nil {
		return err
	}
	item.ID = record.ID
	return nil
}

func (s *Storage) ListNews(ctx context.Context) ([]*model.NewsItem, error) {
	items, err := listJSON[model.NewsItem](ctx, s.client, newsIndexKey(), func(id int64) string {
		return newsKey(model.NewsID(id))
	})
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if item.AuthorID == nil {
			continue
		}
		author, err := s.GetAccount(ctx, *item.AuthorID)
		if errors.Is(err, model.ErrAccountNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		name := author.Name
		item.AuthorName = &name
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

func (s *Storage) DeleteNews(ctx context.Context, id model.NewsID) error {
	key := newsKey(id)
	return s.watch(ctx, func(tx *redis.Tx) error {
		item, err := getJSON[model.NewsItem](ctx, tx, key, model.ErrNewsNotFound)
		if errors.Is(err, model.ErrNewsNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, newsIndexKey(), int64(id))
			if item.AuthorID != nil {
				pipe.SRem(ctx, newsByAuthorIndexKey(*item.AuthorID), int64(id))
			}
			return nil
		})
		return err
	}, key)
}

// Helpers

// watch runs fn in an optimistic transaction over keys, retrying when a watched key changes
func (s *Storage) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for attempt := 0; attempt < s.cfg.MaxTxRetries; attempt++ {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return ErrTxConflict
}

func (s *Storage) nextID(ctx context.Context, kind string) (int64, error) {
	return s.client.Incr(ctx, sequenceKey(kind)).Result()
}

// reader is the subset of commands shared by *redis.Client and *redis.Tx that the helpers need
type reader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	ZRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

func exists(ctx context.Context, r reader, key string) (bool, error) {
	n, err := r.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func getJSON[T any](ctx context.Context, r reader, key string, notFound error) (*T, error) {
	data, err := r.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// listJSON loads every record referenced by an ID index, skipping IDs whose record is gone
func listJSON[T any](ctx context.Context, r reader, indexKey string, keyFn func(int64) string) ([]*T, error) {
	members, err := r.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return loadRecords[T](ctx, r, members, keyFn)
}

// loadLinked loads every record referenced by a SET of IDs
func loadLinked[T any](ctx context.Context, r reader, setKey string, keyFn func(int64) string) ([]*T, error) {
	members, err := r.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, err
	}
	return loadRecords[T](ctx, r, members, keyFn)
}

func loadRecords[T any](ctx context.Context, r reader, members []string, keyFn func(int64) string) ([]*T, error) {
	result := make([]*T, 0, len(members))
	if len(members) == 0 {
		return result, nil
	}

	keys := make([]string, len(members))
	for i, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt index member %q: %w", m, err)
		}
		keys[i] = keyFn(id)
	}

	values, err := r.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var record T
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, err
		}
		result = append(result, &record)
	}
	return result, nil
}

func parseEntityRef(raw string) (model.EntityRef, error) {
	kind, id, ok := strings.Cut(raw, ":")
	if !ok {
		return model.EntityRef{}, fmt.Errorf("corrupt registration ref %q", raw)
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return model.EntityRef{}, fmt.Errorf("corrupt registration ref %q: %w", raw, err)
	}
	return model.EntityRef{Kind: model.EntityKind(kind), ID: n}, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/storage"
)

// Storage is a PostgreSQL implementation of the storage interface.
//
// Cascades and uniqueness are enforced by the schema; constraint
// violations are translated into domain errors at this boundary.
type Storage struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL, verifies the connection and applies pending migrations
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Storage, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, err
	}

	if err := Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}

	return NewWithPool(pool), nil
}

// NewWithPool wraps an existing pool without running migrations
func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Close closes the connection pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// inTx runs fn inside a transaction, committing only if fn succeeds
func (s *Storage) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Account operations

var accountColumns = []string{"id", "email", "password_hash", "name", "role", "status", "player_id", "created_at"}

func scanAccount(row pgx.Row, extra ...any) (*model.Account, error) {
	var (
		a        model.Account
		id       int64
		role     string
		status   string
		playerID *int64
	)
	dest := append([]any{&id, &a.Email, &a.PasswordHash, &a.Name, &role, &status, &playerID, &a.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	a.ID = model.AccountID(id)
	a.Role = model.Role(role)
	a.Status = model.AccountStatus(status)
	if playerID != nil {
		pid := model.PlayerID(*playerID)
		a.PlayerID = &pid
	}
	return &a, nil
}

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	q := psql.Insert("accounts").
		Columns("email", "password_hash", "name", "role", "status", "player_id", "created_at").
		Values(account.Email, account.PasswordHash, account.Name, string(account.Role), string(account.Status),
			nullablePlayerID(account.PlayerID), account.CreatedAt).
		Suffix("RETURNING id")

	var id int64
	if err := qRow(ctx, s.pool, q).Scan(&id); err != nil {
		return translateError(err, nil)
	}
	account.ID = model.AccountID(id)
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	q := psql.Select(accountColumns...).From("accounts").Where(sq.Eq{"id": int64(id)})
	account, err := scanAccount(qRow(ctx, s.pool, q))
	return account, translateError(err, model.ErrAccountNotFound)
}

func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	q := psql.Select(accountColumns...).From("accounts").Where("lower(email) = lower(?)", email)
	account, err := scanAccount(qRow(ctx, s.pool, q))
	return account, translateError(err, model.ErrAccountNotFound)
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	q := psql.Select(
		"a.id", "a.email", "a.password_hash", "a.name", "a.role", "a.status", "a.player_id", "a.created_at", "p.name",
	).
		From("accounts a").
		LeftJoin("players p ON p.id = a.player_id").
		OrderBy("a.id")

	rows, err := qQuery(ctx, s.pool, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []*model.Account{}
	for rows.Next() {
		var playerName *string
		account, err := scanAccount(rows, &playerName)
		if err != nil {
			return nil, err
		}
		account.PlayerName = playerName
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (s *Storage) UpdateAccount(ctx context.Context, id model.AccountID, update model.AccountUpdate) (*model.Account, error) {
	var account *model.Account
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var currentRole string
		q := psql.Select("role").From("accounts").Where(sq.Eq{"id": int64(id)}).Suffix("FOR UPDATE")
		if err := qRow(ctx, tx, q).Scan(&currentRole); err != nil {
			return translateError(err, model.ErrAccountNotFound)
		}

		if model.Role(currentRole) == model.RoleAdmin && update.Role != model.RoleAdmin {
			if err := s.ensureAnotherAdmin(ctx, tx); err != nil {
				return err
			}
		}

		stmt := psql.Update("accounts").
			Set("email", update.Email).
			Set("name", update.Name).
			Set("role", string(update.Role)).
			Set("player_id", nullablePlayerID(update.PlayerID))
		if update.Status != nil {
			stmt = stmt.Set("status", string(*update.Status))
		}
		if update.PasswordHash != nil {
			stmt = stmt.Set("password_hash", *update.PasswordHash)
		}
		stmt = stmt.Where(sq.Eq{"id": int64(id)}).Suffix("RETURNING " + strings.Join(accountColumns, ", "))

		var err error
		account, err = scanAccount(qRow(ctx, tx, stmt))
		return translateError(err, model.ErrAccountNotFound)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Storage) ReplacePasswordHash(ctx context.Context, id model.AccountID, current, replacement string) error {
	// The hash comparison sits in the WHERE clause so the check and the write are one statement
	q := psql.Update("accounts").
		Set("password_hash", replacement).
		Where(sq.Eq{"id": int64(id), "password_hash": current})
	tag, err := qExec(ctx, s.pool, q)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	if _, err := s.GetAccount(ctx, id); err != nil {
		return err
	}
	return model.ErrPasswordChanged
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.AccountID) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		var role string
		q := psql.Select("role").From("accounts").Where(sq.Eq{"id": int64(id)}).Suffix("FOR UPDATE")
		if err := qRow(ctx, tx, q).Scan(&role); err != nil {
			return translateError(err, model.ErrAccountNotFound)
		}

		if model.Role(role) == model.RoleAdmin {
			if err := s.ensureAnotherAdmin(ctx, tx); err != nil {
				return err
			}
		}

		_, err := qExec(ctx, tx, psql.Delete("accounts").Where(sq.Eq{"id": int64(id)}))
		return err
	})
}

// ensureAnotherAdmin locks every admin row and fails with ErrLastAdmin unless
// at least two exist, so concurrent demotions cannot both succeed
func (s *Storage) ensureAnotherAdmin(ctx context.Context, tx pgx.Tx) error {
	q := psql.Select("id").From("accounts").Where(sq.Eq{"role": string(model.RoleAdmin)}).Suffix("FOR UPDATE")
	rows, err := qQuery(ctx, tx, q)
	if err != nil {
		return err
	}
	defer rows.Close()

	admins := 0
	for rows.Next() {
		admins++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if admins <= 1 {
		return model.ErrLastAdmin
	}
	return nil
}

func (s *Storage) CountAccounts(ctx context.Context) (int, error) {
	var count int
	err := qRow(ctx, s.pool, psql.Select("COUNT(*)").From("accounts")).Scan(&count)
	return count, err
}

// Player operations

var playerColumns = []string{
	"id", "name", "email", "phone", "level_official", "level_apero", "rating_technical", "avatar",
	"matches_played", "wins", "losses", "win_rate", "created_at",
}

func scanPlayer(row pgx.Row) (*model.Player, error) {
	var (
		p  model.Player
		id int64
	)
	err := row.Scan(&id, &p.Name, &p.Email, &p.Phone, &p.LevelOfficial, &p.LevelApero, &p.RatingTechnical, &p.Avatar,
		&p.Stats.MatchesPlayed, &p.Stats.Wins, &p.Stats.Losses, &p.Stats.WinRate, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.ID = model.PlayerID(id)
	return &p, nil
}

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	q := psql.Insert("players").
		Columns("name", "email", "phone", "level_official", "level_apero", "rating_technical", "avatar",
			"matches_played", "wins", "losses", "win_rate", "created_at").
		Values(player.Name, player.Email, player.Phone, player.LevelOfficial, player.LevelApero, player.RatingTechnical,
			player.Avatar, player.Stats.MatchesPlayed, player.Stats.Wins, player.Stats.Losses, player.Stats.WinRate,
			player.CreatedAt).
		Suffix("RETURNING id")

	var id int64
	if err := qRow(ctx, s.pool, q).Scan(&id); err != nil {
		return translateError(err, nil)
	}
	player.ID = model.PlayerID(id)
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	q := psql.Select(playerColumns...).From("players").Where(sq.Eq{"id": int64(id)})
	player, err := scanPlayer(qRow(ctx, s.pool, q))
	return player, translateError(err, model.ErrPlayerNotFound)
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	q := psql.Select(playerColumns...).From("players").OrderBy("created_at DESC", "id DESC")
	rows, err := qQuery(ctx, s.pool, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []*model.Player{}
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, rows.Err()
}

func (s *Storage) UpdatePlayer(ctx context.Context, player *model.Player) error {
	q := psql.Update("players").
		Set("name", player.Name).
		Set("email", player.Email).
		Set("phone", player.Phone).
		Set("level_official", player.LevelOfficial).
		Set("level_apero", player.LevelApero).
		Set("rating_technical", player.RatingTechnical).
		Set("avatar", player.Avatar).
		Set("matches_played", player.Stats.MatchesPlayed).
		Set("wins", player.Stats.Wins).
		Set("losses", player.Stats.Losses).
		Set("win_rate", player.Stats.WinRate).
		Where(sq.Eq{"id": int64(player.ID)})

	tag, err := qExec(ctx, s.pool, q)
	if err != nil {
		return translateError(err, nil)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

// DeletePlayer relies on ON DELETE CASCADE for registrations and
// ON DELETE SET NULL for linked accounts
func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	_, err := qExec(ctx, s.pool, psql.Delete("players").Where(sq.Eq{"id": int64(id)}))
	return err
}

// Event operations

var eventColumns = []string{"id", "name", "date", "description", "location", "max_participants", "created_at"}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		e        model.Event
		id       int64
		capacity *int32
	)
	if err := row.Scan(&id, &e.Name, &e.Date, &e.Description, &e.Location, &capacity, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.ID = model.EventID(id)
	if capacity != nil {
		n := int(*capacity)
		e.MaxParticipants = &n
	}
	return &e, nil
}

func (s *Storage) CreateEvent(ctx context.Context, event *model.Event) error {
	q := psql.Insert("events").
		Columns("name", "date", "description", "location", "max_participants", "created_at").
		Values(event.Name, event.Date, event.Description, event.Location, event.MaxParticipants, event.CreatedAt).
		Suffix("RETURNING id")

	var id int64
	if err := qRow(ctx, s.pool, q).Scan(&id); err != nil {
		return translateError(err, nil)
	}
	event.ID = model.EventID(id)
	return nil
}

func (s *Storage) GetEvent(ctx context.Context, id model.EventID) (*model.Event, error) {
	q := psql.Select(eventColumns...).From("events").Where(sq.Eq{"id": int64(id)})
	event, err := scanEvent(qRow(ctx, s.pool, q))
	return event, translateError(err, model.ErrEventNotFound)
}

func (s *Storage) ListEvents(ctx context.Context) ([]*model.Event, error) {
	rows, err := qQuery(ctx, s.pool, psql.Select(eventColumns...).From("events").OrderBy("date DESC", "id DESC"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*model.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *Storage) DeleteEvent(ctx context.Context, id model.EventID) error {
	_, err := qExec(ctx, s.pool, psql.Delete("events").Where(sq.Eq{"id": int64(id)}))
	return err
}

// Tournament operations

var tournamentColumns = []string{"id", "name", "date", "format", "description", "status", "created_at"}

func scanTournament(row pgx.Row) (*model.Tournament, error) {
	var (
		t      model.Tournament
		id     int64
		status string
	)
	if err := row.Scan(&id, &t.Name, &t.Date, &t.Format, &t.Description, &status, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.ID = model.TournamentID(id)
	t.Status = model.TournamentStatus(status)
	return &t, nil
}

func (s *Storage) CreateTournament(ctx context.Context, tournament *model.Tournament) error {
	q := psql.Insert("tournaments").
		Columns("name", "date", "format", "description", "status", "created_at").
		Values(tournament.Name, tournament.Date, tournament.Format, tournament.Description,
			string(tournament.Status), tournament.CreatedAt).
		Suffix("RETURNING id")

	var id int64
	if err := qRow(ctx, s.pool, q).Scan(&id); err != nil {
		return translateError(err, nil)
	}
	tournament.ID = model.TournamentID(id)
	return nil
}

func (s *Storage) GetTournament(ctx context.Context, id model.TournamentID) (*model.Tournament, error) {
	q := psql.Select(tournamentColumns...).From("tournaments").Where(sq.Eq{"id": int64(id)})
	tournament, err := scanTournament(qRow(ctx, s.pool, q))
	return tournament, translateError(err, model.ErrTournamentNotFound)
}

func (s *Storage) ListTournaments(ctx context.Context) ([]*model.Tournament, error) {
	rows, err := qQuery(ctx, s.pool, psql.Select(tournamentColumns...).From("tournaments").OrderBy("date DESC", "id DESC"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := []*model.Tournament{}
	for rows.Next() {
		tournament, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, tournament)
	}
	return tournaments, rows.Err()
}

func (s *Storage) UpdateTournamentStatus(ctx context.Context, id model.TournamentID, status model.TournamentStatus) error {
	q := psql.Update("tournaments").Set("status", string(status)).Where(sq.Eq{"id": int64(id)})
	tag, err := qExec(ctx, s.pool, q)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTournamentNotFound
	}
	return nil
}

func (s *Storage) DeleteTournament(ctx context.Context, id model.TournamentID) error {
	_, err := qExec(ctx, s.pool, psql.Delete("tournaments").Where(sq.Eq{"id": int64(id)}))
	return err
}

// Registration operations

// registrationTable describes the join table backing one entity kind
type registrationTable struct {
	table       string
	entityTable string
	entityCol   string
}

func tableFor(kind model.EntityKind) (registrationTable, error) {
	switch kind {
	case model.EntityEvent:
		return registrationTable{table: "event_registrations", entityTable: "events", entityCol: "event_id"}, nil
	case model.EntityTournament:
		return registrationTable{table: "tournament_registrations", entityTable: "tournaments", entityCol: "tournament_id"}, nil
	}
	return registrationTable{}, fmt.Errorf("unknown entity kind %q", kind)
}

func (s *Storage) AddRegistration(ctx context.Context, entity model.EntityRef, playerID model.PlayerID, at time.Time) error {
	t, err := tableFor(entity.Kind)
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx pgx.Tx) error {
		// Locking the parent row serialises registrations for the same entity
		var capacity *int32
		lockCol := "NULL::integer"
		if entity.Kind == model.EntityEvent {
			lockCol = "max_participants"
		}
		lock := psql.Select(lockCol).From(t.entityTable).Where(sq.Eq{"id": entity.ID}).Suffix("FOR UPDATE")
		if err := qRow(ctx, tx, lock).Scan(&capacity); err != nil {
			return translateError(err, entity.Kind.NotFoundErr())
		}

		var one int
		player := psql.Select("1").From("players").Where(sq.Eq{"id": int64(playerID)})
		if err := qRow(ctx, tx, player).Scan(&one); err != nil {
			return translateError(err, model.ErrPlayerNotFound)
		}

		existing := psql.Select("1").From(t.table).Where(sq.Eq{t.entityCol: entity.ID, "player_id": int64(playerID)})
		if err := qRow(ctx, tx, existing).Scan(&one); err == nil {
			return model.ErrDuplicateRegistration
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		if capacity != nil {
			var current int64
			count := psql.Select("COUNT(*)").From(t.table).Where(sq.Eq{t.entityCol: entity.ID})
			if err := qRow(ctx, tx, count).Scan(&current); err != nil {
				return err
			}
			if current >= int64(*capacity) {
				return model.ErrEventFull
			}
		}

		insert := psql.Insert(t.table).
			Columns(t.entityCol, "player_id", "registered_at").
			Values(entity.ID, int64(playerID), at)
		_, err := qExec(ctx, tx, insert)
		return translateError(err, nil)
	})
}

func (s *Storage) RemoveRegistration(ctx context.Context, entity model.EntityRef, playerID model.PlayerID) error {
	t, err := tableFor(entity.Kind)
	if err != nil {
		return err
	}
	q := psql.Delete(t.table).Where(sq.Eq{t.entityCol: entity.ID, "player_id": int64(playerID)})
	_, err = qExec(ctx, s.pool, q)
	return err
}

func (s *Storage) ListParticipants(ctx context.Context, entity model.EntityRef) ([]model.PlayerID, error) {
	t, err := tableFor(entity.Kind)
	if err != nil {
		return nil, err
	}
	q := psql.Select("player_id").From(t.table).Where(sq.Eq{t.entityCol: entity.ID}).OrderBy("id")
	rows, err := qQuery(ctx, s.pool, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []model.PlayerID{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, model.PlayerID(id))
	}
	return ids, rows.Err()
}

// News operations

func (s *Storage) CreateNews(ctx context.Context, item *model.NewsItem) error {
	var authorID *int64
	if item.AuthorID != nil {
		id := int64(*item.AuthorID)
		authorID = &id
	}
	q := psql.Insert("news").
		Columns("title", "content", "image", "author_id", "created_at").
		Values(item.Title, item.Content, item.Image, authorID, item.CreatedAt).
		Suffix("RETURNING id")

	var id int64
	if err := qRow(ctx, s.pool, q).Scan(&id); err != nil {
		return translateError(err, nil)
	}
	item.ID = model.NewsID(id)
	return nil
}

func (s *Storage) ListNews(ctx context.Context) ([]*model.NewsItem, error) {
	q := psql.Select("n.id", "n.title", "n.content", "n.image", "n.author_id", "n.created_at", "a.name").
		From("news n").
		LeftJoin("accounts a ON a.id = n.author_id").
		OrderBy("n.created_at DESC", "n.id DESC")

	rows, err := qQuery(ctx, s.pool, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*model.NewsItem{}
	for rows.Next() {
		var (
			item     model.NewsItem
			id       int64
			authorID *int64
		)
		if err := rows.Scan(&id, &item.Title, &item.Content, &item.Image, &authorID, &item.CreatedAt, &item.AuthorName); err != nil {
			return nil, err
		}
		item.ID = model.NewsID(id)
		if authorID != nil {
			aid := model.AccountID(*authorID)
			item.AuthorID = &aid
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (s *Storage) DeleteNews(ctx context.Context, id model.NewsID) error {
	_, err := qExec(ctx, s.pool, psql.Delete("news").Where(sq.Eq{"id": int64(id)}))
	return err
}

func nullablePlayerID(id *model.PlayerID) *int64 {
	if id == nil {
		return nil
	}
	v := int64(*id)
	return &v
}

// Package storagetest holds the behavioural test suite every storage backend must pass.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/storage"
)

// Suite exercises the storage.Storage contract. Backends embed it and assign
// Storage in their own SetupTest before calling Suite.SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
	Now     time.Time
}

// SetupTest resets the shared fixtures
func (s *Suite) SetupTest() {
	s.Ctx = context.Background()
	s.Now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

// Fixture helpers

func (s *Suite) createAccount(email string, role model.Role, playerID *model.PlayerID) *model.Account {
	account := &model.Account{
		Email:        email,
		PasswordHash: "hash",
		Name:         "Name of " + email,
		Role:         role,
		Status:       model.AccountStatusApproved,
		PlayerID:     playerID,
		CreatedAt:    s.Now,
	}
	s.Require().NoError(s.Storage.CreateAccount(s.Ctx, account))
	s.Require().NotZero(account.ID)
	return account
}

func (s *Suite) createPlayer(name, email string) *model.Player {
	player := &model.Player{
		Name:            name,
		Email:           email,
		LevelApero:      2,
		RatingTechnical: 3,
		Stats:           model.NewPlayerStats(0, 0),
		CreatedAt:       s.Now,
	}
	s.Require().NoError(s.Storage.CreatePlayer(s.Ctx, player))
	s.Require().NotZero(player.ID)
	return player
}

func (s *Suite) createEvent(name string, date time.Time, capacity *int) *model.Event {
	event := &model.Event{
		Name:            name,
		Date:            date,
		MaxParticipants: capacity,
		CreatedAt:       s.Now,
	}
	s.Require().NoError(s.Storage.CreateEvent(s.Ctx, event))
	s.Require().NotZero(event.ID)
	return event
}

func (s *Suite) createTournament(name string, date time.Time) *model.Tournament {
	tournament := &model.Tournament{
		Name:      name,
		Date:      date,
		Format:    "singles",
		Status:    model.TournamentStatusUpcoming,
		CreatedAt: s.Now,
	}
	s.Require().NoError(s.Storage.CreateTournament(s.Ctx, tournament))
	s.Require().NotZero(tournament.ID)
	return tournament
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(n int) *int {
	return &n
}

// Account tests

func (s *Suite) TestCreateAndGetAccount() {
	player := s.createPlayer("Alice", "alice@club.test")
	created := s.createAccount("alice@club.test", model.RoleMember, &player.ID)

	got, err := s.Storage.GetAccount(s.Ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("alice@club.test", got.Email)
	s.Equal(model.RoleMember, got.Role)
	s.Equal(model.AccountStatusApproved, got.Status)
	s.Require().NotNil(got.PlayerID)
	s.Equal(player.ID, *got.PlayerID)
	s.WithinDuration(s.Now, got.CreatedAt, 0)

	byEmail, err := s.Storage.GetAccountByEmail(s.Ctx, "alice@club.test")
	s.Require().NoError(err)
	s.Equal(created.ID, byEmail.ID)
}

func (s *Suite) TestGetAccountNotFound() {
	_, err := s.Storage.GetAccount(s.Ctx, 9999)
	s.ErrorIs(err, model.ErrAccountNotFound)

	_, err = s.Storage.GetAccountByEmail(s.Ctx, "nobody@club.test")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestCreateAccountDuplicateEmail() {
	s.createAccount("dup@club.test", model.RoleMember, nil)

	err := s.Storage.CreateAccount(s.Ctx, &model.Account{
		Email:  "dup@club.test",
		Name:   "Other",
		Role:   model.RoleMember,
		Status: model.AccountStatusApproved,
	})
	s.ErrorIs(err, model.ErrDuplicateEmail)
}

func (s *Suite) TestCreateAccountUnknownPlayer() {
	missing := model.PlayerID(4242)
	err := s.Storage.CreateAccount(s.Ctx, &model.Account{
		Email:    "ghost@club.test",
		Name:     "Ghost",
		Role:     model.RoleMember,
		Status:   model.AccountStatusApproved,
		PlayerID: &missing,
	})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestListAccountsIncludesPlayerName() {
	player := s.createPlayer("Bob", "bob@club.test")
	first := s.createAccount("admin@club.test", model.RoleAdmin, nil)
	second := s.createAccount("bob@club.test", model.RoleMember, &player.ID)

	accounts, err := s.Storage.ListAccounts(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(accounts, 2)
	s.Equal(first.ID, accounts[0].ID)
	s.Nil(accounts[0].PlayerName)
	s.Equal(second.ID, accounts[1].ID)
	s.Require().NotNil(accounts[1].PlayerName)
	s.Equal("Bob", *accounts[1].PlayerName)
}

// profileUpdate builds an update that keeps a's current profile
func profileUpdate(a *model.Account) model.AccountUpdate {
	return model.AccountUpdate{Email: a.Email, Name: a.Name, Role: a.Role, PlayerID: a.PlayerID}
}

func (s *Suite) TestUpdateAccount() {
	account := s.createAccount("carol@club.test", model.RoleMember, nil)
	player := s.createPlayer("Carol", "carol@club.test")
	disabled := model.AccountStatusDisabled

	updated, err := s.Storage.UpdateAccount(s.Ctx, account.ID, model.AccountUpdate{
		Email:    "carol2@club.test",
		Name:     "Carol Two",
		Role:     model.RoleMember,
		PlayerID: &player.ID,
		Status:   &disabled,
	})
	s.Require().NoError(err)
	s.Equal("Carol Two", updated.Name)
	s.Equal("hash", updated.PasswordHash)

	got, err := s.Storage.GetAccountByEmail(s.Ctx, "carol2@club.test")
	s.Require().NoError(err)
	s.Equal("Carol Two", got.Name)
	s.Equal(model.AccountStatusDisabled, got.Status)
	s.WithinDuration(account.CreatedAt, got.CreatedAt, 0)
	s.Require().NotNil(got.PlayerID)
	s.Equal(player.ID, *got.PlayerID)

	_, err = s.Storage.GetAccountByEmail(s.Ctx, "carol@club.test")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestUpdateAccountKeepsOmittedFields() {
	account := s.createAccount("dora@club.test", model.RoleMember, nil)
	s.Require().NoError(s.Storage.ReplacePasswordHash(s.Ctx, account.ID, "hash", "newer-hash"))

	// An update built before the password change must not restore the old hash
	update := profileUpdate(account)
	update.Name = "Dora"
	_, err := s.Storage.UpdateAccount(s.Ctx, account.ID, update)
	s.Require().NoError(err)

	got, err := s.Storage.GetAccount(s.Ctx, account.ID)
	s.Require().NoError(err)
	s.Equal("Dora", got.Name)
	s.Equal("newer-hash", got.PasswordHash)
	s.Equal(model.AccountStatusApproved, got.Status)
}

func (s *Suite) TestUpdateAccountDuplicateEmail() {
	s.createAccount("taken@club.test", model.RoleMember, nil)
	account := s.createAccount("free@club.test", model.RoleMember, nil)

	update := profileUpdate(account)
	update.Email = "taken@club.test"
	_, err := s.Storage.UpdateAccount(s.Ctx, account.ID, update)
	s.ErrorIs(err, model.ErrDuplicateEmail)
}

func (s *Suite) TestUpdateAccountNotFound() {
	_, err := s.Storage.UpdateAccount(s.Ctx, 9999, model.AccountUpdate{
		Email: "x@club.test",
		Role:  model.RoleMember,
	})
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestUpdateAccountCannotDemoteLastAdmin() {
	admin := s.createAccount("admin@club.test", model.RoleAdmin, nil)

	update := profileUpdate(admin)
	update.Role = model.RoleMember
	_, err := s.Storage.UpdateAccount(s.Ctx, admin.ID, update)
	s.ErrorIs(err, model.ErrLastAdmin)

	got, err := s.Storage.GetAccount(s.Ctx, admin.ID)
	s.Require().NoError(err)
	s.Equal(model.RoleAdmin, got.Role)
}

func (s *Suite) TestUpdateAccountDemotesOneOfTwoAdmins() {
	admin := s.createAccount("admin@club.test", model.RoleAdmin, nil)
	s.createAccount("admin2@club.test", model.RoleAdmin, nil)

	update := profileUpdate(admin)
	update.Role = model.RoleMember
	updated, err := s.Storage.UpdateAccount(s.Ctx, admin.ID, update)
	s.Require().NoError(err)
	s.Equal(model.RoleMember, updated.Role)
}

func (s *Suite) TestReplacePasswordHash() {
	account := s.createAccount("eve@club.test", model.RoleAdmin, nil)
	s.createAccount("admin2@club.test", model.RoleAdmin, nil)

	// A demotion between reading the hash and replacing it survives the replacement
	update := profileUpdate(account)
	update.Role = model.RoleMember
	_, err := s.Storage.UpdateAccount(s.Ctx, account.ID, update)
	s.Require().NoError(err)

	s.Require().NoError(s.Storage.ReplacePasswordHash(s.Ctx, account.ID, "hash", "hash2"))

	got, err := s.Storage.GetAccount(s.Ctx, account.ID)
	s.Require().NoError(err)
	s.Equal("hash2", got.PasswordHash)
	s.Equal(model.RoleMember, got.Role)
}

func (s *Suite) TestReplacePasswordHashStale() {
	account := s.createAccount("fay@club.test", model.RoleMember, nil)

	err := s.Storage.ReplacePasswordHash(s.Ctx, account.ID, "not-the-hash", "hash2")
	s.ErrorIs(err, model.ErrPasswordChanged)

	got, err := s.Storage.GetAccount(s.Ctx, account.ID)
	s.Require().NoError(err)
	s.Equal("hash", got.PasswordHash)
}

func (s *Suite) TestReplacePasswordHashNotFound() {
	err := s.Storage.ReplacePasswordHash(s.Ctx, 9999, "hash", "hash2")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestDeleteAccount() {
	s.createAccount("admin@club.test", model.RoleAdmin, nil)
	member := s.createAccount("member@club.test", model.RoleMember, nil)

	s.Require().NoError(s.Storage.DeleteAccount(s.Ctx, member.ID))

	_, err := s.Storage.GetAccount(s.Ctx, member.ID)
	s.ErrorIs(err, model.ErrAccountNotFound)
	_, err = s.Storage.GetAccountByEmail(s.Ctx, "member@club.test")
	s.ErrorIs(err, model.ErrAccountNotFound)

	count, err := s.Storage.CountAccounts(s.Ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *Suite) TestDeleteAccountNotFound() {
	s.ErrorIs(s.Storage.DeleteAccount(s.Ctx, 9999), model.ErrAccountNotFound)
}

func (s *Suite) TestDeleteLastAdminRejected() {
	admin := s.createAccount("admin@club.test", model.RoleAdmin, nil)
	s.createAccount("member@club.test", model.RoleMember, nil)

	s.ErrorIs(s.Storage.DeleteAccount(s.Ctx, admin.ID), model.ErrLastAdmin)

	_, err := s.Storage.GetAccount(s.Ctx, admin.ID)
	s.NoError(err)
}

func (s *Suite) TestDeleteNonSoleAdmin() {
	admin := s.createAccount("admin@club.test", model.RoleAdmin, nil)
	s.createAccount("admin2@club.test", model.RoleAdmin, nil)

	s.NoError(s.Storage.DeleteAccount(s.Ctx, admin.ID))
}

func (s *Suite) TestDeleteAccountKeepsNewsWithoutAuthor() {
	s.createAccount("admin@club.test", model.RoleAdmin, nil)
	author := s.createAccount("author@club.test", model.RoleAdmin, nil)
	item := &model.NewsItem{Title: "Hello", Content: "World", AuthorID: &author.ID, CreatedAt: s.Now}
	s.Require().NoError(s.Storage.CreateNews(s.Ctx, item))

	s.Require().NoError(s.Storage.DeleteAccount(s.Ctx, author.ID))

	items, err := s.Storage.ListNews(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Nil(items[0].AuthorID)
	s.Nil(items[0].AuthorName)
}

func (s *Suite) TestCountAccounts() {
	count, err := s.Storage.CountAccounts(s.Ctx)
	s.Require().NoError(err)
	s.Zero(count)

	s.createAccount("a@club.test", model.RoleAdmin, nil)
	s.createAccount("b@club.test", model.RoleMember, nil)

	count, err = s.Storage.CountAccounts(s.Ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}

// Player tests

func (s *Suite) TestCreateAndGetPlayer() {
	phone := "0600000000"
	level := "P10"
	player := &model.Player{
		Name:            "Dana",
		Email:           "dana@club.test",
		Phone:           &phone,
		LevelOfficial:   &level,
		LevelApero:      4,
		RatingTechnical: 5,
		Stats:           model.NewPlayerStats(10, 7),
		CreatedAt:       s.Now,
	}
	s.Require().NoError(s.Storage.CreatePlayer(s.Ctx, player))

	got, err := s.Storage.GetPlayer(s.Ctx, player.ID)
	s.Require().NoError(err)
	s.Equal("Dana", got.Name)
	s.Require().NotNil(got.Phone)
	s.Equal(phone, *got.Phone)
	s.Require().NotNil(got.LevelOfficial)
	s.Equal(level, *got.LevelOfficial)
	s.Nil(got.Avatar)
	s.Equal(4, got.LevelApero)
	s.Equal(model.PlayerStats{MatchesPlayed: 10, Wins: 7, Losses: 3, WinRate: 70}, got.Stats)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, 9999)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestCreatePlayerDuplicateEmail() {
	s.createPlayer("Eve", "eve@club.test")

	err := s.Storage.CreatePlayer(s.Ctx, &model.Player{Name: "Eve 2", Email: "eve@club.test", CreatedAt: s.Now})
	s.ErrorIs(err, model.ErrDuplicatePlayerEmail)
}

func (s *Suite) TestListPlayersNewestFirst() {
	first := s.createPlayer("First", "first@club.test")
	s.Now = s.Now.Add(time.Minute)
	second := s.createPlayer("Second", "second@club.test")

	players, err := s.Storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal(second.ID, players[0].ID)
	s.Equal(first.ID, players[1].ID)
}

func (s *Suite) TestUpdatePlayer() {
	player := s.createPlayer("Finn", "finn@club.test")

	player.Name = "Finn Updated"
	player.Stats = model.NewPlayerStats(4, 1)
	s.Require().NoError(s.Storage.UpdatePlayer(s.Ctx, player))

	got, err := s.Storage.GetPlayer(s.Ctx, player.ID)
	s.Require().NoError(err)
	s.Equal("Finn Updated", got.Name)
	s.Equal(3, got.Stats.Losses)
	s.Equal(25, got.Stats.WinRate)
}

func (s *Suite) TestUpdatePlayerErrors() {
	s.createPlayer("Gus", "gus@club.test")
	other := s.createPlayer("Hal", "hal@club.test")

	other.Email = "gus@club.test"
	s.ErrorIs(s.Storage.UpdatePlayer(s.Ctx, other), model.ErrDuplicatePlayerEmail)

	s.ErrorIs(s.Storage.UpdatePlayer(s.Ctx, &model.Player{ID: 9999, Name: "X", Email: "x@club.test"}), model.ErrPlayerNotFound)
}

func (s *Suite) TestDeletePlayerCascades() {
	player := s.createPlayer("Ivy", "ivy@club.test")
	s.createAccount("admin@club.test", model.RoleAdmin, nil)
	account := s.createAccount("ivy@club.test", model.RoleMember, &player.ID)
	event := s.createEvent("Club night", day(2026, 4, 1), nil)
	tournament := s.createTournament("Spring open", day(2026, 5, 1))
	s.Require().NoError(s.Storage.AddRegistration(s.Ctx, model.EventRef(event.ID), player.ID, s.Now))
	s.Require().NoError(s.Storage.AddRegistration(s.Ctx, model.TournamentRef(tournament.ID), player.ID, s.Now))

	s.Require().NoError(s.Storage.DeletePlayer(s.Ctx, player.ID))

	_, err := s.Storage.GetPlayer(s.Ctx, player.ID)
	s.ErrorIs(err, model.ErrPlayerNotFound)

	ids, err := s.Storage.ListParticipants(s.Ctx, model.EventRef(event.ID))
	s.Require().NoError(err)
	s.Empty(ids)
	ids, err = s.Storage.ListParticipants(s.Ctx, model.TournamentRef(tournament.ID))
	s.Require().NoError(err)
	s.Empty(ids)

	got, err := s.Storage.GetAccount(s.Ctx, account.ID)
	s.Require().NoError(err)
	s.Nil(got.PlayerID)
}

func (s *Suite) TestDeletePlayerIdempotent() {
	s.NoError(s.Storage.DeletePlayer(s.Ctx, 9999))
}

// Event tests

func (s *Suite) TestCreateAndGetEvent() {
	description := "Friendly games"
	location := "Main hall"
	event := &model.Event{
		Name:            "Club night",
		Date:            day(2026, 4, 1),
		Description:     &description,
		Location:        &location,
		MaxParticipants: intPtr(12),
		CreatedAt:       s.Now,
	}
	s.Require().NoError(s.Storage.CreateEvent(s.Ctx, event))

	got, err := s.Storage.GetEvent(s.Ctx, event.ID)
	s.Require().NoError(err)
	s.Equal("Club night", got.Name)
	s.WithinDuration(day(2026, 4, 1), got.Date, 0)
	s.Require().NotNil(got.Description)
	s.Equal(description, *got.Description)
	s.Require().NotNil(got.MaxParticipants)
	s.Equal(12, *got.MaxParticipants)
}

func (s *Suite) TestGetEventNotFound() {
	_, err := s.Storage.GetEvent(s.Ctx, 9999)
	s.ErrorIs(err, model.ErrEventNotFound)
}

func (s *Suite) TestListEventsByDateDescending() {
	older := s.createEvent("Older", day(2026, 1, 10), nil)
	newer := s.createEvent("Newer", day(2026, 6, 10), nil)
	middle := s.createEvent("Middle", day(2026, 3, 10), nil)

	events, err := s.Storage.ListEvents(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal([]model.EventID{newer.ID, middle.ID, older.ID}, []model.EventID{events[0].ID, events[1].ID, events[2].ID})
}

func (s *Suite) TestDeleteEventCascades() {
	event := s.createEvent("Club night", day(2026, 4, 1), nil)
	player := s.createPlayer("Jo", "jo@club.test")
	s.Require().NoError(s.Storage.AddRegistration(s.Ctx, model.EventRef(event.ID), player.ID, s.Now))

	s.Require().NoError(s.Storage.DeleteEvent(s.Ctx, event.ID))

	_, err := s.Storage.GetEvent(s.Ctx, event.ID)
	s.ErrorIs(err, model.ErrEventNotFound)

	ids, err := s.Storage.ListParticipants(s.Ctx, model.EventRef(event.ID))
	s.Require().NoError(err)
	s.Empty(ids)

	s.NoError(s.Storage.DeleteEvent(s.Ctx, event.ID))
}

// Tournament tests

func (s *Suite) TestTournamentLifecycle() {
	tournament := s.createTournament("Spring open", day(2026, 5, 1))

	got, err := s.Storage.GetTournament(s.Ctx, tournament.ID)
	s.Require().NoError(err)
	s.Equal(model.TournamentStatusUpcoming, got.Status)
	s.Equal("singles", got.Format)

	s.Require().NoError(s.Storage.UpdateTournamentStatus(s.Ctx, tournament.ID, model.TournamentStatusOngoing))
	got, err = s.Storage.GetTournament(s.Ctx, tournament.ID)
	s.Require().NoError(err)
	s.Equal(model.TournamentStatusOngoing, got.Status)

	player := s.createPlayer("Kim", "kim@club.test")
	s.Require().NoError(s.Storage.AddRegistration(s.Ctx, model.TournamentRef(tournament.ID), player.ID, s.Now))

	s.Require().NoError(s.Storage.DeleteTournament(s.Ctx, tournament.ID))
	_, err = s.Storage.GetTournament(s.Ctx, tournament.ID)
	s.ErrorIs(err, model.ErrTournamentNotFound)

	ids, err := s.Storage.ListParticipants(s.Ctx, model.TournamentRef(tournament.ID))
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *Suite) TestUpdateTournamentStatusNotFound() {
	err := s.Storage.UpdateTournamentStatus(s.Ctx, 9999, model.TournamentStatusCompleted)
	s.ErrorIs(err, model.ErrTournamentNotFound)
}

func (s *Suite) TestListTournamentsByDateDescending() {
	older := s.createTournament("Older", day(2025, 11, 1))
	newer := s.createTournament("Newer", day(2026, 2, 1))

	tournaments, err := s.Storage.ListTournaments(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(tournaments, 2)
	s.Equal(newer.ID, tournaments[0].ID)
	s.Equal(older.ID, tournaments[1].ID)
}

// Registration tests

func (s *Suite) TestAddRegistrationTwiceRejected() {
	event := s.createEvent("Club night", day(2026, 4, 1), nil)
	player := s.createPlayer("Lee", "lee@club.test")
	ref := model.EventRef(event.ID)

	s.Require().NoError(s.Storage.AddRegistration(s.Ctx, ref, player.ID, s.Now))
	s.ErrorIs(s.Storage.AddRegistration(s.Ctx, ref, player.ID, s.Now), model.ErrDuplicateRegistration)

	ids, err := s.Storage.ListParticipants(s.Ctx, ref)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{player.ID}, ids)
}

func (s *Suite) TestAddRegistrationKeepsOrder() {
	tournament := s.createTournament("Cup", day(2026, 5, 1))
	first := s.createPlayer("First", "first@club.test")
	second := s.createPlayer("Second", "second@club.test")
	ref := model.TournamentRef(tournament.ID)

	s.Require().NoError(s.Storage.AddRegistration(s.Ctx, ref, second.ID, s.Now))
	s.Require().NoError(s.Storage.AddRegistration(s.Ctx, ref, first.ID, s.Now.Add(time.Second)))

	ids, err := s.Storage.ListParticipants(s.Ctx, ref)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{second.ID, first.ID}, ids)
}

func (s *Suite) TestAddRegistrationUnknownEntityOrPlayer() {
	player := s.createPlayer("Max", "max@club.test")
	event := s.createEvent("Club night", day(2026, 4, 1), nil)

	s.ErrorIs(s.Storage.AddRegistration(s.Ctx, model.EventRef(9999), player.ID, s.Now), model.ErrEventNotFound)
	s.ErrorIs(s.Storage.AddRegistration(s.Ctx, model.TournamentRef(9999), player.ID, s.Now), model.ErrTournamentNotFound)
	s.ErrorIs(s.Storage.AddRegistration(s.Ctx, model.EventRef(event.ID), 9999, s.Now), model.ErrPlayerNotFound)
}

func (s *Suite) TestAddRegistrationEventFull() {
	event := s.createEvent("Small group", day(2026, 4, 1), intPtr(1))
	first := s.createPlayer("Ned", "ned@club.test")
	second := s.createPlayer("Oz", "oz@club.test")
	ref := model.EventRef(event.ID)

	s.Require().NoError(s.Storage.AddRegistration(s.Ctx, ref, first.ID, s.Now))
	s.ErrorIs(s.Storage.AddRegistration(s.Ctx, ref, second.ID, s.Now), model.ErrEventFull)

	// Freeing the slot lets the next player in
	s.Require().NoError(s.Storage.RemoveRegistration(s.Ctx, ref, first.ID))
	s.NoError(s.Storage.AddRegistration(s.Ctx, ref, second.ID, s.Now))
}

func (s *Suite) TestRemoveRegistrationIdempotent() {
	event := s.createEvent("Club night", day(2026, 4, 1), nil)
	player := s.createPlayer("Pat", "pat@club.test")
	ref := model.EventRef(event.ID)

	s.NoError(s.Storage.RemoveRegistration(s.Ctx, ref, player.ID))
	s.NoError(s.Storage.RemoveRegistration(s.Ctx, model.EventRef(9999), 9999))

	s.Require().NoError(s.Storage.AddRegistration(s.Ctx, ref, player.ID, s.Now))
	s.Require().NoError(s.Storage.RemoveRegistration(s.Ctx, ref, player.ID))
	s.NoError(s.Storage.RemoveRegistration(s.Ctx, ref, player.ID))

	ids, err := s.Storage.ListParticipants(s.Ctx, ref)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *Suite) TestListParticipantsUnknownEntity() {
	ids, err := s.Storage.ListParticipants(s.Ctx, model.EventRef(9999))
	s.Require().NoError(err)
	s.Empty(ids)
}

// News tests

func (s *Suite) TestNewsLifecycle() {
	author := s.createAccount("admin@club.test", model.RoleAdmin, nil)
	image := "https://club.test/img.png"

	older := &model.NewsItem{Title: "Older", Content: "a", AuthorID: &author.ID, CreatedAt: s.Now}
	s.Require().NoError(s.Storage.CreateNews(s.Ctx, older))
	newer := &model.NewsItem{Title: "Newer", Content: "b", Image: &image, CreatedAt: s.Now.Add(time.Hour)}
	s.Require().NoError(s.Storage.CreateNews(s.Ctx, newer))

	items, err := s.Storage.ListNews(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal(newer.ID, items[0].ID)
	s.Require().NotNil(items[0].Image)
	s.Equal(image, *items[0].Image)
	s.Nil(items[0].AuthorName)
	s.Equal(older.ID, items[1].ID)
	s.Require().NotNil(items[1].AuthorName)
	s.Equal(author.Name, *items[1].AuthorName)

	s.Require().NoError(s.Storage.DeleteNews(s.Ctx, older.ID))
	s.NoError(s.Storage.DeleteNews(s.Ctx, older.ID))

	items, err = s.Storage.ListNews(s.Ctx)
	s.Require().NoError(err)
	s.Len(items, 1)
}

func (s *Suite) TestPing() {
	s.NoError(s.Storage.Ping(s.Ctx))
}

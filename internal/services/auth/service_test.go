package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/clubhouse/internal/dependencies/mocks"
	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/services/session"
	"github.com/mcoot/clubhouse/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	issuer  *session.Issuer
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.issuer = session.NewIssuer([]byte("test-secret-that-is-long-enough-32b"), s.clock)

	service, err := New(s.storage, s.clock, s.issuer, Config{BcryptCost: bcrypt.MinCost})
	s.Require().NoError(err)
	s.service = service
	s.ctx = context.Background()
}

func (s *ServiceSuite) createAccount(email, password string, role model.Role) *model.Account {
	account, err := s.service.CreateAccount(s.ctx, CreateAccountParams{
		Email:    email,
		Password: password,
		Name:     "Test " + email,
		Role:     role,
	})
	s.Require().NoError(err)
	return account
}

func (s *ServiceSuite) createPlayer(email string) *model.Player {
	player := &model.Player{Name: "Player " + email, Email: email}
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, player))
	return player
}

func ptr[T any](v T) *T {
	return &v
}

// CreateAccount tests

func (s *ServiceSuite) TestCreateAccountHashesPassword() {
	account := s.createAccount("alice@club.test", "secret1", model.RoleMember)

	stored, err := s.storage.GetAccount(s.ctx, account.ID)
	s.Require().NoError(err)
	s.NotEqual("secret1", stored.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
	s.Equal(model.AccountStatusApproved, stored.Status)
	s.Equal(s.clock.Now(), stored.CreatedAt)
}

func (s *ServiceSuite) TestCreateAccountNormalizesEmail() {
	account := s.createAccount("  Alice@Club.TEST ", "secret1", model.RoleMember)
	s.Equal("alice@club.test", account.Email)
}

func (s *ServiceSuite) TestCreateAccountDefaultsToMember() {
	account, err := s.service.CreateAccount(s.ctx, CreateAccountParams{Email: "a@club.test", Password: "secret1", Name: "A"})
	s.Require().NoError(err)
	s.Equal(model.RoleMember, account.Role)
}

func (s *ServiceSuite) TestCreateAccountDuplicateEmail() {
	s.createAccount("alice@club.test", "secret1", model.RoleMember)

	_, err := s.service.CreateAccount(s.ctx, CreateAccountParams{Email: "ALICE@club.test", Password: "secret2", Name: "Other"})
	s.ErrorIs(err, model.ErrDuplicateEmail)
}

func (s *ServiceSuite) TestCreateAccountValidation() {
	tests := []struct {
		name   string
		params CreateAccountParams
	}{
		{"missing email", CreateAccountParams{Password: "secret1", Name: "A"}},
		{"bad email", CreateAccountParams{Email: "not-an-email", Password: "secret1", Name: "A"}},
		{"short password", CreateAccountParams{Email: "a@club.test", Password: "12345", Name: "A"}},
		{"long password", CreateAccountParams{Email: "a@club.test", Password: strings.Repeat("x", 73), Name: "A"}},
		{"missing name", CreateAccountParams{Email: "a@club.test", Password: "secret1"}},
		{"bad role", CreateAccountParams{Email: "a@club.test", Password: "secret1", Name: "A", Role: "owner"}},
		{"bad status", CreateAccountParams{Email: "a@club.test", Password: "secret1", Name: "A", Status: "banned"}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.CreateAccount(s.ctx, tt.params)
			var validationErr *model.ValidationError
			s.ErrorAs(err, &validationErr)
		})
	}

	count, err := s.storage.CountAccounts(s.ctx)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *ServiceSuite) TestCreateAccountLinksPlayer() {
	player := s.createPlayer("bob@club.test")

	account, err := s.service.CreateAccount(s.ctx, CreateAccountParams{
		Email: "bob@club.test", Password: "secret1", Name: "Bob", PlayerID: &player.ID,
	})
	s.Require().NoError(err)
	s.Require().NotNil(account.PlayerID)
	s.Equal(player.ID, *account.PlayerID)
}

// Authenticate tests

func (s *ServiceSuite) TestAuthenticateSucceeds() {
	player := s.createPlayer("carol@club.test")
	created, err := s.service.CreateAccount(s.ctx, CreateAccountParams{
		Email: "carol@club.test", Password: "secret1", Name: "Carol", PlayerID: &player.ID,
	})
	s.Require().NoError(err)

	account, err := s.service.Authenticate(s.ctx, "Carol@club.test", "secret1")
	s.Require().NoError(err)
	s.Equal(created.ID, account.ID)
	s.Equal(model.RoleMember, account.Role)
	s.Require().NotNil(account.PlayerID)
	s.Equal(player.ID, *account.PlayerID)
}

func (s *ServiceSuite) TestAuthenticateFailuresAreIndistinguishable() {
	s.createAccount("dave@club.test", "secret1", model.RoleMember)

	_, wrongPassword := s.service.Authenticate(s.ctx, "dave@club.test", "wrong-password")
	_, unknownEmail := s.service.Authenticate(s.ctx, "nobody@club.test", "secret1")

	s.ErrorIs(wrongPassword, ErrInvalidCredentials)
	s.ErrorIs(unknownEmail, ErrInvalidCredentials)
	s.Equal(wrongPassword.Error(), unknownEmail.Error())
}

func (s *ServiceSuite) TestAuthenticatePendingAccount() {
	_, err := s.service.CreateAccount(s.ctx, CreateAccountParams{
		Email: "erin@club.test", Password: "secret1", Name: "Erin", Status: model.AccountStatusPending,
	})
	s.Require().NoError(err)

	_, err = s.service.Authenticate(s.ctx, "erin@club.test", "secret1")
	s.ErrorIs(err, ErrAccountNotApproved)

	// Approval status is not revealed to a wrong password
	_, err = s.service.Authenticate(s.ctx, "erin@club.test", "wrong-password")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// Login tests

func (s *ServiceSuite) TestLoginIssuesVerifiableToken() {
	account := s.createAccount("frank@club.test", "secret1", model.RoleAdmin)

	result, err := s.service.Login(s.ctx, "frank@club.test", "secret1")
	s.Require().NoError(err)
	s.Equal(account.ID, result.Account.ID)
	s.Equal(s.clock.Now().Add(session.TokenTTL), result.ExpiresAt)

	identity, err := s.issuer.Verify(result.Token)
	s.Require().NoError(err)
	s.Equal(account.ID, identity.AccountID)
	s.Equal(model.RoleAdmin, identity.Role)
	s.Nil(identity.PlayerID)
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	s.createAccount("frank@club.test", "secret1", model.RoleAdmin)

	_, err := s.service.Login(s.ctx, "frank@club.test", "nope-nope")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// UpdateAccount tests

func (s *ServiceSuite) TestUpdateAccountKeepsPasswordWhenOmitted() {
	account := s.createAccount("gina@club.test", "secret1", model.RoleMember)

	updated, err := s.service.UpdateAccount(s.ctx, account.ID, UpdateAccountParams{
		Email: "gina2@club.test", Name: "Gina", Role: model.RoleMember,
	})
	s.Require().NoError(err)
	s.Equal("gina2@club.test", updated.Email)

	_, err = s.service.Authenticate(s.ctx, "gina2@club.test", "secret1")
	s.NoError(err)
}

func (s *ServiceSuite) TestUpdateAccountChangesPasswordAndStatus() {
	account := s.createAccount("hank@club.test", "secret1", model.RoleMember)

	_, err := s.service.UpdateAccount(s.ctx, account.ID, UpdateAccountParams{
		Email:    "hank@club.test",
		Name:     "Hank",
		Role:     model.RoleMember,
		Status:   ptr(model.AccountStatusDisabled),
		Password: ptr("new-secret"),
	})
	s.Require().NoError(err)

	_, err = s.service.Authenticate(s.ctx, "hank@club.test", "new-secret")
	s.ErrorIs(err, ErrAccountNotApproved)
}

func (s *ServiceSuite) TestUpdateAccountShortPassword() {
	account := s.createAccount("ivan@club.test", "secret1", model.RoleMember)

	_, err := s.service.UpdateAccount(s.ctx, account.ID, UpdateAccountParams{
		Email: "ivan@club.test", Name: "Ivan", Role: model.RoleMember, Password: ptr("123"),
	})
	var validationErr *model.ValidationError
	s.ErrorAs(err, &validationErr)
}

func (s *ServiceSuite) TestUpdateAccountCannotDemoteLastAdmin() {
	admin := s.createAccount("admin@club.test", "secret1", model.RoleAdmin)

	_, err := s.service.UpdateAccount(s.ctx, admin.ID, UpdateAccountParams{
		Email: "admin@club.test", Name: "Admin", Role: model.RoleMember,
	})
	s.ErrorIs(err, model.ErrLastAdmin)
}

func (s *ServiceSuite) TestUpdateAccountNotFound() {
	_, err := s.service.UpdateAccount(s.ctx, 999, UpdateAccountParams{
		Email: "x@club.test", Name: "X", Role: model.RoleMember,
	})
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// ChangeOwnPassword tests

func (s *ServiceSuite) TestChangeOwnPassword() {
	account := s.createAccount("jane@club.test", "secret1", model.RoleMember)

	s.Require().NoError(s.service.ChangeOwnPassword(s.ctx, account.ID, "secret1", "secret2"))

	_, err := s.service.Authenticate(s.ctx, "jane@club.test", "secret1")
	s.ErrorIs(err, ErrInvalidCredentials)
	_, err = s.service.Authenticate(s.ctx, "jane@club.test", "secret2")
	s.NoError(err)
}

func (s *ServiceSuite) TestChangeOwnPasswordWrongCurrent() {
	account := s.createAccount("jane@club.test", "secret1", model.RoleMember)

	err := s.service.ChangeOwnPassword(s.ctx, account.ID, "wrong-current", "secret2")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestChangeOwnPasswordTooShort() {
	account := s.createAccount("jane@club.test", "secret1", model.RoleMember)

	err := s.service.ChangeOwnPassword(s.ctx, account.ID, "secret1", "12345")
	var validationErr *model.ValidationError
	s.ErrorAs(err, &validationErr)

	_, err = s.service.Authenticate(s.ctx, "jane@club.test", "secret1")
	s.NoError(err)
}

// interleavedStorage runs afterGet once, straight after the next GetAccount,
// to place a concurrent write between a service's read and its write
type interleavedStorage struct {
	*memory.Storage
	afterGet func()
}

func (s *interleavedStorage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	account, err := s.Storage.GetAccount(ctx, id)
	if hook := s.afterGet; hook != nil {
		s.afterGet = nil
		hook()
	}
	return account, err
}

func (s *ServiceSuite) interleavedService(afterGet func()) *Service {
	service, err := New(&interleavedStorage{Storage: s.storage, afterGet: afterGet}, s.clock, s.issuer, Config{BcryptCost: bcrypt.MinCost})
	s.Require().NoError(err)
	return service
}

func (s *ServiceSuite) TestChangeOwnPasswordKeepsConcurrentDemotion() {
	s.createAccount("admin@club.test", "secret1", model.RoleAdmin)
	other := s.createAccount("kate@club.test", "secret1", model.RoleAdmin)

	service := s.interleavedService(func() {
		_, err := s.service.UpdateAccount(s.ctx, other.ID, UpdateAccountParams{
			Email: "kate@club.test", Name: "Kate", Role: model.RoleMember,
		})
		s.Require().NoError(err)
	})
	s.Require().NoError(service.ChangeOwnPassword(s.ctx, other.ID, "secret1", "secret2"))

	account, err := s.service.Authenticate(s.ctx, "kate@club.test", "secret2")
	s.Require().NoError(err)
	s.Equal(model.RoleMember, account.Role)
	s.Equal("Kate", account.Name)
}

func (s *ServiceSuite) TestChangeOwnPasswordLosesToConcurrentReset() {
	s.createAccount("admin@club.test", "secret1", model.RoleAdmin)
	member := s.createAccount("liam@club.test", "secret1", model.RoleMember)

	service := s.interleavedService(func() {
		_, err := s.service.UpdateAccount(s.ctx, member.ID, UpdateAccountParams{
			Email: "liam@club.test", Name: "Liam", Role: model.RoleMember, Password: ptr("reset-by-admin"),
		})
		s.Require().NoError(err)
	})
	err := service.ChangeOwnPassword(s.ctx, member.ID, "secret1", "secret2")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.service.Authenticate(s.ctx, "liam@club.test", "reset-by-admin")
	s.NoError(err)
}

func (s *ServiceSuite) TestUpdateAccountKeepsPasswordChangedAfterRead() {
	member := s.createAccount("mia@club.test", "secret1", model.RoleMember)
	s.Require().NoError(s.service.ChangeOwnPassword(s.ctx, member.ID, "secret1", "secret2"))

	// member still holds the pre-change record; the profile edit must not bring its hash back
	_, err := s.service.UpdateAccount(s.ctx, member.ID, UpdateAccountParams{
		Email: member.Email, Name: "Mia", Role: member.Role, PlayerID: member.PlayerID,
	})
	s.Require().NoError(err)

	_, err = s.service.Authenticate(s.ctx, "mia@club.test", "secret2")
	s.NoError(err)
}

// DeleteAccount tests

func (s *ServiceSuite) TestDeleteSoleAdminRejected() {
	admin := s.createAccount("admin@club.test", "secret1", model.RoleAdmin)

	s.ErrorIs(s.service.DeleteAccount(s.ctx, admin.ID), model.ErrLastAdmin)
}

func (s *ServiceSuite) TestDeleteNonSoleAdmin() {
	admin := s.createAccount("admin@club.test", "secret1", model.RoleAdmin)
	s.createAccount("admin2@club.test", "secret1", model.RoleAdmin)

	s.NoError(s.service.DeleteAccount(s.ctx, admin.ID))
}

// Bootstrap tests

func (s *ServiceSuite) TestBootstrapCreatesSingleAdmin() {
	cfg := BootstrapConfig{Email: "admin@badminton.club", Password: "admin123", Name: "Administrator"}

	created, err := s.service.Bootstrap(s.ctx, cfg)
	s.Require().NoError(err)
	s.True(created)

	created, err = s.service.Bootstrap(s.ctx, cfg)
	s.Require().NoError(err)
	s.False(created)

	accounts, err := s.service.ListAccounts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(accounts, 1)
	s.Equal(model.RoleAdmin, accounts[0].Role)

	_, err = s.service.Login(s.ctx, "admin@badminton.club", "admin123")
	s.NoError(err)
}

func (s *ServiceSuite) TestBootstrapSkipsWhenAccountsExist() {
	s.createAccount("someone@club.test", "secret1", model.RoleMember)

	created, err := s.service.Bootstrap(s.ctx, BootstrapConfig{Email: "admin@club.test", Password: "admin123", Name: "Admin"})
	s.Require().NoError(err)
	s.False(created)
}

func TestNewRejectsInvalidCost(t *testing.T) {
	_, err := New(memory.New(), mocks.NewMockClock(time.Now()), nil, Config{BcryptCost: bcrypt.MaxCost + 1})
	require.Error(t, err)
}

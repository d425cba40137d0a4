package factory

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/clubhouse/internal/dependencies/mocks"
	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/services/auth"
	"github.com/mcoot/clubhouse/internal/storage/memory"
)

// TestJWTSecret signs tokens in test apps
const TestJWTSecret = "test-secret-0123456789abcdef012345"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	Memory    *memory.Storage
}

// NewTestApp creates an App on the memory backend with a mock clock and the
// cheapest bcrypt cost
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	app, err := newWithDependencies(store, mockClock, []byte(TestJWTSecret), auth.Config{BcryptCost: bcrypt.MinCost})
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		Memory:    store,
	}
}

// CreateAccount creates an approved account with the given role and optional linked player
func (t *TestApp) CreateAccount(ctx context.Context, email, password string, role model.Role, playerID *model.PlayerID) (*model.Account, error) {
	return t.AuthService.CreateAccount(ctx, auth.CreateAccountParams{
		Email:    email,
		Password: password,
		Name:     email,
		Role:     role,
		PlayerID: playerID,
	})
}

// Token issues a session token for account
func (t *TestApp) Token(account *model.Account) (string, error) {
	token, _, err := t.Issuer.Issue(account.Identity())
	return token, err
}

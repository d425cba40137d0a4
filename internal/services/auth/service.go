package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/clubhouse/internal/dependencies/clock"
	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/services/session"
	"github.com/mcoot/clubhouse/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotApproved = errors.New("account is not approved")
)

// Password length bounds for new or changed passwords. bcrypt ignores input past 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// Service is the credential store: it owns accounts, hashes passwords and
// exchanges valid credentials for session tokens
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	issuer  *session.Issuer

	cost int
	// dummyHash is compared against when an email is unknown so both failure paths cost the same
	dummyHash []byte
}

// Config holds configuration for the auth service
type Config struct {
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, issuer *session.Issuer, cfg Config) (*Service, error) {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("invalid bcrypt cost %d: %w", cfg.BcryptCost, err)
	}
	return &Service{
		storage:   storage,
		clock:     clock,
		issuer:    issuer,
		cost:      cfg.BcryptCost,
		dummyHash: dummy,
	}, nil
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Account   *model.Account
	Token     string
	ExpiresAt time.Time
}

// Login authenticates and issues a session token
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.issuer.Issue(account.Identity())
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Account:   account,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Authenticate checks credentials. An unknown email and a wrong password both
// yield ErrInvalidCredentials. Approval is only checked once the password matched.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.Account, error) {
	account, err := s.storage.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if account.Status != model.AccountStatusApproved {
		return nil, ErrAccountNotApproved
	}

	return account, nil
}

// CreateAccountParams describes a new account
type CreateAccountParams struct {
	Email    string
	Password string
	Name     string
	Role     model.Role          // defaults to member
	Status   model.AccountStatus // defaults to approved
	PlayerID *model.PlayerID
}

// CreateAccount validates, hashes the password and persists a new account
func (s *Service) CreateAccount(ctx context.Context, params CreateAccountParams) (*model.Account, error) {
	if params.Role == "" {
		params.Role = model.RoleMember
	}
	if params.Status == "" {
		params.Status = model.AccountStatusApproved
	}

	email, err := validateEmail(params.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, model.NewValidationError("name is required")
	}
	if err := validatePassword(params.Password); err != nil {
		return nil, err
	}
	if !params.Role.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("invalid role %q", params.Role))
	}
	if !params.Status.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("invalid status %q", params.Status))
	}

	hash, err := s.hash(params.Password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         params.Role,
		Status:       params.Status,
		PlayerID:     params.PlayerID,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccount returns an account by ID
func (s *Service) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	return s.storage.GetAccount(ctx, id)
}

// ListAccounts returns every account with its linked player name
func (s *Service) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	return s.storage.ListAccounts(ctx)
}

// UpdateAccountParams replaces an account's profile. Status and Password are
// left unchanged when nil.
type UpdateAccountParams struct {
	Email    string
	Name     string
	Role     model.Role
	PlayerID *model.PlayerID
	Status   *model.AccountStatus
	Password *string
}

// UpdateAccount rewrites an account's profile in one storage write. Demoting the
// last admin fails with model.ErrLastAdmin. Role changes take effect in tokens
// issued after the update.
func (s *Service) UpdateAccount(ctx context.Context, id model.AccountID, params UpdateAccountParams) (*model.Account, error) {
	email, err := validateEmail(params.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, model.NewValidationError("name is required")
	}
	if !params.Role.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("invalid role %q", params.Role))
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("invalid status %q", *params.Status))
	}
	if params.Password != nil {
		if err := validatePassword(*params.Password); err != nil {
			return nil, err
		}
	}

	update := model.AccountUpdate{
		Email:    email,
		Name:     name,
		Role:     params.Role,
		PlayerID: params.PlayerID,
		Status:   params.Status,
	}
	if params.Password != nil {
		hash, err := s.hash(*params.Password)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = &hash
	}

	return s.storage.UpdateAccount(ctx, id, update)
}

// ChangeOwnPassword replaces the caller's password after verifying the current one.
// Only the password hash is written, so concurrent profile edits are kept.
func (s *Service) ChangeOwnPassword(ctx context.Context, id model.AccountID, currentPassword, newPassword string) error {
	if currentPassword == "" {
		return model.NewValidationError("current password is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	account, err := s.storage.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	// Only the hash that was verified may be replaced; a reset in between wins
	err = s.storage.ReplacePasswordHash(ctx, id, account.PasswordHash, hash)
	if errors.Is(err, model.ErrPasswordChanged) {
		return ErrInvalidCredentials
	}
	return err
}

// DeleteAccount removes an account. Deleting the last admin fails with model.ErrLastAdmin.
func (s *Service) DeleteAccount(ctx context.Context, id model.AccountID) error {
	return s.storage.DeleteAccount(ctx, id)
}

// BootstrapConfig describes the admin account created on first startup
type BootstrapConfig struct {
	Email    string
	Password string
	Name     string
}

// Bootstrap creates the initial admin account when no account exists yet.
// It reports whether an account was created.
func (s *Service) Bootstrap(ctx context.Context, cfg BootstrapConfig) (bool, error) {
	count, err := s.storage.CountAccounts(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	_, err = s.CreateAccount(ctx, CreateAccountParams{
		Email:    cfg.Email,
		Password: cfg.Password,
		Name:     cfg.Name,
		Role:     model.RoleAdmin,
		Status:   model.AccountStatusApproved,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	return true, nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", model.NewValidationError("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", model.NewValidationError(fmt.Sprintf("invalid email %q", email))
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return model.NewValidationError(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		return model.NewValidationError(fmt.Sprintf("password must be at most %d bytes", MaxPasswordLength))
	}
	return nil
}

package model

import "time"

// AccountID uniquely identifies a login account
type AccountID int64

// Role is the permission level of an account
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleMember
}

// AccountStatus controls whether an account may log in
type AccountStatus string

const (
	AccountStatusApproved AccountStatus = "approved"
	AccountStatusPending  AccountStatus = "pending"
	AccountStatusDisabled AccountStatus = "disabled"
)

// IsValid reports whether s is a known status
func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountStatusApproved, AccountStatusPending, AccountStatusDisabled:
		return true
	}
	return false
}

// Account is a login identity. PlayerID optionally links it to a roster profile.
type Account struct {
	ID           AccountID
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         Role
	Status       AccountStatus
	PlayerID     *PlayerID
	CreatedAt    time.Time

	// PlayerName is filled by listings that join the linked player; never persisted
	PlayerName *string
}

// IsAdmin returns true if the account has the admin role
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Identity returns the claims carried by a session for this account
func (a *Account) Identity() Identity {
	return Identity{
		AccountID: a.ID,
		Email:     a.Email,
		Role:      a.Role,
		PlayerID:  a.PlayerID,
	}
}

// AccountUpdate rewrites an account's profile. Nil Status and PasswordHash
// keep the stored values.
type AccountUpdate struct {
	Email        string
	Name         string
	Role         Role
	PlayerID     *PlayerID
	Status       *AccountStatus
	PasswordHash *string
}

// Apply writes the update onto a
func (u AccountUpdate) Apply(a *Account) {
	a.Email = u.Email
	a.Name = u.Name
	a.Role = u.Role
	a.PlayerID = u.PlayerID
	if u.Status != nil {
		a.Status = *u.Status
	}
	if u.PasswordHash != nil {
		a.PasswordHash = *u.PasswordHash
	}
}

package model

// Identity is the verified caller of a request, decoded from its session token
type Identity struct {
	AccountID AccountID
	Email     string
	Role      Role
	PlayerID  *PlayerID // nil when the account has no linked player
}

// IsAdmin returns true if the identity carries the admin role
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// OwnsPlayer reports whether the identity is linked to the given player.
// An identity without a linked player owns nothing.
func (i *Identity) OwnsPlayer(id PlayerID) bool {
	if i == nil || i.PlayerID == nil {
		return false
	}
	return *i.PlayerID == id
}

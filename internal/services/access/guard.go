// Package access decides whether a verified identity may perform an operation.
//
// Every protected operation declares a Requirement. Authentication always
// happens before a Requirement is evaluated.
package access

import (
	"errors"
	"fmt"

	"github.com/mcoot/clubhouse/internal/model"
)

// Errors
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient permissions")
)

// Kind enumerates the requirement variants
type Kind int

const (
	KindPublic Kind = iota
	KindAuthenticated
	KindAdmin
	KindSelfOrAdmin
)

func (k Kind) String() string {
	switch k {
	case KindPublic:
		return "public"
	case KindAuthenticated:
		return "authenticated"
	case KindAdmin:
		return "admin"
	case KindSelfOrAdmin:
		return "self-or-admin"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Requirement is the access rule attached to an operation
type Requirement struct {
	kind Kind
	// ownerParam names the request parameter holding the owning player ID
	ownerParam string
}

// Public allows anyone, authenticated or not
func Public() Requirement {
	return Requirement{kind: KindPublic}
}

// AuthenticatedOnly allows any verified identity
func AuthenticatedOnly() Requirement {
	return Requirement{kind: KindAuthenticated}
}

// AdminOnly allows identities with the admin role
func AdminOnly() Requirement {
	return Requirement{kind: KindAdmin}
}

// SelfOrAdmin allows admins and the identity linked to the player named by ownerParam
func SelfOrAdmin(ownerParam string) Requirement {
	return Requirement{kind: KindSelfOrAdmin, ownerParam: ownerParam}
}

// Kind returns the requirement variant
func (r Requirement) Kind() Kind {
	return r.kind
}

// OwnerParam returns the parameter holding the owning player ID (SelfOrAdmin only)
func (r Requirement) OwnerParam() string {
	return r.ownerParam
}

// RequiresIdentity reports whether the caller must be authenticated
func (r Requirement) RequiresIdentity() bool {
	return r.kind != KindPublic
}

func (r Requirement) String() string {
	if r.kind == KindSelfOrAdmin {
		return fmt.Sprintf("%s(%s)", r.kind, r.ownerParam)
	}
	return r.kind.String()
}

// Authorize evaluates req for identity. owner is the resolved owning player for
// SelfOrAdmin requirements and is ignored otherwise.
func Authorize(identity *model.Identity, req Requirement, owner *model.PlayerID) error {
	if req.kind == KindPublic {
		return nil
	}
	if identity == nil {
		return ErrUnauthenticated
	}

	switch req.kind {
	case KindAuthenticated:
		return nil
	case KindAdmin:
		if identity.IsAdmin() {
			return nil
		}
		return ErrForbidden
	case KindSelfOrAdmin:
		if owner == nil {
			if identity.IsAdmin() {
				return nil
			}
			return ErrForbidden
		}
		return CheckSelfOrAdmin(identity, *owner)
	}
	return ErrForbidden
}

// CheckSelfOrAdmin allows admins and the identity linked to playerID.
// An identity with no linked player never matches.
func CheckSelfOrAdmin(identity *model.Identity, playerID model.PlayerID) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if identity.IsAdmin() || identity.OwnsPlayer(playerID) {
		return nil
	}
	return ErrForbidden
}

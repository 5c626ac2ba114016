// AngelaMos | 2026
// actor.go

package core

import (
	"fmt"
	"slices"
)

const (
	RolePatron    = "PATRON"
	RoleLibrarian = "LIBRARIAN"
	RoleAdmin     = "ADMIN"
)

var knownRoles = []string{RolePatron, RoleLibrarian, RoleAdmin}

func IsKnownRole(role string) bool {
	return slices.Contains(knownRoles, role)
}

// Actor is the authenticated caller as seen by the service layer.
type Actor struct {
	UserID string
	Roles  []string
}

func (a Actor) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}

func (a Actor) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if a.HasRole(role) {
			return true
		}
	}
	return false
}

// Require fails with ErrForbidden unless the actor holds one of roles.
func (a Actor) Require(op string, roles ...string) error {
	if a.UserID == "" {
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	if !a.HasAnyRole(roles...) {
		return fmt.Errorf("%s: requires %v: %w", op, roles, ErrForbidden)
	}
	return nil
}

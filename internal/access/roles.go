// waypoint | 2026
// roles.go

// Package access holds the role model and the authorization predicates
// applied before every group-scoped operation. The predicates are pure
// functions: membership resolution and entity lookups happen elsewhere.
package access

import (
	"fmt"

	"github.com/waypointhq/waypoint/internal/core"
)

type Role string

const (
	RoleOwner       Role = "owner"
	RoleAdmin       Role = "admin"
	RoleContributor Role = "contributor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleContributor:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", fmt.Errorf("parse role %q: %w", s, core.ErrInvalidInput)
	}
	return role, nil
}

// GroupRole pairs a group with the caller's role in it; the guard
// predicates below operate on slices of these.
type GroupRole struct {
	GroupID string
	Role    Role
}

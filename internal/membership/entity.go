// waypoint | 2026
// entity.go

package membership

import (
	"time"

	"github.com/waypointhq/waypoint/internal/access"
)

// Membership is one (user, group, role) row. The pair (user, group) is
// unique; the owner's row is created with its group and never modified
// or deleted through the normal flows.
type Membership struct {
	UserID    string      `db:"user_id"`
	GroupID   string      `db:"group_id"`
	Role      access.Role `db:"role"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (m *Membership) IsOwner() bool {
	return m.Role == access.RoleOwner
}

// GroupMembership is the resolver's view: the membership row joined with
// the metadata of the group it grants access to.
type GroupMembership struct {
	GroupID     string      `db:"group_id"`
	GroupName   string      `db:"group_name"`
	Role        access.Role `db:"role"`
	PlanName    *string     `db:"plan_name"`
	PlanEndDate *time.Time  `db:"plan_end_date"`
	JoinedAt    time.Time   `db:"joined_at"`
}

// MemberDetail is the group-detail view: the membership row joined with
// the member's account.
type MemberDetail struct {
	UserID   string      `db:"user_id"`
	Email    string      `db:"email"`
	Name     string      `db:"name"`
	Role     access.Role `db:"role"`
	JoinedAt time.Time   `db:"joined_at"`
}

// waypoint | 2026
// repository.go

package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/waypointhq/waypoint/internal/access"
	"github.com/waypointhq/waypoint/internal/core"
)

type Repository interface {
	ListForUser(ctx context.Context, userID string) ([]GroupMembership, error)
	ListForGroup(ctx context.Context, groupID string) ([]MemberDetail, error)
	Get(ctx context.Context, userID, groupID string) (*Membership, error)
	Insert(ctx context.Context, m *Membership) (bool, error)
	UpdateRole(
		ctx context.Context,
		userID, groupID string,
		role access.Role,
	) error
	Delete(ctx context.Context, userID, groupID string) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID string,
) ([]GroupMembership, error) {
	query := `
		SELECT m.group_id,
		       g.name AS group_name,
		       m.role,
		       g.plan_name,
		       g.plan_end_date,
		       m.created_at AS joined_at
		FROM memberships m
		JOIN groups g ON g.id = m.group_id
		WHERE m.user_id = $1
		ORDER BY m.created_at`

	var rows []GroupMembership
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list memberships for user: %w", err)
	}

	return rows, nil
}

func (r *repository) ListForGroup(
	ctx context.Context,
	groupID string,
) ([]MemberDetail, error) {
	query := `
		SELECT m.user_id,
		       u.email,
		       u.name,
		       m.role,
		       m.created_at AS joined_at
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY m.created_at`

	var rows []MemberDetail
	if err := r.db.SelectContext(ctx, &rows, query, groupID); err != nil {
		return nil, fmt.Errorf("list members for group: %w", err)
	}

	return rows, nil
}

func (r *repository) Get(
	ctx context.Context,
	userID, groupID string,
) (*Membership, error) {
	query := `
		SELECT user_id, group_id, role, created_at, updated_at
		FROM memberships
		WHERE user_id = $1 AND group_id = $2`

	var m Membership
	err := r.db.GetContext(ctx, &m, query, userID, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get membership: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}

	return &m, nil
}

// Insert adds the row if absent. The unique (user_id, group_id) key makes
// re-adding a known member a no-op; the bool reports whether a row was
// actually written.
func (r *repository) Insert(
	ctx context.Context,
	m *Membership,
) (bool, error) {
	query := `
		INSERT INTO memberships (user_id, group_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, group_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, m.UserID, m.GroupID, m.Role)
	if err != nil {
		return false, fmt.Errorf("insert membership: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert membership: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) UpdateRole(
	ctx context.Context,
	userID, groupID string,
	role access.Role,
) error {
	query := `
		UPDATE memberships
		SET role = $3, updated_at = NOW()
		WHERE user_id = $1 AND group_id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, groupID, role)
	if err != nil {
		return fmt.Errorf("update membership role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update membership role: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update membership role: %w", core.ErrNotFound)
	}

	return nil
}

// Delete removes the row if present; the bool reports whether anything
// was deleted. Removing a non-member is not an error.
func (r *repository) Delete(
	ctx context.Context,
	userID, groupID string,
) (bool, error) {
	query := `DELETE FROM memberships WHERE user_id = $1 AND group_id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, groupID)
	if err != nil {
		return false, fmt.Errorf("delete membership: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete membership: %w", err)
	}

	return rows > 0, nil
}

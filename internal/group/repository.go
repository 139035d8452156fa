// waypoint | 2026
// repository.go

package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/waypointhq/waypoint/internal/core"
)

type Repository interface {
	Create(ctx context.Context, g *Group) error
	GetByID(ctx context.Context, id string) (*Group, error)
	Rename(ctx context.Context, id, name string) (*Group, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, g *Group) error {
	query := `
		INSERT INTO groups (id, name, created_by)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, g, query, g.ID, g.Name, g.CreatedBy)
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Group, error) {
	query := `
		SELECT id, name, created_by, plan_name, plan_end_date,
		       created_at, updated_at
		FROM groups
		WHERE id = $1`

	var g Group
	err := r.db.GetContext(ctx, &g, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get group: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}

	return &g, nil
}

func (r *repository) Rename(
	ctx context.Context,
	id, name string,
) (*Group, error) {
	query := `
		UPDATE groups
		SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, created_by, plan_name, plan_end_date,
		          created_at, updated_at`

	var g Group
	err := r.db.GetContext(ctx, &g, query, id, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rename group: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("rename group: %w", err)
	}

	return &g, nil
}

// Delete removes the group; memberships, maps, categories and points go
// with it via ON DELETE CASCADE.
func (r *repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM groups WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete group: %w", core.ErrNotFound)
	}

	return nil
}

// waypoint | 2026
// repository.go

package geomap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/waypointhq/waypoint/internal/core"
)

// Repository persists maps and their content. Category and point reads
// and writes are map-scoped: a wrong map id yields ErrNotFound, never a
// row from another map.
type Repository interface {
	CreateMap(ctx context.Context, m *Map) error
	GetMap(ctx context.Context, id string) (*Map, error)
	GetMapByPublicID(ctx context.Context, publicID string) (*Map, error)
	ListMapsByGroup(ctx context.Context, groupID string) ([]Map, error)
	RenameMap(ctx context.Context, id, name string) (*Map, error)
	SetMapVisibility(
		ctx context.Context,
		id string,
		isPublic bool,
		publicID *string,
	) (*Map, error)
	DeleteMap(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, mapID, id string) (*Category, error)
	ListCategories(ctx context.Context, mapID string) ([]Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	ClearCategoryRefs(ctx context.Context, categoryID string) error
	DeleteCategory(ctx context.Context, mapID, id string) error

	CreatePoint(ctx context.Context, p *Point) error
	GetPoint(ctx context.Context, mapID, id string) (*Point, error)
	ListPoints(ctx context.Context, mapID string) ([]Point, error)
	UpdatePoint(ctx context.Context, p *Point) error
	DeletePoint(ctx context.Context, mapID, id string) error
	InsertPoints(ctx context.Context, points []Point) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) CreateMap(ctx context.Context, m *Map) error {
	query := `
		INSERT INTO maps (id, group_id, name, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, m, query, m.ID, m.GroupID, m.Name, m.CreatedBy)
	if err != nil {
		return fmt.Errorf("create map: %w", err)
	}

	return nil
}

func (r *repository) GetMap(ctx context.Context, id string) (*Map, error) {
	query := `
		SELECT id, group_id, name, is_public, public_id, created_by,
		       created_at, updated_at
		FROM maps
		WHERE id = $1`

	var m Map
	err := r.db.GetContext(ctx, &m, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get map: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get map: %w", err)
	}

	return &m, nil
}

func (r *repository) GetMapByPublicID(
	ctx context.Context,
	publicID string,
) (*Map, error) {
	query := `
		SELECT id, group_id, name, is_public, public_id, created_by,
		       created_at, updated_at
		FROM maps
		WHERE public_id = $1 AND is_public = TRUE`

	var m Map
	err := r.db.GetContext(ctx, &m, query, publicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get public map: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get public map: %w", err)
	}

	return &m, nil
}

func (r *repository) ListMapsByGroup(
	ctx context.Context,
	groupID string,
) ([]Map, error) {
	query := `
		SELECT id, group_id, name, is_public, public_id, created_by,
		       created_at, updated_at
		FROM maps
		WHERE group_id = $1
		ORDER BY created_at`

	var maps []Map
	if err := r.db.SelectContext(ctx, &maps, query, groupID); err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}

	return maps, nil
}

func (r *repository) RenameMap(
	ctx context.Context,
	id, name string,
) (*Map, error) {
	query := `
		UPDATE maps
		SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, group_id, name, is_public, public_id, created_by,
		          created_at, updated_at`

	var m Map
	err := r.db.GetContext(ctx, &m, query, id, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rename map: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("rename map: %w", err)
	}

	return &m, nil
}

func (r *repository) SetMapVisibility(
	ctx context.Context,
	id string,
	isPublic bool,
	publicID *string,
) (*Map, error) {
	query := `
		UPDATE maps
		SET is_public = $2, public_id = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, group_id, name, is_public, public_id, created_by,
		          created_at, updated_at`

	var m Map
	err := r.db.GetContext(ctx, &m, query, id, isPublic, publicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("set map visibility: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("set map visibility: %w", err)
	}

	return &m, nil
}

// DeleteMap removes the map; its categories and points go with it via
// ON DELETE CASCADE.
func (r *repository) DeleteMap(ctx context.Context, id string) error {
	query := `DELETE FROM maps WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete map: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete map: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete map: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) CreateCategory(
	ctx context.Context,
	c *Category,
) error {
	query := `
		INSERT INTO categories (id, map_id, name, description, color)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(
		ctx, c, query,
		c.ID, c.MapID, c.Name, c.Description, c.Color,
	)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

func (r *repository) GetCategory(
	ctx context.Context,
	mapID, id string,
) (*Category, error) {
	query := `
		SELECT id, map_id, name, description, color, created_at, updated_at
		FROM categories
		WHERE id = $1 AND map_id = $2`

	var c Category
	err := r.db.GetContext(ctx, &c, query, id, mapID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get category: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &c, nil
}

func (r *repository) ListCategories(
	ctx context.Context,
	mapID string,
) ([]Category, error) {
	query := `
		SELECT id, map_id, name, description, color, created_at, updated_at
		FROM categories
		WHERE map_id = $1
		ORDER BY created_at`

	var categories []Category
	if err := r.db.SelectContext(ctx, &categories, query, mapID); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

func (r *repository) UpdateCategory(
	ctx context.Context,
	c *Category,
) error {
	query := `
		UPDATE categories
		SET name = $3, description = $4, color = $5, updated_at = NOW()
		WHERE id = $1 AND map_id = $2
		RETURNING created_at, updated_at`

	err := r.db.GetContext(
		ctx, c, query,
		c.ID, c.MapID, c.Name, c.Description, c.Color,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update category: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	return nil
}

func (r *repository) ClearCategoryRefs(
	ctx context.Context,
	categoryID string,
) error {
	query := `UPDATE points SET category_id = NULL WHERE category_id = $1`

	if _, err := r.db.ExecContext(ctx, query, categoryID); err != nil {
		return fmt.Errorf("clear category refs: %w", err)
	}

	return nil
}

func (r *repository) DeleteCategory(
	ctx context.Context,
	mapID, id string,
) error {
	query := `DELETE FROM categories WHERE id = $1 AND map_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, mapID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete category: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) CreatePoint(ctx context.Context, p *Point) error {
	query := `
		INSERT INTO points (
			id, map_id, category_id, description,
			latitude, longitude, occurred_at, due_at, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(
		ctx, p, query,
		p.ID, p.MapID, p.CategoryID, p.Description,
		p.Latitude, p.Longitude, p.OccurredAt, p.DueAt, p.Notes,
	)
	if err != nil {
		return fmt.Errorf("create point: %w", err)
	}

	return nil
}

func (r *repository) GetPoint(
	ctx context.Context,
	mapID, id string,
) (*Point, error) {
	query := `
		SELECT id, map_id, category_id, description, latitude, longitude,
		       occurred_at, due_at, notes, created_at, updated_at
		FROM points
		WHERE id = $1 AND map_id = $2`

	var p Point
	err := r.db.GetContext(ctx, &p, query, id, mapID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get point: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get point: %w", err)
	}

	return &p, nil
}

func (r *repository) ListPoints(
	ctx context.Context,
	mapID string,
) ([]Point, error) {
	query := `
		SELECT id, map_id, category_id, description, latitude, longitude,
		       occurred_at, due_at, notes, created_at, updated_at
		FROM points
		WHERE map_id = $1
		ORDER BY occurred_at, created_at`

	var points []Point
	if err := r.db.SelectContext(ctx, &points, query, mapID); err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}

	return points, nil
}

func (r *repository) UpdatePoint(ctx context.Context, p *Point) error {
	query := `
		UPDATE points
		SET category_id = $3, description = $4, latitude = $5,
		    longitude = $6, occurred_at = $7, due_at = $8, notes = $9,
		    updated_at = NOW()
		WHERE id = $1 AND map_id = $2
		RETURNING created_at, updated_at`

	err := r.db.GetContext(
		ctx, p, query,
		p.ID, p.MapID, p.CategoryID, p.Description,
		p.Latitude, p.Longitude, p.OccurredAt, p.DueAt, p.Notes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update point: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update point: %w", err)
	}

	return nil
}

func (r *repository) DeletePoint(
	ctx context.Context,
	mapID, id string,
) error {
	query := `DELETE FROM points WHERE id = $1 AND map_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, mapID)
	if err != nil {
		return fmt.Errorf("delete point: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete point: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete point: %w", core.ErrNotFound)
	}

	return nil
}

// InsertPoints bulk-inserts imported rows in one statement.
func (r *repository) InsertPoints(
	ctx context.Context,
	points []Point,
) error {
	if len(points) == 0 {
		return nil
	}

	query := `
		INSERT INTO points (
			id, map_id, category_id, description,
			latitude, longitude, occurred_at, due_at, notes
		)
		VALUES (
			:id, :map_id, :category_id, :description,
			:latitude, :longitude, :occurred_at, :due_at, :notes
		)`

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, points); err != nil {
		return fmt.Errorf("insert points: %w", err)
	}

	return nil
}

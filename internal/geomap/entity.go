// waypoint | 2026
// entity.go

package geomap

import (
	"time"
)

// Map belongs to exactly one group; the group link never changes after
// creation. PublicID is non-nil exactly while the map is public.
type Map struct {
	ID        string    `db:"id"`
	GroupID   string    `db:"group_id"`
	Name      string    `db:"name"`
	IsPublic  bool      `db:"is_public"`
	PublicID  *string   `db:"public_id"`
	CreatedBy string    `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Category struct {
	ID          string    `db:"id"`
	MapID       string    `db:"map_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Color       string    `db:"color"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Point optionally references a category on the same map. The reference
// is cleared, not the point deleted, when its category goes away.
type Point struct {
	ID          string     `db:"id"`
	MapID       string     `db:"map_id"`
	CategoryID  *string    `db:"category_id"`
	Description string     `db:"description"`
	Latitude    float64    `db:"latitude"`
	Longitude   float64    `db:"longitude"`
	OccurredAt  time.Time  `db:"occurred_at"`
	DueAt       *time.Time `db:"due_at"`
	Notes       *string    `db:"notes"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

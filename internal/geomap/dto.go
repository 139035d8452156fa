// waypoint | 2026
// dto.go

package geomap

import (
	"time"
)

type CreateMapRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type RenameMapRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// SetMapVisibilityRequest uses a pointer so "is_public": false survives
// the required check.
type SetMapVisibilityRequest struct {
	IsPublic *bool `json:"is_public" validate:"required"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color" validate:"required,hexcolor"`
}

// PointRequest keeps the coordinates as pointers: latitude 0 and
// longitude 0 are valid positions and must not trip "required".
type PointRequest struct {
	CategoryID  *string    `json:"category_id" validate:"omitempty,uuid"`
	Description string     `json:"description" validate:"required,max=500"`
	Latitude    *float64   `json:"latitude" validate:"required,latitude"`
	Longitude   *float64   `json:"longitude" validate:"required,longitude"`
	OccurredAt  time.Time  `json:"occurred_at" validate:"required"`
	DueAt       *time.Time `json:"due_at"`
	Notes       *string    `json:"notes" validate:"omitempty,max=2000"`
}

type ImportPointsRequest struct {
	Points []PointRequest `json:"points" validate:"required,min=1,max=1000,dive"`
}

type MapResponse struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	Name      string    `json:"name"`
	IsPublic  bool      `json:"is_public"`
	PublicID  *string   `json:"public_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CategoryResponse struct {
	ID          string    `json:"id"`
	MapID       string    `json:"map_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PointResponse struct {
	ID          string     `json:"id"`
	MapID       string     `json:"map_id"`
	CategoryID  *string    `json:"category_id,omitempty"`
	Description string     `json:"description"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	OccurredAt  time.Time  `json:"occurred_at"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ImportPointsResponse struct {
	Imported int `json:"imported"`
}

// PublicMapResponse is the unauthenticated read model: the map with all
// of its content plus the running view count.
type PublicMapResponse struct {
	PublicID   string             `json:"public_id"`
	Name       string             `json:"name"`
	Categories []CategoryResponse `json:"categories"`
	Points     []PointResponse    `json:"points"`
	Views      int64              `json:"views"`
}

func toMapResponse(m *Map) MapResponse {
	return MapResponse{
		ID:        m.ID,
		GroupID:   m.GroupID,
		Name:      m.Name,
		IsPublic:  m.IsPublic,
		PublicID:  m.PublicID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toMapResponses(maps []Map) []MapResponse {
	responses := make([]MapResponse, 0, len(maps))
	for i := range maps {
		responses = append(responses, toMapResponse(&maps[i]))
	}
	return responses
}

func toCategoryResponse(c *Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		MapID:       c.MapID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toCategoryResponses(categories []Category) []CategoryResponse {
	responses := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, toCategoryResponse(&categories[i]))
	}
	return responses
}

func toPointResponse(p *Point) PointResponse {
	return PointResponse{
		ID:          p.ID,
		MapID:       p.MapID,
		CategoryID:  p.CategoryID,
		Description: p.Description,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		OccurredAt:  p.OccurredAt,
		DueAt:       p.DueAt,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPointResponses(points []Point) []PointResponse {
	responses := make([]PointResponse, 0, len(points))
	for i := range points {
		responses = append(responses, toPointResponse(&points[i]))
	}
	return responses
}

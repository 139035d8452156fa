// waypoint | 2026
// handler.go

package geomap

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/waypointhq/waypoint/internal/core"
	"github.com/waypointhq/waypoint/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/groups/{groupID}/maps", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.CreateMap)
		r.Get("/", h.ListMaps)

		r.Route("/{mapID}", func(r chi.Router) {
			r.Get("/", h.GetMap)
			r.Put("/", h.RenameMap)
			r.Put("/visibility", h.SetMapVisibility)
			r.Delete("/", h.DeleteMap)

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", h.CreateCategory)
				r.Put("/{categoryID}", h.UpdateCategory)
				r.Delete("/{categoryID}", h.DeleteCategory)
			})

			r.Route("/points", func(r chi.Router) {
				r.Post("/", h.CreatePoint)
				r.Get("/", h.ListPoints)
				r.Post("/import", h.ImportPoints)
				r.Put("/{pointID}", h.UpdatePoint)
				r.Delete("/{pointID}", h.DeletePoint)
			})
		})
	})
}

// RegisterPublicRoutes mounts the unauthenticated read path for shared
// maps.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/public/maps/{publicID}", h.GetPublicMap)
}

type pathIDs struct {
	groupID string
	mapID   string
}

func ids(r *http.Request) pathIDs {
	return pathIDs{
		groupID: chi.URLParam(r, "groupID"),
		mapID:   chi.URLParam(r, "mapID"),
	}
}

func (h *Handler) CreateMap(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	p := ids(r)

	var req CreateMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.CreateMap(r.Context(), userID, p.groupID, req)
	if err != nil {
		respondServiceError(w, err, "map")
		return
	}

	core.Created(w, resp)
}

func (h *Handler) ListMaps(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	p := ids(r)

	maps, err := h.service.ListMaps(r.Context(), userID, p.groupID)
	if err != nil {
		respondServiceError(w, err, "map")
		return
	}

	core.OK(w, maps)
}

func (h *Handler) GetMap(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	p := ids(r)

	resp, err := h.service.GetMap(r.Context(), userID, p.groupID, p.mapID)
	if err != nil {
		respondServiceError(w, err, "map")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) RenameMap(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	p := ids(r)

	var req RenameMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.RenameMap(
		r.Context(), userID, p.groupID, p.mapID, req,
	)
	if err != nil {
		respondServiceError(w, err, "map")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) SetMapVisibility(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	p := ids(r)

	var req SetMapVisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.SetMapVisibility(
		r.Context(), userID, p.groupID, p.mapID, req,
	)
	if err != nil {
		respondServiceError(w, err, "map")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) DeleteMap(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	p := ids(r)

	err := h.service.DeleteMap(r.Context(), userID, p.groupID, p.mapID)
	if err != nil {
		respondServiceError(w, err, "map")
		return
	}

	core.NoContent(w)
}

func (h *Handler) GetPublicMap(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicID")

	resp, err := h.service.GetPublicMap(r.Context(), publicID)
	if err != nil {
		respondServiceError(w, err, "map")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	p := ids(r)

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.CreateCategory(
		r.Context(), userID, p.groupID, p.mapID, req,
	)
	if err != nil {
		respondServiceError(w, err, "category")
		return
	}

	core.Created(w, resp)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	p := ids(r)
	categoryID := chi.URLParam(r, "categoryID")

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.UpdateCategory(
		r.Context(), userID, p.groupID, p.mapID, categoryID, req,
	)
	if err != nil {
		respondServiceError(w, err, "category")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	p := ids(r)
	categoryID := chi.URLParam(r, "categoryID")

	err := h.service.DeleteCategory(
		r.Context(), userID, p.groupID, p.mapID, categoryID,
	)
	if err != nil {
		respondServiceError(w, err, "category")
		return
	}

	core.NoContent(w)
}

func (h *Handler) CreatePoint(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	p := ids(r)

	var req PointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.CreatePoint(
		r.Context(), userID, p.groupID, p.mapID, req,
	)
	if err != nil {
		respondServiceError(w, err, "point")
		return
	}

	core.Created(w, resp)
}

func (h *Handler) ListPoints(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	p := ids(r)

	points, err := h.service.ListPoints(
		r.Context(), userID, p.groupID, p.mapID,
	)
	if err != nil {
		respondServiceError(w, err, "point")
		return
	}

	core.OK(w, points)
}

func (h *Handler) UpdatePoint(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	p := ids(r)
	pointID := chi.URLParam(r, "pointID")

	var req PointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.UpdatePoint(
		r.Context(), userID, p.groupID, p.mapID, pointID, req,
	)
	if err != nil {
		respondServiceError(w, err, "point")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) DeletePoint(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	p := ids(r)
	pointID := chi.URLParam(r, "pointID")

	err := h.service.DeletePoint(
		r.Context(), userID, p.groupID, p.mapID, pointID,
	)
	if err != nil {
		respondServiceError(w, err, "point")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ImportPoints(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	p := ids(r)

	var req ImportPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.ImportPoints(
		r.Context(), userID, p.groupID, p.mapID, req,
	)
	if err != nil {
		respondServiceError(w, err, "point")
		return
	}

	core.Created(w, resp)
}

func respondServiceError(w http.ResponseWriter, err error, resource string) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "insufficient permissions")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid input")
	default:
		core.InternalServerError(w, err)
	}
}

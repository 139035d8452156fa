// waypoint | 2026
// handler.go

package group

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
	r.Route("/groups", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.CreateGroup)
		r.Get("/", h.ListGroups)

		r.Route("/{groupID}", func(r chi.Router) {
			r.Get("/", h.GetGroup)
			r.Put("/", h.RenameGroup)
			r.Delete("/", h.DeleteGroup)

			r.Post("/users", h.AddUsers)
			r.Delete("/users/{userID}", h.RemoveUser)
			r.Put("/users/{userID}/role", h.ChangeMemberRole)
		})
	})
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.CreateGroup(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, err, "group")
		return
	}

	core.Created(w, resp)
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	groups, err := h.service.ListGroups(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "group")
		return
	}

	core.OK(w, groups)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groupID := chi.URLParam(r, "groupID")

	detail, err := h.service.GetGroup(r.Context(), userID, groupID)
	if err != nil {
		respondServiceError(w, err, "group")
		return
	}

	core.OK(w, detail)
}

func (h *Handler) RenameGroup(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groupID := chi.URLParam(r, "groupID")

	var req RenameGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.RenameGroup(r.Context(), userID, groupID, req)
	if err != nil {
		respondServiceError(w, err, "group")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groupID := chi.URLParam(r, "groupID")

	if err := h.service.DeleteGroup(r.Context(), userID, groupID); err != nil {
		respondServiceError(w, err, "group")
		return
	}

	core.NoContent(w)
}

func (h *Handler) AddUsers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groupID := chi.URLParam(r, "groupID")

	var req AddUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.AddUsers(r.Context(), userID, groupID, req)
	if err != nil {
		respondServiceError(w, err, "group")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groupID := chi.URLParam(r, "groupID")
	targetID := chi.URLParam(r, "userID")

	err := h.service.RemoveUser(r.Context(), userID, groupID, targetID)
	if err != nil {
		respondServiceError(w, err, "group")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ChangeMemberRole(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groupID := chi.URLParam(r, "groupID")
	targetID := chi.URLParam(r, "userID")

	var req ChangeMemberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.ChangeMemberRole(
		r.Context(),
		userID,
		groupID,
		targetID,
		req,
	)
	if err != nil {
		respondServiceError(w, err, "group")
		return
	}

	core.OK(w, resp)
}

// respondServiceError maps service errors onto HTTP responses. AppErrors
// carry their own message; bare sentinels get a generic one.
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

// AngelaMos | 2026
// handler.go

package role

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/driveready/driveready-api/internal/core"
)

type CreateRoleRequest struct {
	Name        string   `json:"name"        validate:"required,min=1,max=50,lowercase"`
	Description string   `json:"description" validate:"max=255"`
	Permissions []string `json:"permissions" validate:"dive,min=1,max=100"`
}

type Handler struct {
	repo      Repository
	resolver  *Resolver
	validator *validator.Validate
}

func NewHandler(repo Repository, resolver *Resolver) *Handler {
	return &Handler{
		repo:      repo,
		resolver:  resolver,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/roles", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListRoles)
		r.Post("/", h.CreateRole)
	})
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.repo.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, roles)
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	role := &Role{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	}

	if err := h.repo.Create(r.Context(), role); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			core.JSONError(w, core.DuplicateError("role name"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	h.resolver.Invalidate(role)

	core.Created(w, role)
}

// AngelaMos | 2026
// handler.go

package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/driveready/driveready-api/internal/core"
	"github.com/driveready/driveready-api/internal/middleware"
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

// RegisterRoutes mounts user-facing account endpoints. A user may read
// their own record; admins may read anyone's.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.With(middleware.RequireOwnership("userID")).
			Get("/{userID}", h.GetAccount)
	})
}

// RegisterAdminRoutes mounts admin-only account management endpoints.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListAccounts)
		r.Get("/{userID}", h.GetAccount)
		r.Put("/{userID}/role", h.UpdateRole)
		r.Put("/{userID}/active", h.SetActive)
		r.Post("/{userID}/revoke-sessions", h.RevokeSessions)
	})
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
		Role:     r.URL.Query().Get("role"),
	}

	if active := r.URL.Query().Get("active"); active != "" {
		parsed, err := strconv.ParseBool(active)
		if err == nil {
			params.Active = &parsed
		}
	}

	accounts, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToProjectionList(accounts),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	acct, err := h.service.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToProjection(acct))
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	userID := chi.URLParam(r, "userID")

	if err := h.service.CanModify(requesterID, userID); err != nil {
		core.Forbidden(w, "cannot change your own role")
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	acct, err := h.service.SetRole(r.Context(), userID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "unknown role")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ToProjection(acct))
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	userID := chi.URLParam(r, "userID")

	if err := h.service.CanModify(requesterID, userID); err != nil {
		core.Forbidden(w, "cannot deactivate your own account")
		return
	}

	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	acct, err := h.service.SetActive(r.Context(), userID, *req.Active)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToProjection(acct))
}

// RevokeSessions force-logs-out every device for the target account by
// bumping its token version. Existing session tokens fail the version
// check on their next request.
func (h *Handler) RevokeSessions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := h.service.RevokeSessions(r.Context(), userID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OKMessage(w, "all sessions revoked", nil)
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}

// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
	"github.com/carterperez-dev/templates/library-backend/internal/middleware"
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
	authenticator, librarianOnly func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.GetMe)
		r.Put("/me", h.UpdateMe)
		r.Delete("/me", h.DeleteMe)

		r.Group(func(r chi.Router) {
			r.Use(librarianOnly)

			r.Get("/", h.ListUsers)
			r.Get("/{userID}", h.GetUser)
			r.Put("/{userID}", h.UpdateUser)
			r.Delete("/{userID}", h.DeleteUser)
		})
	})
}

// RegisterAdminRoutes mounts role management.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Put("/{userID}/role", h.AddRole)
		r.Delete("/{userID}/role/{role}", h.RemoveRole)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetMe(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.UpdateMe(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		req,
	)
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteMe(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := core.ParsePage(r)
	params := ListUsersParams{
		Page:     page.Page,
		PageSize: page.PageSize,
		Search:   r.URL.Query().Get("search"),
		Role:     r.URL.Query().Get("role"),
	}

	users, total, err := h.service.ListUsers(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		params,
	)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "userID"),
	)
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.UpdateUser(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "userID"),
		req,
	)
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteUser(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "userID"),
	)
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) AddRole(w http.ResponseWriter, r *http.Request) {
	var req AddRoleRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.AddRole(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "userID"),
		req.Role,
	)
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) RemoveRole(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.RemoveRole(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "userID"),
		chi.URLParam(r, "role"),
	)
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}

func writeUserError(w http.ResponseWriter, err error) {
	var appErr *core.AppError
	if !errors.As(err, &appErr) && errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "user")
		return
	}
	if errors.Is(err, core.ErrDuplicateKey) {
		core.JSONError(w, core.DuplicateError("email"))
		return
	}
	core.WriteError(w, err)
}

// AngelaMos | 2026
// handler.go

package feedback

import (
	"encoding/json"
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
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/feedbacks", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Create)
		r.Get("/book/{bookID}", h.ListByBook)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	actor := middleware.ActorFromContext(r.Context())

	f, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.Created(w, ToFeedbackResponse(f, actor.UserID))
}

func (h *Handler) ListByBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := core.PathInt64(r, "bookID")
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	page := core.ParsePage(r)

	items, total, err := h.service.ListByBook(r.Context(), bookID, page)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.Paginated(
		w,
		ToFeedbackResponseList(items, middleware.GetUserID(r.Context())),
		page.Page,
		page.PageSize,
		total,
	)
}

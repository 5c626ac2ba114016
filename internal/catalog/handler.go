// AngelaMos | 2026
// handler.go

package catalog

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

// RegisterRoutes mounts on the authenticated /books router.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	librarianOnly func(http.Handler) http.Handler,
) {
	r.Get("/", h.ListShareable)
	r.Get("/search", h.Search)
	r.Get("/{bookID:[0-9]+}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(librarianOnly)

		r.Post("/", h.Create)
		r.Put("/{bookID:[0-9]+}", h.Update)
		r.Delete("/{bookID:[0-9]+}", h.Delete)
		r.Patch("/shareable/{bookID:[0-9]+}", h.ToggleShareable)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	book, err := h.service.Create(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		req,
	)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.Created(w, ToBookResponse(book))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathInt64(r, "bookID")
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.OK(w, ToBookResponse(book))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathInt64(r, "bookID")
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	var req UpdateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	book, err := h.service.Update(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		id,
		req,
	)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.OK(w, ToBookResponse(book))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathInt64(r, "bookID")
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	err = h.service.Delete(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		id,
	)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ToggleShareable(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathInt64(r, "bookID")
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	book, err := h.service.ToggleShareable(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		id,
	)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.OK(w, ToBookResponse(book))
}

func (h *Handler) ListShareable(w http.ResponseWriter, r *http.Request) {
	page := core.ParsePage(r)

	books, total, err := h.service.ListShareable(r.Context(), page)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.Paginated(w, ToBookResponseList(books), page.Page, page.PageSize, total)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	page := core.ParsePage(r)
	q := r.URL.Query()

	params := SearchParams{
		Title:      q.Get("title"),
		AuthorName: q.Get("author_name"),
		ISBN:       q.Get("isbn"),
		Genre:      q.Get("genre"),
		Page:       page.Page,
		PageSize:   page.PageSize,
	}

	books, total, err := h.service.Search(r.Context(), params)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.Paginated(w, ToBookResponseList(books), page.Page, page.PageSize, total)
}

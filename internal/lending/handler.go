// AngelaMos | 2026
// handler.go

package lending

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
	"github.com/carterperez-dev/templates/library-backend/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts on the authenticated /books router. borrowLimit
// throttles new loans per user.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	librarianOnly func(http.Handler) http.Handler,
	borrowLimit func(http.Handler) http.Handler,
) {
	r.Get("/borrowed", h.Borrowed)
	r.Get("/returned", h.Returned)
	r.With(borrowLimit).Post("/borrow/{bookID}", h.Borrow)
	r.Patch("/borrow/return/{bookID}", h.Return)

	r.Group(func(r chi.Router) {
		r.Use(librarianOnly)

		r.Patch("/borrow/return/approve/{bookID}", h.ApproveReturn)
		r.Get("/overdue-books", h.OverdueReport)
	})
}

type transitionFunc func(
	ctx context.Context,
	bookID int64,
	actor core.Actor,
) (*Receipt, error)

func (h *Handler) Borrow(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, http.StatusCreated, h.service.Borrow)
}

func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, http.StatusOK, h.service.ReturnBook)
}

func (h *Handler) ApproveReturn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, http.StatusOK, h.service.ApproveReturn)
}

func (h *Handler) transition(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	op transitionFunc,
) {
	bookID, err := core.PathInt64(r, "bookID")
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	receipt, err := op(
		r.Context(),
		bookID,
		middleware.ActorFromContext(r.Context()),
	)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.JSON(w, status, core.Response{
		Success: true,
		Data:    ToLoanResponse(receipt),
	})
}

func (h *Handler) Borrowed(w http.ResponseWriter, r *http.Request) {
	h.history(w, r, h.service.BorrowedBy)
}

func (h *Handler) Returned(w http.ResponseWriter, r *http.Request) {
	h.history(w, r, h.service.ReturnedBy)
}

func (h *Handler) history(
	w http.ResponseWriter,
	r *http.Request,
	list func(context.Context, core.Actor, core.PageParams) ([]Receipt, int, error),
) {
	page := core.ParsePage(r)

	receipts, total, err := list(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		page,
	)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.Paginated(w, ToLoanResponseList(receipts), page.Page, page.PageSize, total)
}

func (h *Handler) OverdueReport(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Overdue(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
	)
	if err != nil {
		core.WriteError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := WriteOverdueReport(&buf, entries); err != nil {
		core.InternalServerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+ReportFilename)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes()) //nolint:errcheck // best-effort response write
}

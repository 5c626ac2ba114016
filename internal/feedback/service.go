// AngelaMos | 2026
// service.go

package feedback

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carterperez-dev/templates/library-backend/internal/catalog"
	"github.com/carterperez-dev/templates/library-backend/internal/core"
)

const msgNotShareable = "You cannot give a feedback for an archived or not shareable book"

type BookGate interface {
	GetBook(ctx context.Context, id int64) (*catalog.Book, error)
}

type Service struct {
	repo   Repository
	books  BookGate
	logger *slog.Logger
}

func NewService(repo Repository, books BookGate, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		books:  books,
		logger: logger,
	}
}

func (s *Service) Create(
	ctx context.Context,
	actor core.Actor,
	req CreateFeedbackRequest,
) (*Feedback, error) {
	if err := actor.Require("create feedback", core.RolePatron, core.RoleLibrarian, core.RoleAdmin); err != nil {
		return nil, err
	}

	if req.Note < MinNote || req.Note > MaxNote {
		return nil, fmt.Errorf(
			"create feedback: note must be between %d and %d: %w",
			MinNote, MaxNote, core.ErrInvalidInput,
		)
	}

	book, err := s.books.GetBook(ctx, req.BookID)
	if err != nil {
		return nil, err
	}

	if !book.Shareable {
		return nil, core.NotPermitted(msgNotShareable)
	}

	f := &Feedback{
		BookID:  book.ID,
		UserID:  actor.UserID,
		Note:    req.Note,
		Comment: req.Comment,
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}

	s.logger.Info("feedback created",
		"feedback_id", f.ID,
		"book_id", f.BookID,
		"user_id", f.UserID,
	)

	return f, nil
}

func (s *Service) ListByBook(
	ctx context.Context,
	bookID int64,
	page core.PageParams,
) ([]Feedback, int, error) {
	if _, err := s.books.GetBook(ctx, bookID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByBook(ctx, bookID, page)
}

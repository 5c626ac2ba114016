// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
)

type Service struct {
	db     *sqlx.DB
	repo   Repository
	logger *slog.Logger
}

func NewService(db *sqlx.DB, logger *slog.Logger) *Service {
	return &Service{
		db:     db,
		repo:   NewRepository(db),
		logger: logger,
	}
}

func (s *Service) Create(
	ctx context.Context,
	actor core.Actor,
	req CreateBookRequest,
) (*Book, error) {
	if err := actor.Require("create book", core.RoleLibrarian); err != nil {
		return nil, err
	}

	createdBy := actor.UserID
	book := &Book{
		Title:           req.Title,
		AuthorName:      req.AuthorName,
		ISBN:            req.ISBN,
		Synopsis:        req.Synopsis,
		Genre:           req.Genre,
		PublicationDate: req.PublicationDate,
		Shareable:       req.Shareable,
		CreatedBy:       &createdBy,
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	s.logger.Info("book created", "book_id", book.ID, "by", actor.UserID)
	return book, nil
}

// GetBook is the lookup used by lending and feedback.
func (s *Service) GetBook(ctx context.Context, id int64) (*Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (s *Service) Update(
	ctx context.Context,
	actor core.Actor,
	id int64,
	req UpdateBookRequest,
) (*Book, error) {
	if err := actor.Require("update book", core.RoleLibrarian); err != nil {
		return nil, err
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.AuthorName != nil {
		book.AuthorName = *req.AuthorName
	}
	if req.ISBN != nil {
		book.ISBN = *req.ISBN
	}
	if req.Synopsis != nil {
		book.Synopsis = *req.Synopsis
	}
	if req.Genre != nil {
		book.Genre = *req.Genre
	}
	if req.PublicationDate != nil {
		book.PublicationDate = req.PublicationDate
	}

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

func (s *Service) ToggleShareable(
	ctx context.Context,
	actor core.Actor,
	id int64,
) (*Book, error) {
	if err := actor.Require("toggle shareable", core.RoleLibrarian); err != nil {
		return nil, err
	}

	shareable, err := s.repo.ToggleShareable(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("book shareable toggled",
		"book_id", id,
		"shareable", shareable,
		"by", actor.UserID,
	)

	return s.repo.GetByID(ctx, id)
}

// Delete removes the book, its feedback and its loan history atomically.
func (s *Service) Delete(
	ctx context.Context,
	actor core.Actor,
	id int64,
) error {
	if err := actor.Require("delete book", core.RoleLibrarian); err != nil {
		return err
	}

	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return NewRepository(tx).DeleteCascade(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	s.logger.Info("book deleted", "book_id", id, "by", actor.UserID)
	return nil
}

func (s *Service) ListShareable(
	ctx context.Context,
	page core.PageParams,
) ([]Book, int, error) {
	return s.repo.ListShareable(ctx, page)
}

func (s *Service) Search(
	ctx context.Context,
	params SearchParams,
) ([]Book, int, error) {
	if params.IsEmpty() {
		return nil, 0, fmt.Errorf(
			"search books: at least one criterion is required: %w",
			core.ErrInvalidInput,
		)
	}
	return s.repo.Search(ctx, params)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// AngelaMos | 2026
// service.go

package lending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/library-backend/internal/catalog"
	"github.com/carterperez-dev/templates/library-backend/internal/core"
	"github.com/carterperez-dev/templates/library-backend/internal/metrics"
)

var anyRole = []string{core.RolePatron, core.RoleLibrarian, core.RoleAdmin}

// BookGate is the read-only catalog view lending depends on.
type BookGate interface {
	GetBook(ctx context.Context, id int64) (*catalog.Book, error)
}

type Service struct {
	repo    Repository
	books   BookGate
	clock   core.Clock
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func NewService(
	repo Repository,
	books BookGate,
	clock core.Clock,
	logger *slog.Logger,
	recorder *metrics.Recorder,
) *Service {
	return &Service{
		repo:    repo,
		books:   books,
		clock:   clock,
		logger:  logger,
		metrics: recorder,
	}
}

func (s *Service) Borrow(
	ctx context.Context,
	bookID int64,
	actor core.Actor,
) (*Receipt, error) {
	if err := actor.Require("borrow book", anyRole...); err != nil {
		return nil, err
	}

	book, open, err := s.load(ctx, bookID)
	if err != nil {
		return nil, s.fail(ctx, "borrow", bookID, err)
	}

	if err := DecideBorrow(book.Shareable, StateOf(open)); err != nil {
		return nil, s.fail(ctx, "borrow", bookID, err)
	}

	now := s.clock.Now()
	loan := &Loan{
		UserID:     actor.UserID,
		BookID:     bookID,
		BorrowDate: now,
		DueDate:    DueDate(now),
	}

	if err := s.repo.Insert(ctx, loan); err != nil {
		if errors.Is(err, ErrOpenLoanExists) {
			return nil, s.fail(ctx, "borrow", bookID, core.NotPermitted(msgAlreadyBorrowed))
		}
		return nil, s.fail(ctx, "borrow", bookID, err)
	}

	return s.complete(ctx, "borrow", loan.ID, now)
}

func (s *Service) ReturnBook(
	ctx context.Context,
	bookID int64,
	actor core.Actor,
) (*Receipt, error) {
	if err := actor.Require("return book", anyRole...); err != nil {
		return nil, err
	}

	book, open, err := s.load(ctx, bookID)
	if err != nil {
		return nil, s.fail(ctx, "return", bookID, err)
	}

	if err := DecideReturn(book.Shareable, StateOf(open)); err != nil {
		return nil, s.fail(ctx, "return", bookID, err)
	}

	if err := s.repo.MarkReturned(ctx, open.ID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, s.fail(ctx, "return", bookID, core.NotFoundf(msgNoActiveBorrow))
		}
		return nil, s.fail(ctx, "return", bookID, err)
	}

	return s.complete(ctx, "return", open.ID, s.clock.Now())
}

// ApproveReturn closes a returned loan. Late days are measured against the
// approval time, so they keep growing while a return awaits approval.
func (s *Service) ApproveReturn(
	ctx context.Context,
	bookID int64,
	actor core.Actor,
) (*Receipt, error) {
	if err := actor.Require("approve return", core.RoleLibrarian); err != nil {
		return nil, err
	}

	book, open, err := s.load(ctx, bookID)
	if err != nil {
		return nil, s.fail(ctx, "approve", bookID, err)
	}

	if err := DecideApprove(book.Shareable, StateOf(open)); err != nil {
		return nil, s.fail(ctx, "approve", bookID, err)
	}

	now := s.clock.Now()
	if err := s.repo.MarkApproved(ctx, open.ID, now); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, s.fail(ctx, "approve", bookID, core.NotFoundf(msgNoPendingApproval))
		}
		return nil, s.fail(ctx, "approve", bookID, err)
	}

	return s.complete(ctx, "approve", open.ID, now)
}

func (s *Service) BorrowedBy(
	ctx context.Context,
	actor core.Actor,
	page core.PageParams,
) ([]Receipt, int, error) {
	return s.history(ctx, actor, false, page)
}

func (s *Service) ReturnedBy(
	ctx context.Context,
	actor core.Actor,
	page core.PageParams,
) ([]Receipt, int, error) {
	return s.history(ctx, actor, true, page)
}

func (s *Service) history(
	ctx context.Context,
	actor core.Actor,
	returnedOnly bool,
	page core.PageParams,
) ([]Receipt, int, error) {
	if err := actor.Require("loan history", anyRole...); err != nil {
		return nil, 0, err
	}

	views, total, err := s.repo.ListByUser(ctx, actor.UserID, returnedOnly, page)
	if err != nil {
		return nil, 0, err
	}

	now := s.clock.Now()
	receipts := make([]Receipt, 0, len(views))
	for _, v := range views {
		receipts = append(receipts, receiptFor(v, now))
	}

	return receipts, total, nil
}

func (s *Service) Overdue(
	ctx context.Context,
	actor core.Actor,
) ([]OverdueEntry, error) {
	if err := actor.Require("overdue report", core.RoleLibrarian); err != nil {
		return nil, err
	}

	entries, err := s.repo.ListOverdue(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("overdue report generated", "entries", len(entries))
	return entries, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx, s.clock.Now())
}

func (s *Service) load(
	ctx context.Context,
	bookID int64,
) (*catalog.Book, *Loan, error) {
	book, err := s.books.GetBook(ctx, bookID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil, core.NotFoundf("No book found with the id %d", bookID)
	}
	if err != nil {
		return nil, nil, err
	}

	open, err := s.repo.FindOpen(ctx, bookID)
	if errors.Is(err, core.ErrNotFound) {
		return book, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	return book, open, nil
}

func (s *Service) complete(
	ctx context.Context,
	action string,
	loanID int64,
	now time.Time,
) (*Receipt, error) {
	view, err := s.repo.GetView(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	receipt := Receipt{LoanView: *view, LateDays: LateDays(view.DueDate, now)}

	s.metrics.Lending(action, metrics.OutcomeSuccess)
	core.AddSpanEvent(ctx, "lending."+action,
		attribute.Int64("loan_id", view.ID),
		attribute.Int64("book_id", view.BookID),
		attribute.Int("late_days", receipt.LateDays),
	)
	s.logger.Info("lending transition",
		"action", action,
		"loan_id", view.ID,
		"book_id", view.BookID,
		"user_id", view.UserID,
		"late_days", receipt.LateDays,
	)

	return &receipt, nil
}

func (s *Service) fail(ctx context.Context, action string, bookID int64, err error) error {
	if errors.Is(err, core.ErrOperationNotPermitted) || errors.Is(err, core.ErrNotFound) {
		s.metrics.Lending(action, metrics.OutcomeRejected)
		s.logger.Warn("lending rejected",
			"action", action,
			"book_id", bookID,
			"reason", err.Error(),
		)
		return err
	}

	s.metrics.Lending(action, metrics.OutcomeError)
	core.SetSpanError(ctx, err)
	return fmt.Errorf("%s book %d: %w", action, bookID, err)
}

// receiptFor freezes late days at the approval time for closed loans.
func receiptFor(v LoanView, now time.Time) Receipt {
	at := now
	if v.ReturnApproved && v.ReturnDate != nil {
		at = *v.ReturnDate
	}
	return Receipt{LoanView: v, LateDays: LateDays(v.DueDate, at)}
}

// AngelaMos | 2026
// repository.go

package lending

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
)

// ErrOpenLoanExists reports a lost insert race on the one-open-loan index.
var ErrOpenLoanExists = errors.New("book already has an open loan")

type Repository interface {
	FindOpen(ctx context.Context, bookID int64) (*Loan, error)
	Insert(ctx context.Context, loan *Loan) error
	MarkReturned(ctx context.Context, loanID int64) error
	MarkApproved(ctx context.Context, loanID int64, at time.Time) error
	GetView(ctx context.Context, loanID int64) (*LoanView, error)
	ListByUser(
		ctx context.Context,
		userID string,
		returnedOnly bool,
		page core.PageParams,
	) ([]LoanView, int, error)
	ListOverdue(ctx context.Context, now time.Time) ([]OverdueEntry, error)
	Stats(ctx context.Context, now time.Time) (*Stats, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const loanColumns = `
	l.id, l.user_id, l.book_id, l.borrow_date, l.due_date, l.return_date,
	l.returned, l.return_approved, l.created_at, l.updated_at`

const viewColumns = loanColumns + `,
	b.title, b.author_name, b.isbn, u.email,
	COALESCE((
		SELECT AVG(f.note)::float8
		FROM feedbacks f
		WHERE f.book_id = b.id
	), 0) AS rate`

const viewFrom = `
	FROM loans l
	JOIN books b ON b.id = l.book_id
	JOIN users u ON u.id = l.user_id`

func (r *repository) FindOpen(ctx context.Context, bookID int64) (*Loan, error) {
	query := `SELECT` + loanColumns + `
		FROM loans l
		WHERE l.book_id = $1 AND NOT l.return_approved`

	var loan Loan
	err := r.db.GetContext(ctx, &loan, query, bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find open loan for book %d: %w", bookID, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find open loan for book %d: %w", bookID, err)
	}

	return &loan, nil
}

// Insert opens a loan unless the book already has one. The partial unique
// index makes the existence check and the write a single statement.
func (r *repository) Insert(ctx context.Context, loan *Loan) error {
	query := `
		INSERT INTO loans (user_id, book_id, borrow_date, due_date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (book_id) WHERE NOT return_approved DO NOTHING
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		loan.UserID,
		loan.BookID,
		loan.BorrowDate,
		loan.DueDate,
	).Scan(&loan.ID, &loan.CreatedAt, &loan.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("open loan for book %d: %w", loan.BookID, ErrOpenLoanExists)
	}
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("open loan for book %d: %w", loan.BookID, ErrOpenLoanExists)
		}
		return fmt.Errorf("open loan for book %d: %w", loan.BookID, err)
	}

	return nil
}

func (r *repository) MarkReturned(ctx context.Context, loanID int64) error {
	query := `
		UPDATE loans
		SET returned = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT returned AND NOT return_approved`

	return r.execOne(ctx, "mark loan returned", loanID, query, loanID)
}

func (r *repository) MarkApproved(
	ctx context.Context,
	loanID int64,
	at time.Time,
) error {
	query := `
		UPDATE loans
		SET return_approved = TRUE, return_date = $2, updated_at = NOW()
		WHERE id = $1 AND returned AND NOT return_approved`

	return r.execOne(ctx, "approve loan return", loanID, query, loanID, at)
}

func (r *repository) execOne(
	ctx context.Context,
	op string,
	loanID int64,
	query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s %d: %w", op, loanID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: %w", op, loanID, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s %d: %w", op, loanID, core.ErrNotFound)
	}

	return nil
}

func (r *repository) GetView(ctx context.Context, loanID int64) (*LoanView, error) {
	query := `SELECT` + viewColumns + viewFrom + `
		WHERE l.id = $1`

	var view LoanView
	err := r.db.GetContext(ctx, &view, query, loanID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get loan %d: %w", loanID, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get loan %d: %w", loanID, err)
	}

	return &view, nil
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID string,
	returnedOnly bool,
	page core.PageParams,
) ([]LoanView, int, error) {
	page.Normalize()

	where := `
		WHERE l.user_id = $1 AND (NOT $2::boolean OR l.returned)`

	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM loans l`+where, userID, returnedOnly)
	if err != nil {
		return nil, 0, fmt.Errorf("count loans for user %s: %w", userID, err)
	}

	query := `SELECT` + viewColumns + viewFrom + where + `
		ORDER BY l.borrow_date DESC, l.id DESC
		LIMIT $3 OFFSET $4`

	var views []LoanView
	err = r.db.SelectContext(ctx, &views, query,
		userID, returnedOnly, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list loans for user %s: %w", userID, err)
	}

	return views, total, nil
}

func (r *repository) ListOverdue(
	ctx context.Context,
	now time.Time,
) ([]OverdueEntry, error) {
	query := `
		SELECT l.id AS loan_id, b.title, b.author_name, b.isbn, l.due_date,
		       u.first_name, u.last_name, u.email` + viewFrom + `
		WHERE NOT l.returned AND l.due_date < $1
		ORDER BY l.due_date ASC, l.id ASC`

	var entries []OverdueEntry
	if err := r.db.SelectContext(ctx, &entries, query, now); err != nil {
		return nil, fmt.Errorf("list overdue loans: %w", err)
	}

	return entries, nil
}

func (r *repository) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE NOT return_approved) AS open_loans,
			COUNT(*) FILTER (WHERE returned AND NOT return_approved) AS pending_approval,
			COUNT(*) FILTER (WHERE NOT returned AND due_date < $1) AS overdue
		FROM loans`

	var stats Stats
	if err := r.db.GetContext(ctx, &stats, query, now); err != nil {
		return nil, fmt.Errorf("loan stats: %w", err)
	}

	return &stats, nil
}

// AngelaMos | 2026
// repository.go

package feedback

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, f *Feedback) error
	ListByBook(
		ctx context.Context,
		bookID int64,
		page core.PageParams,
	) ([]Feedback, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, f *Feedback) error {
	query := `
		INSERT INTO feedbacks (book_id, user_id, note, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		f.BookID,
		f.UserID,
		f.Note,
		f.Comment,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create feedback for book %d: %w", f.BookID, core.ErrNotFound)
		}
		return fmt.Errorf("create feedback for book %d: %w", f.BookID, err)
	}

	return nil
}

func (r *repository) ListByBook(
	ctx context.Context,
	bookID int64,
	page core.PageParams,
) ([]Feedback, int, error) {
	page.Normalize()

	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM feedbacks WHERE book_id = $1`, bookID)
	if err != nil {
		return nil, 0, fmt.Errorf("count feedback for book %d: %w", bookID, err)
	}

	query := `
		SELECT id, book_id, user_id, note, comment, created_at
		FROM feedbacks
		WHERE book_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	var items []Feedback
	err = r.db.SelectContext(ctx, &items, query, bookID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list feedback for book %d: %w", bookID, err)
	}

	return items, total, nil
}

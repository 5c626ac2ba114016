// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, book *Book) error
	GetByID(ctx context.Context, id int64) (*Book, error)
	Update(ctx context.Context, book *Book) error
	ToggleShareable(ctx context.Context, id int64) (bool, error)
	ListShareable(ctx context.Context, page core.PageParams) ([]Book, int, error)
	Search(ctx context.Context, params SearchParams) ([]Book, int, error)
	DeleteCascade(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

var dialect = goqu.Dialect("postgres")

// rateExpr is the mean feedback note; books without feedback rate 0.
const rateExpr = `COALESCE((
	SELECT AVG(f.note)::float8
	FROM feedbacks f
	WHERE f.book_id = b.id
), 0)`

const overdueExpr = `EXISTS (
	SELECT 1
	FROM loans l
	WHERE l.book_id = b.id
	  AND l.return_date IS NULL
	  AND l.due_date < NOW()
)`

const bookColumns = `
	b.id, b.title, b.author_name, b.isbn, b.synopsis, b.genre,
	b.publication_date, b.shareable, b.created_by, b.created_at, b.updated_at,
	` + rateExpr + ` AS rate,
	` + overdueExpr + ` AS overdue`

func (r *repository) Create(ctx context.Context, book *Book) error {
	query := `
		INSERT INTO books (title, author_name, isbn, synopsis, genre,
		                   publication_date, shareable, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		book.Title,
		book.AuthorName,
		book.ISBN,
		book.Synopsis,
		book.Genre,
		book.PublicationDate,
		book.Shareable,
		book.CreatedBy,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Book, error) {
	query := `SELECT` + bookColumns + `
		FROM books b
		WHERE b.id = $1`

	var book Book
	err := r.db.GetContext(ctx, &book, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get book %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}

	return &book, nil
}

func (r *repository) Update(ctx context.Context, book *Book) error {
	query := `
		UPDATE books
		SET title = $2, author_name = $3, isbn = $4, synopsis = $5,
		    genre = $6, publication_date = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &book.UpdatedAt, query,
		book.ID,
		book.Title,
		book.AuthorName,
		book.ISBN,
		book.Synopsis,
		book.Genre,
		book.PublicationDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update book %d: %w", book.ID, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update book %d: %w", book.ID, err)
	}

	return nil
}

func (r *repository) ToggleShareable(
	ctx context.Context,
	id int64,
) (bool, error) {
	query := `
		UPDATE books
		SET shareable = NOT shareable, updated_at = NOW()
		WHERE id = $1
		RETURNING shareable`

	var shareable bool
	err := r.db.GetContext(ctx, &shareable, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("toggle shareable %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("toggle shareable %d: %w", id, err)
	}

	return shareable, nil
}

func (r *repository) ListShareable(
	ctx context.Context,
	page core.PageParams,
) ([]Book, int, error) {
	page.Normalize()

	base := dialect.From(goqu.T("books").As("b")).
		Where(goqu.I("b.shareable").IsTrue())

	return r.paginate(ctx, "list shareable books", base, page)
}

func (r *repository) Search(
	ctx context.Context,
	params SearchParams,
) ([]Book, int, error) {
	page := core.PageParams{Page: params.Page, PageSize: params.PageSize}
	page.Normalize()

	base := dialect.From(goqu.T("books").As("b")).Where(searchFilters(params)...)

	return r.paginate(ctx, "search books", base, page)
}

func searchFilters(params SearchParams) []exp.Expression {
	filters := make([]exp.Expression, 0, 4)

	contains := func(column, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		filters = append(filters,
			goqu.I(column).ILike("%"+escapeLike(value)+"%"))
	}

	contains("b.title", params.Title)
	contains("b.author_name", params.AuthorName)
	contains("b.isbn", params.ISBN)
	contains("b.genre", params.Genre)

	return filters
}

func (r *repository) paginate(
	ctx context.Context,
	op string,
	base *goqu.SelectDataset,
	page core.PageParams,
) ([]Book, int, error) {
	countQuery, countArgs, err := base.
		Select(goqu.COUNT(goqu.Star())).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: build count: %w", op, err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	listQuery, listArgs, err := base.
		Select(goqu.L(bookColumns)).
		Order(goqu.I("b.created_at").Desc(), goqu.I("b.id").Desc()).
		Limit(uint(page.PageSize)).
		Offset(uint(page.Offset())).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: build query: %w", op, err)
	}

	var books []Book
	if err := r.db.SelectContext(ctx, &books, listQuery, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return books, total, nil
}

// DeleteCascade removes the book with its feedback and loan history. Run it
// on a transaction-bound repository.
func (r *repository) DeleteCascade(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM feedbacks WHERE book_id = $1`, id); err != nil {
		return fmt.Errorf("delete book %d feedback: %w", id, err)
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM loans WHERE book_id = $1`, id); err != nil {
		return fmt.Errorf("delete book %d loans: %w", id, err)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}

	if rows == 0 {
		return fmt.Errorf("delete book %d: %w", id, core.ErrNotFound)
	}

	return nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM books`); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return total, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

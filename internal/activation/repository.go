// AngelaMos | 2026
// repository.go

package activation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
)

type Repository interface {
	Save(ctx context.Context, token *Token) error
	FindByCode(ctx context.Context, code string) (*Token, error)
	MarkValidated(ctx context.Context, id int64, at time.Time) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Save(ctx context.Context, token *Token) error {
	query := `
		INSERT INTO activation_tokens (user_id, code, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.GetContext(ctx, &token.ID, query,
		token.UserID,
		token.Code,
		token.CreatedAt,
		token.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save activation token: %w", err)
	}

	return nil
}

// FindByCode returns the newest token carrying code. Codes are short enough
// to collide across users, so the most recent issue wins.
func (r *repository) FindByCode(
	ctx context.Context,
	code string,
) (*Token, error) {
	query := `
		SELECT id, user_id, code, created_at, expires_at, validated_at
		FROM activation_tokens
		WHERE code = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var token Token
	err := r.db.GetContext(ctx, &token, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find activation token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find activation token: %w", err)
	}

	return &token, nil
}

func (r *repository) MarkValidated(
	ctx context.Context,
	id int64,
	at time.Time,
) error {
	query := `UPDATE activation_tokens SET validated_at = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("mark token validated: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark token validated: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("mark token validated: %w", core.ErrNotFound)
	}

	return nil
}

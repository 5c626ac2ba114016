// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, s *Session) error
	FindByHash(ctx context.Context, tokenHash string) (*Session, error)
	FindByID(ctx context.Context, id string) (*Session, error)
	Rotate(ctx context.Context, id, replacedByID string) error
	Revoke(ctx context.Context, id string) error
	RevokeFamily(ctx context.Context, familyID string) error
	RevokeUser(ctx context.Context, userID string) error
	ListActive(ctx context.Context, userID string, now time.Time) ([]Session, error)
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

var (
	dialect  = goqu.Dialect("postgres")
	sessions = goqu.T("refresh_tokens")
	now      = goqu.L("NOW()")
)

var sessionColumns = []any{
	"id", "user_id", "token_hash", "family_id", "expires_at", "created_at",
	"is_used", "used_at", "revoked_at", "replaced_by_id",
	"user_agent", "ip_address",
}

func (r *repository) Create(ctx context.Context, s *Session) error {
	query, args, err := dialect.Insert(sessions).
		Rows(goqu.Record{
			"id":         s.ID,
			"user_id":    s.UserID,
			"token_hash": s.TokenHash,
			"family_id":  s.FamilyID,
			"expires_at": s.ExpiresAt,
			"user_agent": s.UserAgent,
			"ip_address": s.IPAddress,
		}).
		Returning("created_at").
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("create session: build: %w", err)
	}

	if err := r.db.GetContext(ctx, &s.CreatedAt, query, args...); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *repository) FindByHash(ctx context.Context, tokenHash string) (*Session, error) {
	return r.findOne(ctx, "find session by hash", goqu.C("token_hash").Eq(tokenHash))
}

func (r *repository) FindByID(ctx context.Context, id string) (*Session, error) {
	return r.findOne(ctx, "find session", goqu.C("id").Eq(id))
}

func (r *repository) findOne(
	ctx context.Context,
	op string,
	where exp.Expression,
) (*Session, error) {
	query, args, err := dialect.From(sessions).
		Select(sessionColumns...).
		Where(where).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}

	var s Session
	err = r.db.GetContext(ctx, &s, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &s, nil
}

// Rotate fails with ErrNotFound when the session was already rotated.
func (r *repository) Rotate(ctx context.Context, id, replacedByID string) error {
	rows, err := r.update(ctx, "rotate session",
		goqu.Record{"is_used": true, "used_at": now, "replaced_by_id": replacedByID},
		goqu.C("id").Eq(id),
		goqu.C("is_used").IsFalse(),
	)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("rotate session: %w", core.ErrNotFound)
	}
	return nil
}

func (r *repository) Revoke(ctx context.Context, id string) error {
	rows, err := r.update(ctx, "revoke session",
		goqu.Record{"revoked_at": now},
		goqu.C("id").Eq(id),
		goqu.C("revoked_at").IsNull(),
	)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("revoke session: %w", core.ErrNotFound)
	}
	return nil
}

func (r *repository) RevokeFamily(ctx context.Context, familyID string) error {
	_, err := r.update(ctx, "revoke session family",
		goqu.Record{"revoked_at": now},
		goqu.C("family_id").Eq(familyID),
		goqu.C("revoked_at").IsNull(),
	)
	return err
}

func (r *repository) RevokeUser(ctx context.Context, userID string) error {
	_, err := r.update(ctx, "revoke user sessions",
		goqu.Record{"revoked_at": now},
		goqu.C("user_id").Eq(userID),
		goqu.C("revoked_at").IsNull(),
	)
	return err
}

func (r *repository) update(
	ctx context.Context,
	op string,
	set goqu.Record,
	where ...exp.Expression,
) (int64, error) {
	query, args, err := dialect.Update(sessions).
		Set(set).
		Where(where...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("%s: build: %w", op, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return rows, nil
}

func (r *repository) ListActive(
	ctx context.Context,
	userID string,
	at time.Time,
) ([]Session, error) {
	query, args, err := dialect.From(sessions).
		Select(sessionColumns...).
		Where(
			goqu.C("user_id").Eq(userID),
			goqu.C("revoked_at").IsNull(),
			goqu.C("is_used").IsFalse(),
			goqu.C("expires_at").Gt(at),
		).
		Order(goqu.C("created_at").Desc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("list sessions: build: %w", err)
	}

	var out []Session
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return out, nil
}

func (r *repository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := dialect.Delete(sessions).
		Where(goqu.C("expires_at").Lt(before)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("purge sessions: build: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}

	return result.RowsAffected()
}

// AngelaMos | 2026
// repository_test.go

package activation

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestRepository_Save(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tok := &Token{
		UserID:    "u-1",
		Code:      "123456",
		CreatedAt: now,
		ExpiresAt: now.Add(TokenTTL),
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO activation_tokens")).
		WithArgs("u-1", "123456", now, now.Add(TokenTTL)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(41)))

	require.NoError(t, repo.Save(context.Background(), tok))
	assert.Equal(t, int64(41), tok.ID)
}

func TestRepository_FindByCode_NewestWins(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC\s+LIMIT 1`).
		WithArgs("123456").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "code", "created_at", "expires_at", "validated_at",
		}).AddRow(int64(8), "u-2", "123456", now, now.Add(TokenTTL), nil))

	tok, err := repo.FindByCode(context.Background(), "123456")

	require.NoError(t, err)
	assert.Equal(t, int64(8), tok.ID)
	assert.Equal(t, "u-2", tok.UserID)
	assert.Nil(t, tok.ValidatedAt)
}

func TestRepository_FindByCode_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM activation_tokens").
		WithArgs("999999").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByCode(context.Background(), "999999")

	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_MarkValidated(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2026, 3, 1, 9, 5, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE activation_tokens SET validated_at").
		WithArgs(int64(8), at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE activation_tokens SET validated_at").
		WithArgs(int64(9), at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.MarkValidated(context.Background(), 8, at))
	assert.ErrorIs(t, repo.MarkValidated(context.Background(), 9, at), core.ErrNotFound)
}

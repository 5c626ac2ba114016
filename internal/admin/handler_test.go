// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
	"github.com/carterperez-dev/templates/library-backend/internal/lending"
)

type fakeBooks struct {
	n   int
	err error
}

func (f fakeBooks) Count(context.Context) (int, error) { return f.n, f.err }

type fakeLoans struct{}

func (fakeLoans) Stats(context.Context) (*lending.Stats, error) {
	return &lending.Stats{OpenLoans: 4, PendingApproval: 1, Overdue: 2}, nil
}

func passthrough(next http.Handler) http.Handler { return next }

func deny(http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		core.Forbidden(w, "insufficient permissions")
	})
}

func TestLibraryStats(t *testing.T) {
	h := NewHandler(HandlerConfig{Books: fakeBooks{n: 12}, Loans: fakeLoans{}})
	r := chi.NewRouter()
	h.RegisterRoutes(r, passthrough, passthrough, deny)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats/library", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data LibraryStats `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, LibraryStats{Books: 12, OpenLoans: 4, PendingApproval: 1, Overdue: 2}, body.Data)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats/runtime", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLibraryStatsFailure(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Books: fakeBooks{err: errors.New("db down")},
		Loans: fakeLoans{},
	})
	r := chi.NewRouter()
	h.RegisterRoutes(r, passthrough, passthrough, passthrough)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

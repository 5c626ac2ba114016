// AngelaMos | 2026
// metrics_test.go

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	r := New()

	r.Lending("borrow", OutcomeSuccess)
	r.Lending("borrow", OutcomeSuccess)
	r.Lending("borrow", OutcomeRejected)
	r.Activation("validate", OutcomeRejected)
	r.Mail("activate_account", OutcomeError)

	assert.Equal(t, 2.0, testutil.ToFloat64(
		r.lendingEvents.WithLabelValues("borrow", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		r.lendingEvents.WithLabelValues("borrow", OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		r.activationEvents.WithLabelValues("validate", OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		r.mailDeliveries.WithLabelValues("activate_account", OutcomeError)))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder

	assert.NotPanics(t, func() {
		r.Lending("borrow", OutcomeSuccess)
		r.Activation("issue", OutcomeSuccess)
		r.Mail("activate_account", OutcomeSuccess)
		r.GaugeFunc("queue_depth", "depth", func() float64 { return 0 })
	})
}

func TestRecorder_MiddlewareAndHandler(t *testing.T) {
	r := New()
	r.GaugeFunc("mail_queue_depth", "Queued emails.", func() float64 { return 3 })

	router := chi.NewRouter()
	router.Use(r.Middleware)
	router.Get("/books/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	router.Handle("/metrics", r.Handler())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books/42", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `route="/books/{id}"`)
	assert.Contains(t, string(body), `status="418"`)
	assert.Contains(t, string(body), "library_mail_queue_depth 3")
}

// AngelaMos | 2026
// metrics.go

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "library"

const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Recorder owns a private registry. A nil *Recorder records nothing.
type Recorder struct {
	registry         *prometheus.Registry
	lendingEvents    *prometheus.CounterVec
	activationEvents *prometheus.CounterVec
	mailDeliveries   *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

func New() *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		lendingEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lending_events_total",
			Help:      "Borrow, return and approval attempts by outcome.",
		}, []string{"action", "outcome"}),
		activationEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activation_events_total",
			Help:      "Activation code issues and validations by outcome.",
		}, []string{"action", "outcome"}),
		mailDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_deliveries_total",
			Help:      "Outgoing emails by template and outcome.",
		}, []string{"template", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.lendingEvents,
		r.activationEvents,
		r.mailDeliveries,
		r.requestDuration,
	)

	return r
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Lending(action, outcome string) {
	if r == nil {
		return
	}
	r.lendingEvents.WithLabelValues(action, outcome).Inc()
}

func (r *Recorder) Activation(action, outcome string) {
	if r == nil {
		return
	}
	r.activationEvents.WithLabelValues(action, outcome).Inc()
}

func (r *Recorder) Mail(template, outcome string) {
	if r == nil {
		return
	}
	r.mailDeliveries.WithLabelValues(template, outcome).Inc()
}

// GaugeFunc registers a gauge sampled from fn at scrape time.
func (r *Recorder) GaugeFunc(name, help string, fn func() float64) {
	if r == nil {
		return
	}
	r.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Middleware labels by chi route pattern so path ids do not explode cardinality.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		r.requestDuration.
			WithLabelValues(req.Method, route, strconv.Itoa(sw.status)).
			Observe(time.Since(start).Seconds())
	})
}

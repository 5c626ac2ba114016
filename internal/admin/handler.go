// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
	"github.com/carterperez-dev/templates/library-backend/internal/lending"
)

type BookCounter interface {
	Count(ctx context.Context) (int, error)
}

type LoanStats interface {
	Stats(ctx context.Context) (*lending.Stats, error)
}

type Handler struct {
	books      BookCounter
	loans      LoanStats
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
}

type HandlerConfig struct {
	Books      BookCounter
	Loans      LoanStats
	DBStats    func() sql.DBStats
	RedisStats func() *redis.PoolStats
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		books:      cfg.Books,
		loans:      cfg.Loans,
		dbStats:    cfg.DBStats,
		redisStats: cfg.RedisStats,
	}
}

// RegisterRoutes mounts the operator dashboard. Library figures are
// visible to librarians, pool internals only to admins.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, librarianOnly, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/stats", func(r chi.Router) {
		r.Use(authenticator)

		r.With(librarianOnly).Get("/library", h.GetLibraryStats)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)

			r.Get("/", h.GetSystemStats)
			r.Get("/runtime", h.GetRuntimeStats)
		})
	})
}

func (h *Handler) GetLibraryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.libraryStats(r.Context())
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.OK(w, stats)
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	library, err := h.libraryStats(r.Context())
	if err != nil {
		core.WriteError(w, err)
		return
	}

	core.OK(w, SystemStatsResponse{
		Library:  library,
		Database: h.databaseStats(),
		Redis:    h.redisPoolStats(),
		Runtime:  readRuntime(),
	})
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, readRuntime())
}

func (h *Handler) libraryStats(ctx context.Context) (*LibraryStats, error) {
	books, err := h.books.Count(ctx)
	if err != nil {
		return nil, err
	}

	loans, err := h.loans.Stats(ctx)
	if err != nil {
		return nil, err
	}

	return &LibraryStats{
		Books:           books,
		OpenLoans:       loans.OpenLoans,
		PendingApproval: loans.PendingApproval,
		Overdue:         loans.Overdue,
	}, nil
}

func (h *Handler) databaseStats() *DBPoolStats {
	if h.dbStats == nil {
		return nil
	}

	s := h.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration.String(),
	}
}

func (h *Handler) redisPoolStats() *RedisPoolStats {
	if h.redisStats == nil {
		return nil
	}

	s := h.redisStats()
	return &RedisPoolStats{
		Hits:       s.Hits,
		Misses:     s.Misses,
		Timeouts:   s.Timeouts,
		TotalConns: s.TotalConns,
		IdleConns:  s.IdleConns,
	}
}

func readRuntime() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		MemAlloc:     mem.Alloc,
		NumGC:        mem.NumGC,
	}
}

type LibraryStats struct {
	Books           int `json:"books"`
	OpenLoans       int `json:"open_loans"`
	PendingApproval int `json:"pending_approval"`
	Overdue         int `json:"overdue"`
}

type SystemStatsResponse struct {
	Library  *LibraryStats   `json:"library"`
	Database *DBPoolStats    `json:"database,omitempty"`
	Redis    *RedisPoolStats `json:"redis,omitempty"`
	Runtime  RuntimeStats    `json:"runtime"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	NumGC        uint32 `json:"num_gc"`
}

// Package http exposes the budgeting core as a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/middleware/ratelimit"
	"bilancio/internal/middleware/security"
	"bilancio/internal/middleware/trace"
)

// Ledger is the write side of the API.
type Ledger interface {
	CreateTransaction(ctx context.Context, t core.Template) (int64, error)
	GetTransaction(ctx context.Context, id int64) (core.Template, error)
	ListTransactions(ctx context.Context) ([]core.Template, error)
	UpdateTransaction(ctx context.Context, t core.Template) error
	DeleteTransaction(ctx context.Context, id int64) error

	SetOccurrencePaid(ctx context.Context, id int64, monthKey string, paid bool) error
	ClearOccurrencePaid(ctx context.Context, id int64, monthKey string) error
	DeleteOccurrence(ctx context.Context, id int64, monthKey string) error
	RestoreOccurrence(ctx context.Context, id int64, monthKey string) error

	ListCategories(ctx context.Context) ([]core.Category, error)
	CreateCategory(ctx context.Context, name string) (int64, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateSavings(ctx context.Context, e core.SavingsEntry) (int64, error)
	ListSavings(ctx context.Context, year, month int) ([]core.SavingsEntry, error)
	DeleteSavings(ctx context.Context, id int64) error
}

// Scheduler is the read side of the API.
type Scheduler interface {
	Month(ctx context.Context, year, month int) (core.MonthSchedule, error)
}

// Options tune the server without dragging the whole config in.
type Options struct {
	Addr              string
	RateLimitPerMin   int
	ScheduleCacheTTL  time.Duration
	ScheduleCacheSize int
}

type Server struct {
	http.Server

	ledger    Ledger
	schedules Scheduler

	scheduleCache *cache.LRUCache[core.MonthSchedule]
	cacheManager  *cache.Manager
	limiter       *ratelimit.Limiter
	detector      *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(opts Options, ledger Ledger, schedules Scheduler) *Server {
	if opts.ScheduleCacheTTL <= 0 {
		opts.ScheduleCacheTTL = 5 * time.Minute
	}
	if opts.ScheduleCacheSize <= 0 {
		opts.ScheduleCacheSize = 100
	}

	s := &Server{
		ledger:        ledger,
		schedules:     schedules,
		scheduleCache: cache.NewLRUCache[core.MonthSchedule](opts.ScheduleCacheSize, opts.ScheduleCacheTTL),
		cacheManager:  cache.NewManager(),
		detector:      security.NewDetector(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMin,
		}),
	}
	s.cacheManager.Register(s.scheduleCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleHealth)

	mux.HandleFunc("GET /api/schedule", s.handleGetSchedule)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("PUT /api/transactions/{id}/occurrences/{month}/paid", s.handleSetOccurrencePaid)
	mux.HandleFunc("DELETE /api/transactions/{id}/occurrences/{month}/paid", s.handleClearOccurrencePaid)
	mux.HandleFunc("DELETE /api/transactions/{id}/occurrences/{month}", s.handleDeleteOccurrence)
	mux.HandleFunc("POST /api/transactions/{id}/occurrences/{month}/restore", s.handleRestoreOccurrence)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/savings", s.handleListSavings)
	mux.HandleFunc("POST /api/savings", s.handleCreateSavings)
	mux.HandleFunc("DELETE /api/savings/{id}", s.handleDeleteSavings)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.detector.ExtractClientIP)
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, nil)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           tracer.Middleware(headers.Middleware(s.rejectSuspicious(limited(mux)))),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// invalidateSchedules drops all cached month schedules. Called after every
// write: a recurring template can touch any number of months, so selective
// eviction is not worth the bookkeeping.
func (s *Server) invalidateSchedules() {
	s.scheduleCache.Purge()
}

// rejectSuspicious answers scanner traffic with a bare 404 before it
// reaches the API handlers.
func (s *Server) rejectSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Rejecting suspicious request",
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r))
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

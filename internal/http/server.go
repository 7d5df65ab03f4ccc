// Package http exposes the JSON API: entity CRUD, analytics views, calendar,
// export downloads, the SSE change feed, and the ops endpoints.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"alphawealth/internal/amqp"
	"alphawealth/internal/cache"
	"alphawealth/internal/middleware/ratelimit"
	"alphawealth/internal/middleware/security"
	"alphawealth/internal/middleware/trace"
	"alphawealth/internal/notify"
	"alphawealth/internal/services"
	"alphawealth/internal/storage"
)

const analyticsCacheSize = 500

type Options struct {
	Addr               string
	RateLimitPerMinute int
	CacheTTL           time.Duration
}

type Server struct {
	http.Server

	tracker *services.Tracker
	repo    *storage.Repository
	hub     *notify.Hub

	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter
	resolver *security.ClientIPResolver

	// Marshaled analytics responses keyed "<userID>:<view>?<params>"; any
	// change event for a user drops all of that user's entries.
	analyticsCache *cache.LRUCache[[]byte]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, tracker *services.Tracker, hub *notify.Hub) *Server {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	resolver := security.NewClientIPResolver()
	s := &Server{
		tracker:  tracker,
		repo:     tracker.Repo(),
		hub:      hub,
		tracer:   trace.NewMiddleware(resolver.ExtractClientIP),
		resolver: resolver,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		analyticsCache: cache.NewLRUCache[[]byte](analyticsCacheSize, opts.CacheTTL),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(s.analyticsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Change events from any instance invalidate this instance's cached
	// analytics for the affected user.
	if hub != nil {
		hub.AddListener(func(ev *amqp.ChangeEvent) {
			s.invalidateUser(ev.UserID)
		})
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/accounts", s.withUser(s.handleListAccounts))
	mux.HandleFunc("POST /api/accounts", s.withUser(s.handleCreateAccount))
	mux.HandleFunc("GET /api/accounts/{id}", s.withUser(s.handleGetAccount))
	mux.HandleFunc("PUT /api/accounts/{id}", s.withUser(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.withUser(s.handleDeleteAccount))

	mux.HandleFunc("GET /api/categories", s.withUser(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withUser(s.handleCreateCategory))
	mux.HandleFunc("GET /api/categories/{id}", s.withUser(s.handleGetCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.withUser(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withUser(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/transactions", s.withUser(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withUser(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.withUser(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withUser(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withUser(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/budgets", s.withUser(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", s.withUser(s.handleCreateBudget))
	mux.HandleFunc("GET /api/budgets/progress", s.withUser(s.handleBudgetProgress))
	mux.HandleFunc("GET /api/budgets/{id}", s.withUser(s.handleGetBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.withUser(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.withUser(s.handleDeleteBudget))

	mux.HandleFunc("GET /api/analytics/summary", s.withUser(s.handleSummary))
	mux.HandleFunc("GET /api/analytics/spending-by-category", s.withUser(s.handleSpendingByCategory))
	mux.HandleFunc("GET /api/analytics/top-categories", s.withUser(s.handleTopCategories))
	mux.HandleFunc("GET /api/analytics/trend", s.withUser(s.handleTrend))
	mux.HandleFunc("GET /api/analytics/month-comparison", s.withUser(s.handleMonthComparison))
	mux.HandleFunc("GET /api/calendar", s.withUser(s.handleCalendar))

	mux.HandleFunc("GET /api/export", s.withUser(s.handleExport))
	mux.HandleFunc("GET /api/events", s.withUser(s.handleEvents))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.limiter.Middleware(resolver.ExtractClientIP, nil)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           headers.Middleware(s.tracer.Middleware(limited(mux))),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler returns the full middleware-wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.Server.Handler
}

func (s *Server) invalidateUser(userID string) {
	s.analyticsCache.DeletePrefix(userID + ":")
}

// Shutdown stops the HTTP listener and the background maintenance goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.repo.Ping(ctx); err != nil {
		http.Error(w, "database not reachable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "http_requests_total %d\n", m.TotalRequests)
	fmt.Fprintf(w, "http_last_response_time_us %d\n", m.AverageResponseTime)
	fmt.Fprintf(w, "ratelimit_active_clients %d\n", s.limiter.ActiveClients())
	fmt.Fprintf(w, "sse_subscribers %d\n", s.hub.SubscriberCount())
	fmt.Fprintf(w, "analytics_cache_entries %d\n", s.analyticsCache.Size())
}

// Package http exposes the JSON API: projected upcoming occurrences,
// expense and income records, recurring templates, and the dashboard
// summaries.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"gastos/internal/cache"
	"gastos/internal/core"
	"gastos/internal/services"
	"gastos/internal/storage"
)

type Server struct {
	http.Server

	repo          storage.Repository
	upcoming      *services.UpcomingService
	summaries     *services.SummaryService
	horizonMonths int

	rateLimiter *rateLimiter

	upcomingCache *cache.LRU[[]core.VirtualOccurrence]
	summaryCache  *cache.LRU[services.MonthlySummary]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run
// http.Server.
func NewServer(addr string, repo storage.Repository, horizonMonths int) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		repo:          repo,
		upcoming:      services.NewUpcomingService(repo, repo),
		summaries:     services.NewSummaryService(repo, repo, repo, repo),
		horizonMonths: horizonMonths,
		rateLimiter:   newRateLimiter(),
		upcomingCache: cache.NewLRU[[]core.VirtualOccurrence](200, 5*time.Minute),
		summaryCache:  cache.NewLRU[services.MonthlySummary](200, 5*time.Minute),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.upcomingCache)
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /api/upcoming", s.withMiddleware(s.handleUpcoming))
	mux.HandleFunc("POST /api/upcoming/realize", s.withMiddleware(s.handleRealizeOccurrence))

	mux.HandleFunc("GET /api/expenses", s.withMiddleware(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.withMiddleware(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses/overdue", s.withMiddleware(s.handleOverdueExpenses))
	mux.HandleFunc("PUT /api/expenses/{id}/pay", s.withMiddleware(s.handlePayExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withMiddleware(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/incomes", s.withMiddleware(s.handleListIncomes))
	mux.HandleFunc("POST /api/incomes", s.withMiddleware(s.handleCreateIncome))

	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withMiddleware(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.withMiddleware(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withMiddleware(s.handleDeleteCategory))

	mux.HandleFunc("POST /api/recurring", s.withMiddleware(s.handleCreateTemplate))
	mux.HandleFunc("PUT /api/recurring/{id}", s.withMiddleware(s.handleUpdateTemplate))
	mux.HandleFunc("DELETE /api/recurring/{id}", s.withMiddleware(s.handleDeleteTemplate))

	mux.HandleFunc("GET /api/summary/monthly", s.withMiddleware(s.handleMonthlySummary))
	mux.HandleFunc("GET /api/summary/categories", s.withMiddleware(s.handleTopCategories))
	mux.HandleFunc("GET /api/summary/projection", s.withMiddleware(s.handleNextMonthProjection))

	return s
}

// withMiddleware adds security headers, rate limiting, and request
// logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			errorJSON(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

// invalidateUser drops every cached read for the user after a write.
func (s *Server) invalidateUser(userID string) {
	s.upcomingCache.DeletePrefix(userID + ":")
	s.summaryCache.DeletePrefix(userID + ":")
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Package http exposes the JSON API for capturing and reporting expenses.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"spendlog/internal/backend"
	"spendlog/internal/cache"
	"spendlog/internal/core"
	applog "spendlog/internal/log"
)

type Server struct {
	http.Server
	backend     backend.Backend
	logger      *applog.Logger
	rateLimiter *rateLimiter

	// Month reports are cached per year-month and invalidated on writes.
	overviewCache *cache.LRUCache[core.MonthOverview]
	budgetCache   *cache.LRUCache[[]core.BudgetStatus]
	janitor       *cache.Janitor

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, b backend.Backend) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		backend:       b,
		logger:        applog.FromContext(context.Background()).WithComponent(applog.ComponentHTTP),
		rateLimiter:   newRateLimiter(),
		overviewCache: cache.NewLRUCache[core.MonthOverview](100, 5*time.Minute),
		budgetCache:   cache.NewLRUCache[[]core.BudgetStatus](100, 5*time.Minute),
		janitor:       cache.NewJanitor(),
	}

	s.janitor.Register(s.overviewCache)
	s.janitor.Register(s.budgetCache)
	s.janitor.Start(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/capture", s.withMiddleware(s.handleCapture))
	mux.HandleFunc("POST /api/expenses", s.withMiddleware(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses", s.withMiddleware(s.handleListExpenses))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withMiddleware(s.handleDeleteExpense))
	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleListCategories))
	mux.HandleFunc("GET /api/categories/suggest", s.withMiddleware(s.handleSuggestCategories))
	mux.HandleFunc("PUT /api/budgets", s.withMiddleware(s.handleUpsertBudget))
	mux.HandleFunc("GET /api/budgets", s.withMiddleware(s.handleListBudgets))
	mux.HandleFunc("GET /api/reports/month", s.withMiddleware(s.handleMonthReport))

	return s
}

// Shutdown stops background goroutines, then drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.janitor.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds request tracing, rate limiting on writes, and
// security headers.
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
		reqLogger := s.logger.With(applog.FieldRequestID, requestID)
		ctx := applog.IntoContext(r.Context(), reqLogger)
		r = r.WithContext(ctx)

		reqLogger.InfoContext(ctx, "Request started",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			applog.FieldUserAgent, r.UserAgent())

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		reqLogger.InfoContext(ctx, "Request completed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateMonth drops cached reports for the month an expense write
// touched.
func (s *Server) invalidateMonth(year, month int) {
	key := monthKey(year, month)
	s.overviewCache.Delete(key)
	s.budgetCache.Delete(key)
}

func monthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

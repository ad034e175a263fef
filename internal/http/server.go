// Package http exposes the ledger and the parse pipeline as a JSON
// API. The engine itself lives in internal/parse and internal/ledger;
// this layer only decodes requests, applies boundary validation and
// caches derived statistics.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"chitieu/internal/cache"
	"chitieu/internal/core"
	"chitieu/internal/ledger"
	applog "chitieu/internal/log"
)

// Options carries the tunables the server takes from configuration.
type Options struct {
	RateLimitPerMinute int
	CacheSize          int
	CacheTTL           time.Duration
}

type Server struct {
	http.Server
	ledger      *ledger.Service
	rateLimiter *rateLimiter

	// Derived statistics are cached briefly; every transaction
	// mutation invalidates the affected period keys.
	monthlyCache *cache.LRUCache[core.PeriodStats]
	dailyCache   *cache.LRUCache[core.PeriodStats]
	rankingCache *cache.LRUCache[[]core.CategoryRank]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *ledger.Service, opts Options) *Server {
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = 60
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 100
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:           svc,
		rateLimiter:      newRateLimiter(opts.RateLimitPerMinute),
		monthlyCache:     cache.NewLRUCache[core.PeriodStats](opts.CacheSize, opts.CacheTTL),
		dailyCache:       cache.NewLRUCache[core.PeriodStats](opts.CacheSize, opts.CacheTTL),
		rankingCache:     cache.NewLRUCache[[]core.CategoryRank](opts.CacheSize, opts.CacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /interpret", s.withMiddleware(s.handleInterpret))

	mux.HandleFunc("GET /transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("POST /transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("PUT /transactions/{id}", s.withMiddleware(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))

	mux.HandleFunc("GET /wallets", s.withMiddleware(s.handleListWallets))
	mux.HandleFunc("POST /wallets", s.withMiddleware(s.handleCreateWallet))
	mux.HandleFunc("PUT /wallets/{id}", s.withMiddleware(s.handleUpdateWallet))
	mux.HandleFunc("DELETE /wallets/{id}", s.withMiddleware(s.handleDeleteWallet))
	mux.HandleFunc("GET /wallets/{id}/balance", s.withMiddleware(s.handleWalletBalance))
	mux.HandleFunc("GET /balance", s.withMiddleware(s.handleTotalBalance))

	mux.HandleFunc("GET /categories", s.withMiddleware(s.handleListCategories))

	mux.HandleFunc("GET /stats/monthly", s.withMiddleware(s.handleMonthlyStats))
	mux.HandleFunc("GET /stats/daily", s.withMiddleware(s.handleDailyStats))
	mux.HandleFunc("GET /stats/categories", s.withMiddleware(s.handleCategoryRanking))

	mux.HandleFunc("GET /goals", s.withMiddleware(s.handleListGoals))
	mux.HandleFunc("POST /goals", s.withMiddleware(s.handleCreateGoal))
	mux.HandleFunc("DELETE /goals/{id}", s.withMiddleware(s.handleDeleteGoal))

	mux.HandleFunc("GET /salary", s.withMiddleware(s.handleGetSalary))
	mux.HandleFunc("PUT /salary", s.withMiddleware(s.handleSetSalary))

	return s
}

// withMiddleware adds security headers, rate limiting on mutating
// requests, and request-id tagged logging.
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
		ctx := r.Context()

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldRequestID, requestID,
				applog.FieldClientIP, clientIP)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
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

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := s.monthlyCache.CleanExpired() +
				s.dailyCache.CleanExpired() +
				s.rankingCache.CleanExpired()
			if cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup routine and shuts the HTTP server down.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func monthKey(year, month int) string {
	return fmt.Sprintf("%d-%02d", year, month)
}

// invalidateStats drops the cached aggregates a transaction on the
// given date contributes to.
func (s *Server) invalidateStats(d core.Date) {
	s.monthlyCache.Delete(monthKey(d.Year(), d.Month()))
	s.rankingCache.Delete(monthKey(d.Year(), d.Month()))
	s.dailyCache.Delete(d.String())
}

// Package http exposes the session over a small JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"moneylog/internal/backend"
	applog "moneylog/internal/log"
	"moneylog/internal/session"
)

const reportTimeout = 7 * time.Second

type Server struct {
	http.Server
	session     *session.Session
	reports     backend.Reports
	logger      *applog.Logger
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server. A nil
// reports falls back to scanning the session ledger.
func NewServer(addr string, s *session.Session, reports backend.Reports, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.Discard()
	}
	if reports == nil {
		reports = backend.LedgerReports{Ledger: s.Ledger()}
	}

	srv := &Server{
		session:     s,
		reports:     reports,
		logger:      logger.WithComponent(applog.ComponentHTTP),
		rateLimiter: newRateLimiter(),
		metrics:     &securityMetrics{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", srv.handleReady)
	mux.HandleFunc("GET /api/categories", srv.handleCategories)
	mux.HandleFunc("GET /api/transactions", srv.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", srv.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", srv.handleDeleteTransaction)
	mux.HandleFunc("GET /api/summary/day", srv.handleDaySummary)
	mux.HandleFunc("GET /api/summary/month", srv.handleMonthSummary)
	mux.HandleFunc("GET /api/budget", srv.handleGetBudget)
	mux.HandleFunc("PUT /api/budget", srv.handleSetBudget)
	mux.HandleFunc("GET /api/progression", srv.handleProgression)

	srv.Server = http.Server{
		Addr:              addr,
		Handler:           applog.Middleware(logger, extractClientIP)(srv.withSecurity(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurity sets security headers, rate-limits mutating requests and
// logs suspicious ones.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)
		logger := applog.FromContext(r.Context())

		if detectSuspiciousRequest(r, s.metrics) {
			logger.WarnContext(r.Context(), "Suspicious request",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				"user_agent", r.Header.Get("User-Agent"))
		}

		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !s.rateLimiter.allow(clientIP, s.metrics) {
				logger.WarnContext(r.Context(), "Rate limit exceeded",
					applog.FieldClientIP, clientIP,
					applog.FieldMethod, r.Method,
					applog.FieldPath, r.URL.Path)
				ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").
					Header("Retry-After", "60").
					Write(w)
				return
			}
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady pings the report backend when it supports it.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.reports.(backend.Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
				applog.FieldError, err.Error())
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

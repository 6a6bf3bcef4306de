// Package http serves the reporting and donation-intake JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"givetrack/internal/core"
	"givetrack/internal/ledger"
	"givetrack/internal/log"
	"givetrack/internal/services"
)

type Server struct {
	http.Server
	stats       *services.StatsService
	donations   *services.DonationService
	browser     ledger.Browser
	validator   *core.DonationValidator
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, stats *services.StatsService, donations *services.DonationService, browser ledger.Browser, validator *core.DonationValidator) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		stats:       stats,
		donations:   donations,
		browser:     browser,
		validator:   validator,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /stats/daily", s.wrap(s.handleDailyStats))
	mux.HandleFunc("GET /stats/weekly", s.wrap(s.handleWeeklyStats))
	mux.HandleFunc("GET /stats/summary", s.wrap(s.handleSummaryStats))
	mux.HandleFunc("GET /stats/donors", s.wrap(s.handleDonorStats))
	mux.HandleFunc("GET /stats/recipients", s.wrap(s.handleRecipientStats))

	mux.HandleFunc("POST /donations", s.wrap(s.handleCreateDonation))
	mux.HandleFunc("GET /donations", s.wrap(s.handleListDonations))
	mux.HandleFunc("GET /donations/recent", s.wrap(s.handleRecentDonations))
	mux.HandleFunc("GET /donations/{id}", s.wrap(s.handleGetDonation))

	mux.HandleFunc("GET /limits", s.wrap(s.handleGetLimits))

	return s
}

// wrap applies rate limiting and access logging to a handler.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.rateLimiter.allow(ip) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldComponent, log.ComponentRateLimit,
				log.FieldClientIP, ip,
				log.FieldPath, r.URL.Path)
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
			return
		}

		start := time.Now()
		next(w, r)
		slog.DebugContext(r.Context(), "Request handled",
			log.FieldComponent, log.ComponentHTTP,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, ip)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

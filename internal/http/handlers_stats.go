package http

import (
	"log/slog"
	"net/http"
	"time"

	"givetrack/internal/core"
)

type statsEnvelope struct {
	Success  bool          `json:"success"`
	Data     any           `json:"data"`
	Metadata statsMetadata `json:"metadata"`
}

type statsMetadata struct {
	DateRange       core.DateRange `json:"dateRange"`
	Count           int            `json:"count"`
	AggregationType string         `json:"aggregationType"`
}

func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseDateRange(w, r)
	if !ok {
		return
	}

	buckets, err := s.stats.Daily(r.Context(), start, end)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute daily stats", "error", err)
		writeError(w, http.StatusInternalServerError, codeServerError, "Failed to compute statistics")
		return
	}

	writeStats(w, start, end, "daily", len(buckets), buckets)
}

func (s *Server) handleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseDateRange(w, r)
	if !ok {
		return
	}

	buckets, err := s.stats.Weekly(r.Context(), start, end)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute weekly stats", "error", err)
		writeError(w, http.StatusInternalServerError, codeServerError, "Failed to compute statistics")
		return
	}

	writeStats(w, start, end, "weekly", len(buckets), buckets)
}

func (s *Server) handleSummaryStats(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseDateRange(w, r)
	if !ok {
		return
	}

	summary, err := s.stats.Summary(r.Context(), start, end)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute summary stats", "error", err)
		writeError(w, http.StatusInternalServerError, codeServerError, "Failed to compute statistics")
		return
	}

	writeStats(w, start, end, "summary", summary.TotalTransactions, summary)
}

func (s *Server) handleDonorStats(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseDateRange(w, r)
	if !ok {
		return
	}

	buckets, err := s.stats.Donors(r.Context(), start, end)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute donor stats", "error", err)
		writeError(w, http.StatusInternalServerError, codeServerError, "Failed to compute statistics")
		return
	}

	writeStats(w, start, end, "donors", len(buckets), buckets)
}

func (s *Server) handleRecipientStats(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseDateRange(w, r)
	if !ok {
		return
	}

	buckets, err := s.stats.Recipients(r.Context(), start, end)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute recipient stats", "error", err)
		writeError(w, http.StatusInternalServerError, codeServerError, "Failed to compute statistics")
		return
	}

	writeStats(w, start, end, "recipients", len(buckets), buckets)
}

func writeStats(w http.ResponseWriter, start, end time.Time, aggregationType string, count int, data any) {
	writeJSON(w, http.StatusOK, statsEnvelope{
		Success: true,
		Data:    data,
		Metadata: statsMetadata{
			DateRange:       core.DateRange{Start: start, End: end},
			Count:           count,
			AggregationType: aggregationType,
		},
	})
}

package http

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Request rejection codes surfaced by the HTTP layer. Validation-rule
// codes come from the validator itself.
const (
	codeMissingDateRange = "MISSING_DATE_RANGE"
	codeInvalidDate      = "INVALID_DATE"
	codeInvalidDateRange = "INVALID_DATE_RANGE"
	codeMissingFields    = "MISSING_FIELDS"
	codeInvalidAmount    = "INVALID_AMOUNT"
	codeInvalidLimit     = "INVALID_LIMIT"
	codeInvalidOffset    = "INVALID_OFFSET"
	codeNotFound         = "NOT_FOUND"
	codeServerError      = "SERVER_ERROR"
)

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Success: false, Error: message, Code: code})
}

// parseDateRange reads startDate/endDate query parameters. Accepted
// formats are YYYY-MM-DD and RFC 3339; a date-only end bound is extended
// to the end of that UTC day so the closed interval covers the whole day.
// The second return value is false if a rejection was already written.
func parseDateRange(w http.ResponseWriter, r *http.Request) (start, end time.Time, ok bool) {
	startRaw := strings.TrimSpace(r.URL.Query().Get("startDate"))
	endRaw := strings.TrimSpace(r.URL.Query().Get("endDate"))

	if startRaw == "" || endRaw == "" {
		writeError(w, http.StatusBadRequest, codeMissingDateRange,
			"Missing required query parameters: startDate, endDate (ISO format)")
		return time.Time{}, time.Time{}, false
	}

	start, err := parseInstant(startRaw, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidDate,
			"Invalid date format. Use YYYY-MM-DD or RFC 3339")
		return time.Time{}, time.Time{}, false
	}

	end, err = parseInstant(endRaw, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidDate,
			"Invalid date format. Use YYYY-MM-DD or RFC 3339")
		return time.Time{}, time.Time{}, false
	}

	if start.After(end) {
		writeError(w, http.StatusBadRequest, codeInvalidDateRange,
			"startDate must be before endDate")
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}

func parseInstant(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		if endOfDay {
			return t.Add(24*time.Hour - time.Millisecond), nil
		}
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// parsePositiveInt reads an integer query parameter, falling back to def
// when absent. The second return value is false for a present but
// non-numeric or out-of-range value.
func parsePositiveInt(r *http.Request, name string, def, min int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return 0, false
	}
	return v, true
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

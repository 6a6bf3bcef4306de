package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"givetrack/internal/core"
	"givetrack/internal/ledger"
)

type createDonationRequest struct {
	Amount    any    `json:"amount"`
	Donor     string `json:"donor"`
	Recipient string `json:"recipient"`
	// External payment reference, stored but never echoed back.
	ExternalRef string `json:"externalRef"`
}

type donationEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type donationRejection struct {
	Success bool `json:"success"`
	core.ValidationResult
}

type listEnvelope struct {
	Success  bool         `json:"success"`
	Data     any          `json:"data"`
	Metadata listMetadata `json:"metadata"`
}

type listMetadata struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func (s *Server) handleCreateDonation(w http.ResponseWriter, r *http.Request) {
	var req createDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeMissingFields, "Invalid JSON body")
		return
	}

	if req.Amount == nil || strings.TrimSpace(req.Recipient) == "" {
		writeError(w, http.StatusBadRequest, codeMissingFields,
			"Missing required fields: amount, recipient")
		return
	}

	amount, ok := coerceAmount(req.Amount)
	if !ok {
		writeError(w, http.StatusBadRequest, codeInvalidAmount,
			"amount must be a number or a numeric string")
		return
	}

	draft := core.DonationDraft{
		Amount:      amount,
		Donor:       strings.TrimSpace(req.Donor),
		Recipient:   strings.TrimSpace(req.Recipient),
		ExternalRef: strings.TrimSpace(req.ExternalRef),
	}

	tx, result, err := s.donations.Record(r.Context(), draft)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to record donation", "error", err)
		writeError(w, http.StatusInternalServerError, codeServerError, "Failed to record donation")
		return
	}
	if !result.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, donationRejection{
			Success:          false,
			ValidationResult: result,
		})
		return
	}

	writeJSON(w, http.StatusCreated, donationEnvelope{Success: true, Data: tx})
}

func (s *Server) handleListDonations(w http.ResponseWriter, r *http.Request) {
	limit, ok := parsePositiveInt(r, "limit", 50, 1)
	if !ok || limit > 500 {
		writeError(w, http.StatusBadRequest, codeInvalidLimit, "limit must be between 1 and 500")
		return
	}
	offset, ok := parsePositiveInt(r, "offset", 0, 0)
	if !ok {
		writeError(w, http.StatusBadRequest, codeInvalidOffset, "offset must be a non-negative integer")
		return
	}

	txs, total, err := s.browser.ListPage(r.Context(), limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list donations", "error", err)
		writeError(w, http.StatusInternalServerError, codeServerError, "Failed to list donations")
		return
	}

	writeJSON(w, http.StatusOK, listEnvelope{
		Success: true,
		Data:    txs,
		Metadata: listMetadata{
			Total:  total,
			Limit:  limit,
			Offset: offset,
		},
	})
}

func (s *Server) handleRecentDonations(w http.ResponseWriter, r *http.Request) {
	limit, ok := parsePositiveInt(r, "limit", 10, 1)
	if !ok || limit > 100 {
		writeError(w, http.StatusBadRequest, codeInvalidLimit, "limit must be between 1 and 100")
		return
	}

	txs, err := s.browser.ListRecent(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list recent donations", "error", err)
		writeError(w, http.StatusInternalServerError, codeServerError, "Failed to list donations")
		return
	}

	writeJSON(w, http.StatusOK, donationEnvelope{Success: true, Data: txs})
}

func (s *Server) handleGetDonation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	tx, err := s.browser.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeError(w, http.StatusNotFound, codeNotFound, "Donation not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to load donation", "transaction_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, codeServerError, "Failed to load donation")
		return
	}

	writeJSON(w, http.StatusOK, donationEnvelope{Success: true, Data: tx})
}

func (s *Server) handleGetLimits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, donationEnvelope{Success: true, Data: s.validator.Limits()})
}

// coerceAmount accepts a JSON number or a numeric string. Anything else,
// including a non-numeric string, is rejected here before validation.
func coerceAmount(v any) (float64, bool) {
	switch a := v.(type) {
	case float64:
		return a, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	StatusCompleted Status = "completed"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Fallback grouping keys for records missing a donor or recipient.
const (
	AnonymousDonor   = "Anonymous"
	UnknownRecipient = "Unknown"
)

type (
	Status string

	// Transaction is one recorded donation. The ledger owns it; everything
	// in this package only reads it.
	//
	// Amount is kept as the raw stored decimal text. Aggregation must
	// tolerate a non-numeric stored amount (it contributes 0), which an
	// already-parsed numeric field could not represent.
	Transaction struct {
		ID          string    `json:"id"`
		Amount      string    `json:"amount"`
		Donor       string    `json:"donor"`
		Recipient   string    `json:"recipient"`
		Timestamp   time.Time `json:"timestamp"`
		Status      Status    `json:"status"`
		ExternalRef string    `json:"-"`
	}

	// DonationDraft is the caller-supplied part of a new donation, before
	// the ledger assigns id, timestamp and defaults.
	DonationDraft struct {
		Amount      float64
		Donor       string
		Recipient   string
		ExternalRef string
	}

	// TransactionSummary is the lightweight per-bucket echo of a
	// transaction. Donor or Recipient is left empty (and omitted from
	// JSON) when it is the bucket's own grouping key.
	TransactionSummary struct {
		ID        string    `json:"id"`
		Amount    string    `json:"amount"`
		Donor     string    `json:"donor,omitempty"`
		Recipient string    `json:"recipient,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyRecipient = errors.New("empty recipient")
	ErrInvalidStatus  = errors.New("invalid status")
)

// Valid reports whether s is one of the four known transaction states.
func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusConfirmed, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CountsTowardDailyTotal reports whether the transaction's amount is part
// of its donor's rolling daily total. Failed and cancelled donations never
// count.
func (s Status) CountsTowardDailyTotal() bool {
	return s != StatusFailed && s != StatusCancelled
}

func (d DonationDraft) Validate() error {
	if strings.TrimSpace(d.Recipient) == "" {
		return ErrEmptyRecipient
	}
	if math.IsNaN(d.Amount) || math.IsInf(d.Amount, 0) || d.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Recipient) == "" {
		return ErrEmptyRecipient
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if AmountValue(t.Amount) <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Summary returns the transaction's bucket echo with both parties included.
func (t Transaction) Summary() TransactionSummary {
	return TransactionSummary{
		ID:        t.ID,
		Amount:    t.Amount,
		Donor:     t.Donor,
		Recipient: t.Recipient,
		Timestamp: t.Timestamp,
	}
}

// AmountValue parses a stored amount for aggregation. Unparseable,
// non-finite, or missing amounts contribute 0 rather than failing the
// computation.
func AmountValue(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatAmount renders a validated amount the way the ledger stores it.
// Trailing zeros are trimmed so 25.50 round-trips as "25.5".
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// DateKey is the UTC calendar date key used for daily bucketing.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

package ledger

import (
	"context"
	"errors"
	"time"

	"givetrack/internal/core"
)

// ErrNotFound is returned when a transaction id has no ledger row.
var ErrNotFound = errors.New("transaction not found")

// Ports for the ledger store. The aggregation and intake layers depend on
// these, never on a concrete repository.
type (
	// Reader is what the stats engine and the daily-limit check consume.
	Reader interface {
		// GetByDateRange returns transactions with timestamp in
		// [start, end]. No ordering is guaranteed.
		GetByDateRange(ctx context.Context, start, end time.Time) ([]core.Transaction, error)

		// GetDailyTotalByDonor sums the donor's non-failed,
		// non-cancelled amounts for the current UTC calendar day.
		GetDailyTotalByDonor(ctx context.Context, donor string) (float64, error)
	}

	Writer interface {
		// Create assigns id, UTC timestamp and defaults (donor
		// "Anonymous", status "completed") and persists the donation.
		Create(ctx context.Context, draft core.DonationDraft) (core.Transaction, error)
	}

	// Browser serves the read-only donation endpoints.
	Browser interface {
		GetByID(ctx context.Context, id string) (core.Transaction, error)
		// ListRecent returns up to limit transactions, newest first.
		ListRecent(ctx context.Context, limit int) ([]core.Transaction, error)
		// ListPage returns one page plus the total row count.
		ListPage(ctx context.Context, limit, offset int) ([]core.Transaction, int, error)
	}

	// ExportQueue is the bookkeeping-export worker's view of the ledger.
	ExportQueue interface {
		GetByID(ctx context.Context, id string) (core.Transaction, error)
		GetPendingExport(ctx context.Context, limit int) ([]core.Transaction, error)
		MarkExported(ctx context.Context, id string) error
		MarkExportError(ctx context.Context, id string) error
	}
)

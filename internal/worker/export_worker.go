package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"givetrack/internal/amqp"
	"givetrack/internal/export"
	"givetrack/internal/ledger"
	"givetrack/internal/log"
)

// ExportWorker moves recorded donations into the bookkeeping sheet. It is
// driven by donation-recorded events, with a periodic pending scan as a
// backup for lost messages.
type ExportWorker struct {
	store     ledger.ExportQueue
	appender  export.Appender
	batchSize int
}

func NewExportWorker(store ledger.ExportQueue, appender export.Appender, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     store,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleDonationRecorded processes a single donation-recorded event.
func (w *ExportWorker) HandleDonationRecorded(ctx context.Context, msg *amqp.DonationRecordedMessage) error {
	slog.InfoContext(ctx, "Processing donation recorded message", "id", msg.ID)

	tx, err := w.store.GetByID(ctx, msg.ID)
	if errors.Is(err, ledger.ErrNotFound) {
		// Nothing to recover from a row that no longer exists
		slog.WarnContext(ctx, "Transaction gone from ledger, dropping message", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from ledger: %w", err)
	}

	if !tx.Status.CountsTowardDailyTotal() {
		slog.InfoContext(ctx, "Skipping export of inactive transaction",
			"id", tx.ID, "status", string(tx.Status))
		return nil
	}

	return w.exportTransaction(ctx, tx.ID)
}

// ProcessPending exports donations that never got a message delivered.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.GetPendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending exports: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for _, tx := range pending {
		if err := w.exportTransaction(ctx, tx.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "id", tx.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupCheck drains a larger pending backlog once at worker startup, to
// recover from downtime or missed messages.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.store.GetPendingExport(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending exports for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup, processing...",
		"count", len(pending))

	exported := 0
	failed := 0
	for _, tx := range pending {
		if err := w.exportTransaction(ctx, tx.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup",
				"id", tx.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export check completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)

	return nil
}

// Run consumes donation-recorded events and drives the periodic pending
// scan until ctx is cancelled.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client, interval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumeDonationRecorded(ctx, w.HandleDonationRecorded)
	})

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.ProcessPending(ctx); err != nil {
					slog.ErrorContext(ctx, "Periodic export scan failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}

func (w *ExportWorker) exportTransaction(ctx context.Context, id string) error {
	tx, err := w.store.GetByID(ctx, id)
	if err != nil {
		if markErr := w.store.MarkExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", id, "error", markErr)
		}
		return fmt.Errorf("get transaction: %w", err)
	}

	ref, err := w.appender.Append(ctx, tx)
	if err != nil {
		if markErr := w.store.MarkExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to bookkeeping: %w", err)
	}

	if err := w.store.MarkExported(ctx, id); err != nil {
		// The row landed in the sheet; only the bookkeeping flag is stale
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", id, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "Donation exported",
		log.FieldComponent, log.ComponentExport,
		log.FieldTransactionID, id,
		log.FieldSheetRef, ref,
		log.FieldDonor, tx.Donor,
		log.FieldAmount, tx.Amount)

	return nil
}

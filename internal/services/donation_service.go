package services

import (
	"context"
	"fmt"
	"log/slog"

	"givetrack/internal/core"
	"givetrack/internal/ledger"
)

// EventPublisher pushes donation-recorded events to the export pipeline.
type EventPublisher interface {
	PublishDonationRecorded(ctx context.Context, id string) error
}

// DonationService runs the intake pipeline: limit validation, ledger
// write, then the export event. A nil publisher means events are skipped;
// the donation is still recorded.
type DonationService struct {
	store     intakeStore
	validator *core.DonationValidator
	events    EventPublisher
}

// intakeStore is the slice of the ledger the intake path needs.
type intakeStore interface {
	ledger.Writer
	GetDailyTotalByDonor(ctx context.Context, donor string) (float64, error)
}

func NewDonationService(store intakeStore, validator *core.DonationValidator, events EventPublisher) *DonationService {
	return &DonationService{
		store:     store,
		validator: validator,
		events:    events,
	}
}

// Record validates and persists one donation.
//
// A rule violation comes back as the ValidationResult with Valid false and
// a nil error; the returned error is reserved for ledger or infrastructure
// failure, so callers can tell "request is invalid" from "system is
// unavailable".
func (s *DonationService) Record(ctx context.Context, draft core.DonationDraft) (core.Transaction, core.ValidationResult, error) {
	if result := s.validator.ValidateAmount(draft.Amount); !result.Valid {
		return core.Transaction{}, result, nil
	}

	// The rolling daily total is keyed on the donor the ledger will store
	donor := draft.Donor
	if donor == "" {
		donor = core.AnonymousDonor
	}

	if s.validator.Limits().MaxDailyPerDonor > 0 {
		dailyTotal, err := s.store.GetDailyTotalByDonor(ctx, donor)
		if err != nil {
			return core.Transaction{}, core.ValidationResult{}, fmt.Errorf("get daily total: %w", err)
		}
		if result := s.validator.ValidateDailyLimit(draft.Amount, dailyTotal); !result.Valid {
			return core.Transaction{}, result, nil
		}
	}

	tx, err := s.store.Create(ctx, draft)
	if err != nil {
		return core.Transaction{}, core.ValidationResult{}, fmt.Errorf("record donation: %w", err)
	}

	// Publish failure must not fail the request: the donation is recorded
	// locally and the worker's pending scan will pick it up.
	if err := s.publishRecorded(ctx, tx.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish donation recorded event",
			"transaction_id", tx.ID, "error", err)
	}

	return tx, core.ValidationResult{Valid: true}, nil
}

func (s *DonationService) publishRecorded(ctx context.Context, id string) error {
	if s.events == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping donation recorded event")
		return nil
	}
	return s.events.PublishDonationRecorded(ctx, id)
}

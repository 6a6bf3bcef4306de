package services

import (
	"context"
	"fmt"
	"time"

	"givetrack/internal/core"
	"givetrack/internal/ledger"
)

// StatsService binds the pure aggregation engine to the ledger. Every
// query materializes a fresh snapshot and recomputes; nothing is cached
// between calls.
//
// Callers are expected to pass an ordered range (start <= end). The
// engine applies the interval as given, so an inverted range just
// produces an empty result.
type StatsService struct {
	ledger ledger.Reader
}

func NewStatsService(reader ledger.Reader) *StatsService {
	return &StatsService{ledger: reader}
}

func (s *StatsService) Daily(ctx context.Context, start, end time.Time) ([]core.DailyBucket, error) {
	txs, err := s.ledger.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return core.DailyStats(txs, start, end), nil
}

func (s *StatsService) Weekly(ctx context.Context, start, end time.Time) ([]core.WeeklyBucket, error) {
	txs, err := s.ledger.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return core.WeeklyStats(txs, start, end), nil
}

func (s *StatsService) Summary(ctx context.Context, start, end time.Time) (core.Summary, error) {
	txs, err := s.ledger.GetByDateRange(ctx, start, end)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load transactions: %w", err)
	}
	return core.SummaryStats(txs, start, end), nil
}

func (s *StatsService) Donors(ctx context.Context, start, end time.Time) ([]core.DonorBucket, error) {
	txs, err := s.ledger.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return core.DonorStats(txs, start, end), nil
}

func (s *StatsService) Recipients(ctx context.Context, start, end time.Time) ([]core.RecipientBucket, error) {
	txs, err := s.ledger.GetByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return core.RecipientStats(txs, start, end), nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"givetrack/internal/core"
)

// fakeLedger is an in-memory stand-in for the SQLite repository.
type fakeLedger struct {
	txs       []core.Transaction
	createErr error
	totalErr  error
}

func (f *fakeLedger) Create(ctx context.Context, draft core.DonationDraft) (core.Transaction, error) {
	if f.createErr != nil {
		return core.Transaction{}, f.createErr
	}
	donor := draft.Donor
	if donor == "" {
		donor = core.AnonymousDonor
	}
	tx := core.Transaction{
		ID:          fmt.Sprintf("tx-%d", len(f.txs)+1),
		Amount:      core.FormatAmount(draft.Amount),
		Donor:       donor,
		Recipient:   draft.Recipient,
		Timestamp:   time.Now().UTC(),
		Status:      core.StatusCompleted,
		ExternalRef: draft.ExternalRef,
	}
	f.txs = append(f.txs, tx)
	return tx, nil
}

// GetDailyTotalByDonor sums today's donations the way the repository
// does: failed and cancelled rows are excluded.
func (f *fakeLedger) GetDailyTotalByDonor(ctx context.Context, donor string) (float64, error) {
	if f.totalErr != nil {
		return 0, f.totalErr
	}
	var total float64
	for _, tx := range f.txs {
		if tx.Donor == donor && tx.Status.CountsTowardDailyTotal() {
			total += core.AmountValue(tx.Amount)
		}
	}
	return total, nil
}

type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) PublishDonationRecorded(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	return nil
}

func newTestService(store *fakeLedger, events EventPublisher, maxDaily float64) *DonationService {
	validator := core.NewDonationValidator(core.ValidationLimits{
		MinAmount:        0.01,
		MaxAmount:        10000,
		MaxDailyPerDonor: maxDaily,
	})
	return NewDonationService(store, validator, events)
}

func TestRecord(t *testing.T) {
	store := &fakeLedger{}
	events := &fakePublisher{}
	svc := newTestService(store, events, 0)

	tx, result, err := svc.Record(context.Background(), core.DonationDraft{
		Amount:    25,
		Donor:     "alice",
		Recipient: "red-cross",
	})

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "25", tx.Amount)
	assert.Equal(t, "alice", tx.Donor)
	assert.Equal(t, []string{tx.ID}, events.published)
}

func TestRecordDefaultsAnonymousDonor(t *testing.T) {
	store := &fakeLedger{}
	svc := newTestService(store, &fakePublisher{}, 0)

	tx, result, err := svc.Record(context.Background(), core.DonationDraft{
		Amount:    10,
		Recipient: "unicef",
	})

	require.NoError(t, err)
	require.True(t, result.Valid)
	assert.Equal(t, core.AnonymousDonor, tx.Donor)
}

func TestRecordRejectsInvalidAmount(t *testing.T) {
	store := &fakeLedger{}
	svc := newTestService(store, &fakePublisher{}, 0)

	_, result, err := svc.Record(context.Background(), core.DonationDraft{
		Amount:    0.001,
		Recipient: "unicef",
	})

	require.NoError(t, err, "a rule violation is a result, not an error")
	assert.False(t, result.Valid)
	assert.Equal(t, core.CodeAmountBelowMinimum, result.Code)
	assert.Empty(t, store.txs, "nothing gets persisted on rejection")
}

func TestRecordEnforcesDailyCap(t *testing.T) {
	store := &fakeLedger{}
	svc := newTestService(store, &fakePublisher{}, 5000)

	seed := func(amount float64) {
		_, result, err := svc.Record(context.Background(), core.DonationDraft{
			Amount:    amount,
			Donor:     "alice",
			Recipient: "unicef",
		})
		require.NoError(t, err)
		require.True(t, result.Valid)
	}
	seed(3000)
	seed(1500)

	_, result, err := svc.Record(context.Background(), core.DonationDraft{
		Amount:    1000,
		Donor:     "alice",
		Recipient: "unicef",
	})

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, core.CodeDailyLimitExceeded, result.Code)
	assert.Equal(t, 4500.0, result.CurrentDailyTotal)
	assert.Equal(t, 500.0, result.RemainingDaily)
	assert.Len(t, store.txs, 2)
}

func TestRecordDailyCapIgnoresFailedDonations(t *testing.T) {
	store := &fakeLedger{
		txs: []core.Transaction{
			{ID: "ok", Amount: "100", Donor: "alice", Status: core.StatusCompleted, Timestamp: time.Now().UTC()},
			{ID: "failed", Amount: "200", Donor: "alice", Status: core.StatusFailed, Timestamp: time.Now().UTC()},
		},
	}
	svc := newTestService(store, &fakePublisher{}, 250)

	// 100 counted + 200 would exceed 250, but the failed 200 is ignored.
	_, result, err := svc.Record(context.Background(), core.DonationDraft{
		Amount:    150,
		Donor:     "alice",
		Recipient: "unicef",
	})

	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestRecordCapDisabledSkipsTotalLookup(t *testing.T) {
	store := &fakeLedger{totalErr: errors.New("should not be called")}
	svc := newTestService(store, &fakePublisher{}, 0)

	_, result, err := svc.Record(context.Background(), core.DonationDraft{
		Amount:    9999,
		Donor:     "alice",
		Recipient: "unicef",
	})

	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestRecordStoreFailureIsAnError(t *testing.T) {
	store := &fakeLedger{createErr: errors.New("disk full")}
	svc := newTestService(store, &fakePublisher{}, 0)

	_, _, err := svc.Record(context.Background(), core.DonationDraft{
		Amount:    10,
		Recipient: "unicef",
	})

	require.Error(t, err)
}

func TestRecordSurvivesPublishFailure(t *testing.T) {
	store := &fakeLedger{}
	events := &fakePublisher{err: errors.New("broker down")}
	svc := newTestService(store, events, 0)

	tx, result, err := svc.Record(context.Background(), core.DonationDraft{
		Amount:    10,
		Recipient: "unicef",
	})

	require.NoError(t, err, "publish failure must not fail the request")
	assert.True(t, result.Valid)
	assert.NotEmpty(t, tx.ID)
	assert.Len(t, store.txs, 1)
}

func TestRecordWithoutPublisher(t *testing.T) {
	store := &fakeLedger{}
	svc := newTestService(store, nil, 0)

	_, result, err := svc.Record(context.Background(), core.DonationDraft{
		Amount:    10,
		Recipient: "unicef",
	})

	require.NoError(t, err)
	assert.True(t, result.Valid)
}

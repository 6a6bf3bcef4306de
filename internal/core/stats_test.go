package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(id, amount, donor, recipient string, ts time.Time) Transaction {
	return Transaction{
		ID:        id,
		Amount:    amount,
		Donor:     donor,
		Recipient: recipient,
		Timestamp: ts,
		Status:    StatusCompleted,
	}
}

func ts(day int, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
}

var marchRange = struct{ start, end time.Time }{
	start: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	end:   time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC),
}

func TestDailyStats(t *testing.T) {
	txs := []Transaction{
		tx("c", "30", "carol", "unicef", ts(5, 9)),
		tx("a", "10", "alice", "red-cross", ts(4, 12)),
		tx("b", "20", "bob", "red-cross", ts(4, 18)),
	}

	buckets := DailyStats(txs, marchRange.start, marchRange.end)
	require.Len(t, buckets, 2)

	assert.Equal(t, "2024-03-04", buckets[0].Date)
	assert.Equal(t, 30.0, buckets[0].TotalVolume)
	assert.Equal(t, 2, buckets[0].TransactionCount)
	assert.Len(t, buckets[0].Transactions, 2)

	assert.Equal(t, "2024-03-05", buckets[1].Date)
	assert.Equal(t, 30.0, buckets[1].TotalVolume)
	assert.Equal(t, 1, buckets[1].TransactionCount)
}

func TestDailyStatsRangeBoundsInclusive(t *testing.T) {
	start := ts(10, 0)
	end := ts(12, 0)
	txs := []Transaction{
		tx("before", "1", "a", "x", start.Add(-time.Millisecond)),
		tx("at-start", "2", "a", "x", start),
		tx("inside", "4", "a", "x", ts(11, 6)),
		tx("at-end", "8", "a", "x", end),
		tx("after", "16", "a", "x", end.Add(time.Millisecond)),
	}

	buckets := DailyStats(txs, start, end)
	var total float64
	for _, b := range buckets {
		total += b.TotalVolume
	}
	assert.Equal(t, 14.0, total, "both endpoints belong to the range")
}

func TestDailyStatsInvertedRangeIsEmpty(t *testing.T) {
	txs := []Transaction{tx("a", "10", "alice", "x", ts(4, 12))}
	buckets := DailyStats(txs, marchRange.end, marchRange.start)
	assert.Empty(t, buckets)
}

func TestDailyStatsNonNumericAmountCountsAsZero(t *testing.T) {
	txs := []Transaction{
		tx("a", "10", "alice", "x", ts(4, 12)),
		tx("b", "oops", "bob", "x", ts(4, 13)),
	}

	buckets := DailyStats(txs, marchRange.start, marchRange.end)
	require.Len(t, buckets, 1)
	assert.Equal(t, 10.0, buckets[0].TotalVolume)
	assert.Equal(t, 2, buckets[0].TransactionCount, "the row still counts, only its value is zero")
}

func TestWeeklyStats(t *testing.T) {
	// March 4-10 2024 is ISO week 10, March 11-17 is week 11.
	txs := []Transaction{
		tx("w11", "5", "carol", "x", ts(12, 9)),
		tx("w10-a", "10", "alice", "x", ts(4, 12)),
		tx("w10-b", "20", "bob", "x", ts(10, 23)),
	}

	buckets := WeeklyStats(txs, marchRange.start, marchRange.end)
	require.Len(t, buckets, 2)

	assert.Equal(t, 2024, buckets[0].Year)
	assert.Equal(t, 10, buckets[0].Week)
	assert.Equal(t, "2024-03-04", buckets[0].WeekStart)
	assert.Equal(t, "2024-03-10", buckets[0].WeekEnd)
	assert.Equal(t, 30.0, buckets[0].TotalVolume)

	assert.Equal(t, 11, buckets[1].Week)
	assert.Equal(t, 5.0, buckets[1].TotalVolume)
}

func TestWeeklyStatsYearBoundaryOrdering(t *testing.T) {
	// 2020-12-28..2021-01-03 is 2020-W53; 2021-01-04 opens 2021-W1.
	txs := []Transaction{
		tx("new", "2", "a", "x", time.Date(2021, time.January, 4, 8, 0, 0, 0, time.UTC)),
		tx("old", "1", "a", "x", time.Date(2021, time.January, 1, 8, 0, 0, 0, time.UTC)),
	}

	buckets := WeeklyStats(txs,
		time.Date(2020, time.December, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, time.January, 31, 0, 0, 0, 0, time.UTC))
	require.Len(t, buckets, 2)

	assert.Equal(t, 2020, buckets[0].Year)
	assert.Equal(t, 53, buckets[0].Week)
	assert.Equal(t, 2021, buckets[1].Year)
	assert.Equal(t, 1, buckets[1].Week)
}

func TestDonorStats(t *testing.T) {
	txs := []Transaction{
		tx("1", "10", "alice", "x", ts(4, 10)),
		tx("2", "50", "bob", "x", ts(4, 11)),
		tx("3", "15", "alice", "y", ts(5, 9)),
		tx("4", "", "", "z", ts(5, 10)), // anonymous, unparseable amount
	}

	buckets := DonorStats(txs, marchRange.start, marchRange.end)
	require.Len(t, buckets, 3)

	assert.Equal(t, "bob", buckets[0].Donor)
	assert.Equal(t, 50.0, buckets[0].TotalDonated)

	assert.Equal(t, "alice", buckets[1].Donor)
	assert.Equal(t, 25.0, buckets[1].TotalDonated)
	assert.Equal(t, 2, buckets[1].DonationCount)

	assert.Equal(t, AnonymousDonor, buckets[2].Donor)
	assert.Equal(t, 0.0, buckets[2].TotalDonated)
	assert.Equal(t, 1, buckets[2].DonationCount)

	// The grouping key is not repeated inside each donation echo.
	assert.Empty(t, buckets[1].Donations[0].Donor)
	assert.Equal(t, "y", buckets[1].Donations[1].Recipient)
}

func TestDonorStatsStableTieOrder(t *testing.T) {
	txs := []Transaction{
		tx("1", "10", "zoe", "x", ts(4, 10)),
		tx("2", "10", "adam", "x", ts(4, 11)),
		tx("3", "10", "mia", "x", ts(4, 12)),
	}

	buckets := DonorStats(txs, marchRange.start, marchRange.end)
	require.Len(t, buckets, 3)
	// Equal totals keep first-appearance order, not name order.
	assert.Equal(t, "zoe", buckets[0].Donor)
	assert.Equal(t, "adam", buckets[1].Donor)
	assert.Equal(t, "mia", buckets[2].Donor)
}

func TestRecipientStats(t *testing.T) {
	txs := []Transaction{
		tx("1", "10", "alice", "red-cross", ts(4, 10)),
		tx("2", "50", "bob", "unicef", ts(4, 11)),
		tx("3", "45", "carol", "red-cross", ts(5, 9)),
	}

	buckets := RecipientStats(txs, marchRange.start, marchRange.end)
	require.Len(t, buckets, 2)

	assert.Equal(t, "red-cross", buckets[0].Recipient)
	assert.Equal(t, 55.0, buckets[0].TotalReceived)
	assert.Equal(t, 2, buckets[0].DonationCount)
	assert.Empty(t, buckets[0].Donations[0].Recipient)

	assert.Equal(t, "unicef", buckets[1].Recipient)
	assert.Equal(t, 50.0, buckets[1].TotalReceived)
}

func TestSummaryStats(t *testing.T) {
	txs := []Transaction{
		tx("1", "10", "alice", "x", ts(4, 10)),
		tx("2", "50", "bob", "x", ts(4, 11)),
		tx("3", "15", "carol", "y", ts(5, 9)),
	}

	s := SummaryStats(txs, marchRange.start, marchRange.end)
	assert.Equal(t, 75.0, s.TotalVolume)
	assert.Equal(t, 3, s.TotalTransactions)
	assert.Equal(t, 25.0, s.AverageTransactionAmount)
	assert.Equal(t, 50.0, s.MaxTransactionAmount)
	assert.Equal(t, 10.0, s.MinTransactionAmount)
	assert.Equal(t, marchRange.start, s.DateRange.Start)
	assert.Equal(t, marchRange.end, s.DateRange.End)
}

func TestSummaryStatsEmptyRange(t *testing.T) {
	s := SummaryStats(nil, marchRange.start, marchRange.end)
	assert.Equal(t, 0.0, s.TotalVolume)
	assert.Equal(t, 0, s.TotalTransactions)
	assert.Equal(t, 0.0, s.AverageTransactionAmount)
	assert.Equal(t, 0.0, s.MaxTransactionAmount)
	assert.Equal(t, 0.0, s.MinTransactionAmount)
}

func TestAggregationsReconcile(t *testing.T) {
	txs := []Transaction{
		tx("1", "10.5", "alice", "red-cross", ts(4, 10)),
		tx("2", "50", "bob", "unicef", ts(5, 11)),
		tx("3", "15", "alice", "red-cross", ts(12, 9)),
		tx("4", "3.25", "", "unicef", ts(20, 15)),
	}

	daily := DailyStats(txs, marchRange.start, marchRange.end)
	weekly := WeeklyStats(txs, marchRange.start, marchRange.end)
	donors := DonorStats(txs, marchRange.start, marchRange.end)
	summary := SummaryStats(txs, marchRange.start, marchRange.end)

	var dailyTotal, weeklyTotal, donorTotal float64
	for _, b := range daily {
		dailyTotal += b.TotalVolume
	}
	for _, b := range weekly {
		weeklyTotal += b.TotalVolume
	}
	for _, b := range donors {
		donorTotal += b.TotalDonated
	}

	assert.InDelta(t, summary.TotalVolume, dailyTotal, 1e-9)
	assert.InDelta(t, summary.TotalVolume, weeklyTotal, 1e-9)
	assert.InDelta(t, summary.TotalVolume, donorTotal, 1e-9)
}

// Package core holds the donation data model, the ISO week calculator,
// the aggregation engine and the donation limit validator. Everything in
// this package is a pure, synchronous computation over an in-memory
// snapshot of transactions; the ledger itself lives behind the ports in
// internal/ledger.
package core

import (
	"sort"
	"time"
)

type (
	// DailyBucket aggregates one UTC calendar date.
	DailyBucket struct {
		Date             string               `json:"date"`
		TotalVolume      float64              `json:"totalVolume"`
		TransactionCount int                  `json:"transactionCount"`
		Transactions     []TransactionSummary `json:"transactions"`
	}

	// WeeklyBucket aggregates one ISO-8601 week.
	WeeklyBucket struct {
		Week             int                  `json:"week"`
		Year             int                  `json:"year"`
		WeekStart        string               `json:"weekStart"`
		WeekEnd          string               `json:"weekEnd"`
		TotalVolume      float64              `json:"totalVolume"`
		TransactionCount int                  `json:"transactionCount"`
		Transactions     []TransactionSummary `json:"transactions"`
	}

	// DonorBucket aggregates one donor's giving.
	DonorBucket struct {
		Donor         string               `json:"donor"`
		TotalDonated  float64              `json:"totalDonated"`
		DonationCount int                  `json:"donationCount"`
		Donations     []TransactionSummary `json:"donations"`
	}

	// RecipientBucket aggregates what one recipient received.
	RecipientBucket struct {
		Recipient     string               `json:"recipient"`
		TotalReceived float64              `json:"totalReceived"`
		DonationCount int                  `json:"donationCount"`
		Donations     []TransactionSummary `json:"donations"`
	}

	// DateRange echoes the queried interval back to the caller.
	DateRange struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	}

	// Summary holds the overall statistics for a date range. All volume
	// fields are 0 (never NaN or infinities) when no transactions match.
	Summary struct {
		TotalVolume              float64   `json:"totalVolume"`
		TotalTransactions        int       `json:"totalTransactions"`
		AverageTransactionAmount float64   `json:"averageTransactionAmount"`
		MaxTransactionAmount     float64   `json:"maxTransactionAmount"`
		MinTransactionAmount     float64   `json:"minTransactionAmount"`
		DateRange                DateRange `json:"dateRange"`
	}
)

// filterRange keeps transactions with timestamp in [start, end]. The
// bounds are applied as given: an inverted range simply matches nothing,
// ordering them is the caller's precondition.
func filterRange(txs []Transaction, start, end time.Time) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Timestamp.Before(start) || tx.Timestamp.After(end) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// reduceByKey is the single grouping routine behind every aggregation
// kind. It buckets transactions under keyOf, seeding a bucket with seed on
// first sight and folding each transaction in with merge. Buckets come
// back in first-seen key order, which the stable sorts below rely on for
// their tie-break guarantee.
func reduceByKey[K comparable, B any](
	txs []Transaction,
	keyOf func(Transaction) K,
	seed func(Transaction) B,
	merge func(B, Transaction) B,
) []B {
	index := make(map[K]int, len(txs))
	buckets := make([]B, 0)
	for _, tx := range txs {
		k := keyOf(tx)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, seed(tx))
		}
		buckets[i] = merge(buckets[i], tx)
	}
	return buckets
}

// DailyStats groups the range's transactions by UTC calendar date,
// ascending. Dates with no transactions do not appear.
func DailyStats(txs []Transaction, start, end time.Time) []DailyBucket {
	buckets := reduceByKey(filterRange(txs, start, end),
		func(tx Transaction) string { return DateKey(tx.Timestamp) },
		func(tx Transaction) DailyBucket {
			return DailyBucket{Date: DateKey(tx.Timestamp)}
		},
		func(b DailyBucket, tx Transaction) DailyBucket {
			b.TotalVolume += AmountValue(tx.Amount)
			b.TransactionCount++
			b.Transactions = append(b.Transactions, tx.Summary())
			return b
		})

	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Date < buckets[j].Date })
	return buckets
}

// WeeklyStats groups the range's transactions by ISO week, ascending by
// (year, week).
func WeeklyStats(txs []Transaction, start, end time.Time) []WeeklyBucket {
	type weekKey struct{ year, week int }

	buckets := reduceByKey(filterRange(txs, start, end),
		func(tx Transaction) weekKey {
			w := ISOWeekOf(tx.Timestamp)
			return weekKey{w.Year, w.Week}
		},
		func(tx Transaction) WeeklyBucket {
			w := ISOWeekOf(tx.Timestamp)
			return WeeklyBucket{
				Week:      w.Week,
				Year:      w.Year,
				WeekStart: DateKey(w.WeekStart),
				WeekEnd:   DateKey(w.WeekEnd),
			}
		},
		func(b WeeklyBucket, tx Transaction) WeeklyBucket {
			b.TotalVolume += AmountValue(tx.Amount)
			b.TransactionCount++
			b.Transactions = append(b.Transactions, tx.Summary())
			return b
		})

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Year != buckets[j].Year {
			return buckets[i].Year < buckets[j].Year
		}
		return buckets[i].Week < buckets[j].Week
	})
	return buckets
}

// DonorStats groups by donor (missing donor counts as Anonymous), sorted
// descending by total donated. Equal totals keep first-seen order.
func DonorStats(txs []Transaction, start, end time.Time) []DonorBucket {
	buckets := reduceByKey(filterRange(txs, start, end),
		donorOf,
		func(tx Transaction) DonorBucket {
			return DonorBucket{Donor: donorOf(tx)}
		},
		func(b DonorBucket, tx Transaction) DonorBucket {
			b.TotalDonated += AmountValue(tx.Amount)
			b.DonationCount++
			s := tx.Summary()
			s.Donor = "" // the bucket key, not repeated per donation
			b.Donations = append(b.Donations, s)
			return b
		})

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].TotalDonated > buckets[j].TotalDonated
	})
	return buckets
}

// RecipientStats groups by recipient (missing recipient counts as
// Unknown), sorted descending by total received. Equal totals keep
// first-seen order.
func RecipientStats(txs []Transaction, start, end time.Time) []RecipientBucket {
	buckets := reduceByKey(filterRange(txs, start, end),
		recipientOf,
		func(tx Transaction) RecipientBucket {
			return RecipientBucket{Recipient: recipientOf(tx)}
		},
		func(b RecipientBucket, tx Transaction) RecipientBucket {
			b.TotalReceived += AmountValue(tx.Amount)
			b.DonationCount++
			s := tx.Summary()
			s.Recipient = ""
			b.Donations = append(b.Donations, s)
			return b
		})

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].TotalReceived > buckets[j].TotalReceived
	})
	return buckets
}

// SummaryStats reduces the range into one Summary. An empty range yields
// all-zero fields, the min included.
func SummaryStats(txs []Transaction, start, end time.Time) Summary {
	filtered := filterRange(txs, start, end)

	s := Summary{
		TotalTransactions: len(filtered),
		DateRange:         DateRange{Start: start, End: end},
	}
	if len(filtered) == 0 {
		return s
	}

	s.MinTransactionAmount = AmountValue(filtered[0].Amount)
	for _, tx := range filtered {
		amount := AmountValue(tx.Amount)
		s.TotalVolume += amount
		if amount > s.MaxTransactionAmount {
			s.MaxTransactionAmount = amount
		}
		if amount < s.MinTransactionAmount {
			s.MinTransactionAmount = amount
		}
	}
	s.AverageTransactionAmount = s.TotalVolume / float64(len(filtered))
	return s
}

func donorOf(tx Transaction) string {
	if tx.Donor == "" {
		return AnonymousDonor
	}
	return tx.Donor
}

func recipientOf(tx Transaction) string {
	if tx.Recipient == "" {
		return UnknownRecipient
	}
	return tx.Recipient
}

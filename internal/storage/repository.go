package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"givetrack/internal/core"
	"givetrack/internal/ledger"
	"givetrack/internal/log"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout is a fixed-width UTC format so stored timestamps order
// lexicographically and range predicates can compare them as text.
const timeLayout = "2006-01-02T15:04:05.000Z"

// SQLiteRepository is the ledger store.
type SQLiteRepository struct {
	db *sql.DB
}

// Interface conformance
var (
	_ ledger.Reader      = (*SQLiteRepository)(nil)
	_ ledger.Writer      = (*SQLiteRepository)(nil)
	_ ledger.Browser     = (*SQLiteRepository)(nil)
	_ ledger.ExportQueue = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Create implements ledger.Writer. The repository assigns the id and the
// UTC timestamp and applies the donor/status defaults.
func (r *SQLiteRepository) Create(ctx context.Context, draft core.DonationDraft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate donation: %w", err)
	}

	donor := draft.Donor
	if donor == "" {
		donor = core.AnonymousDonor
	}

	tx := core.Transaction{
		ID:          uuid.NewString(),
		Amount:      core.FormatAmount(draft.Amount),
		Donor:       donor,
		Recipient:   draft.Recipient,
		Timestamp:   time.Now().UTC().Truncate(time.Millisecond),
		Status:      core.StatusCompleted,
		ExternalRef: draft.ExternalRef,
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, amount, donor, recipient, timestamp, status, external_ref)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Amount, tx.Donor, tx.Recipient, tx.Timestamp.Format(timeLayout),
		string(tx.Status), nullable(tx.ExternalRef))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Donation recorded",
		log.FieldComponent, log.ComponentStorage,
		log.FieldTransactionID, tx.ID,
		log.FieldDonor, tx.Donor,
		log.FieldRecipient, tx.Recipient,
		log.FieldAmount, tx.Amount)

	return tx, nil
}

// GetByDateRange implements ledger.Reader. Bounds are inclusive; rows come
// back in no guaranteed order.
func (r *SQLiteRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		selectColumns+` FROM transactions WHERE timestamp >= ? AND timestamp <= ?`,
		start.UTC().Format(timeLayout), end.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("query by date range: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

// GetDailyTotalByDonor implements ledger.Reader: the donor's rolling daily
// total for the current UTC calendar day, excluding failed and cancelled
// donations. Amounts that fail the numeric cast contribute 0.
func (r *SQLiteRepository) GetDailyTotalByDonor(ctx context.Context, donor string) (float64, error) {
	dayStart := midnightUTC(time.Now())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CAST(amount AS REAL)), 0)
		 FROM transactions
		 WHERE donor = ?
		   AND timestamp >= ? AND timestamp < ?
		   AND status NOT IN ('failed', 'cancelled')`,
		donor, dayStart.Format(timeLayout), dayEnd.Format(timeLayout)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("query daily total for donor: %w", err)
	}
	return total, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		selectColumns+` FROM transactions WHERE id = ?`, id)

	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("query transaction by id: %w", err)
	}
	return tx, nil
}

// ListRecent implements ledger.Browser, newest first.
func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		selectColumns+` FROM transactions ORDER BY timestamp DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent transactions: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

// ListPage implements ledger.Browser: one page newest first, plus the
// total row count for the pagination envelope.
func (r *SQLiteRepository) ListPage(ctx context.Context, limit, offset int) ([]core.Transaction, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		selectColumns+` FROM transactions ORDER BY timestamp DESC, id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query transaction page: %w", err)
	}
	defer rows.Close()

	txs, err := collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// GetPendingExport implements ledger.ExportQueue. Failed and cancelled
// donations never reach the bookkeeping sheet.
func (r *SQLiteRepository) GetPendingExport(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		selectColumns+` FROM transactions
		 WHERE export_state = 'pending' AND status NOT IN ('failed', 'cancelled')
		 ORDER BY timestamp LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending export: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET export_state = 'exported', exported_at = ? WHERE id = ?`,
		time.Now().UTC().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("mark transaction exported: %w", err)
	}

	slog.InfoContext(ctx, "Transaction marked as exported", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET export_state = 'error' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark transaction export error: %w", err)
	}

	slog.WarnContext(ctx, "Transaction marked with export error", "id", id)
	return nil
}

// UpdateStatus moves a transaction through its lifecycle (confirmed,
// failed, cancelled).
func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status core.Status) error {
	if !status.Valid() {
		return core.ErrInvalidStatus
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ledger.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction status updated", "id", id, "status", string(status))
	return nil
}

const selectColumns = `SELECT id, amount, donor, recipient, timestamp, status, external_ref`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx          core.Transaction
		ts          string
		status      string
		externalRef sql.NullString
	)
	if err := row.Scan(&tx.ID, &tx.Amount, &tx.Donor, &tx.Recipient, &ts, &status, &externalRef); err != nil {
		return core.Transaction{}, err
	}

	parsed, err := time.Parse(timeLayout, ts)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored timestamp %q: %w", ts, err)
	}

	tx.Timestamp = parsed
	tx.Status = core.Status(status)
	tx.ExternalRef = externalRef.String
	return tx, nil
}

func collect(rows *sql.Rows) ([]core.Transaction, error) {
	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func midnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

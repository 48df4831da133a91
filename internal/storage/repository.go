package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tabungan/internal/core"
	"tabungan/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists transactions in the tabungan_master table.
// Deletes are always soft: is_active flips to 0 and the row stays for the
// sync trail; no code path removes rows.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteRepository)(nil)

// PendingTransaction is the minimal row state the sync worker needs.
type PendingTransaction struct {
	ID      int64
	Version int64
}

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

// Insert implements ledger.TransactionWriter.
func (r *SQLiteRepository) Insert(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tabungan_master (jenis, nominal, keterangan, date, is_active)
		 VALUES (?, ?, ?, ?, 1)`,
		string(tx.Category), tx.Nominal, tx.Note, tx.Date.String())
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"jenis", tx.Category,
		"nominal", tx.Nominal,
		"date", tx.Date.String())

	return id, nil
}

// FetchByCategory implements ledger.TransactionReader.
func (r *SQLiteRepository) FetchByCategory(ctx context.Context, category core.Category) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, jenis, nominal, keterangan, date, is_active
		 FROM tabungan_master
		 WHERE jenis = ? AND is_active = 1
		 ORDER BY date DESC, id DESC`, string(category))
	if err != nil {
		return nil, fmt.Errorf("fetch by category %s: %w", category, err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// FetchAll implements ledger.TransactionReader.
func (r *SQLiteRepository) FetchAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, jenis, nominal, keterangan, date, is_active
		 FROM tabungan_master
		 WHERE is_active = 1
		 ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("fetch all transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// Get returns a transaction by ID regardless of its active flag, so the sync
// worker can export soft-deleted rows.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, jenis, nominal, keterangan, date, is_active
		 FROM tabungan_master WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return tx, nil
}

// Update implements ledger.TransactionMutator. Only nominal, keterangan and
// date are mutable; every update bumps the version and re-queues the row for
// sync.
func (r *SQLiteRepository) Update(ctx context.Context, id int64, upd core.TransactionUpdate) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if upd.Nominal != nil {
		sets = append(sets, "nominal = ?")
		args = append(args, *upd.Nominal)
	}
	if upd.Note != nil {
		sets = append(sets, "keterangan = ?")
		args = append(args, *upd.Note)
	}
	if upd.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, upd.Date.String())
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets,
		"version = version + 1",
		"sync_status = 'pending'",
		"updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE tabungan_master SET "+strings.Join(sets, ", ")+" WHERE id = ? AND is_active = 1",
		args...)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction updated", "id", id)
	return nil
}

// SoftDelete implements ledger.TransactionMutator.
func (r *SQLiteRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tabungan_master
		 SET is_active = 0, version = version + 1, sync_status = 'pending',
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return fmt.Errorf("soft delete transaction %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction soft deleted", "id", id)
	return nil
}

// GetVersion returns the current sync version of a row.
func (r *SQLiteRepository) GetVersion(ctx context.Context, id int64) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx,
		`SELECT version FROM tabungan_master WHERE id = ?`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, core.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get version for %d: %w", id, err)
	}
	return version, nil
}

// PendingSync returns transactions whose latest state has not been exported,
// oldest update first.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]PendingTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version FROM tabungan_master
		 WHERE sync_status = 'pending'
		 ORDER BY updated_at ASC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	var pending []PendingTransaction
	for rows.Next() {
		var p PendingTransaction
		if err := rows.Scan(&p.ID, &p.Version); err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkSynced records that the row's state up to version has been exported.
// A newer version written in the meantime keeps the row pending.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id, version int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tabungan_master SET sync_status = 'synced'
		 WHERE id = ? AND version = ?`, id, version)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id, "version", version)
	return nil
}

// MarkSyncError flags a row whose export failed.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE tabungan_master SET sync_status = 'error' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx      core.Transaction
		jenis   string
		dateStr string
		active  int64
	)
	if err := row.Scan(&tx.ID, &jenis, &tx.Nominal, &tx.Note, &dateStr, &active); err != nil {
		return core.Transaction{}, err
	}
	parsed, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", dateStr, err)
	}
	tx.Category = core.Category(jenis)
	tx.Date = core.Date{Time: parsed}
	tx.Active = active != 0
	return tx, nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

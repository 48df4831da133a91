package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tabungan/internal/amqp"
	"tabungan/internal/core"
	"tabungan/internal/export"
	"tabungan/internal/storage"
)

// SyncStore is the slice of the storage layer the worker drives: reading the
// current row state and flipping its sync status.
type SyncStore interface {
	Get(ctx context.Context, id int64) (core.Transaction, error)
	GetVersion(ctx context.Context, id int64) (int64, error)
	PendingSync(ctx context.Context, limit int) ([]storage.PendingTransaction, error)
	MarkSynced(ctx context.Context, id, version int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// SyncWorker exports transaction states from SQLite to the configured row
// writer. It is driven two ways: AMQP messages for fresh writes and a
// periodic pending scan that recovers anything a lost message left behind.
type SyncWorker struct {
	store     SyncStore
	exporter  export.RowWriter
	batchSize int
}

func NewSyncWorker(store SyncStore, exporter export.RowWriter, batchSize int) *SyncWorker {
	return &SyncWorker{
		store:     store,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleMessage processes one sync or delete message. Both kinds export the
// row's current state; a soft-deleted row simply lands with active=false.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"kind", msg.Kind,
		"id", msg.ID,
		"version", msg.Version)

	tx, err := w.store.Get(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Row is gone entirely; requeueing would loop forever.
			slog.WarnContext(ctx, "Dropping sync message for missing row", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.exportTransaction(ctx, tx, msg.Version)
}

// ProcessPending exports rows still marked pending. This is the backup
// mechanism for lost AMQP messages.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	return w.processPendingBatch(ctx, w.batchSize)
}

// StartupSyncCheck drains a larger pending backlog at worker startup to
// recover from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.store.PendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup", "count", len(pending))

	synced := 0
	failed := 0
	for _, p := range pending {
		if err := w.syncPending(ctx, p); err != nil {
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)

	return nil
}

func (w *SyncWorker) processPendingBatch(ctx context.Context, limit int) error {
	pending, err := w.store.PendingSync(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		if err := w.syncPending(ctx, p); err != nil {
			continue
		}
	}
	return nil
}

func (w *SyncWorker) syncPending(ctx context.Context, p storage.PendingTransaction) error {
	tx, err := w.store.Get(ctx, p.ID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to get pending transaction", "id", p.ID, "error", err)
		if markErr := w.store.MarkSyncError(ctx, p.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", markErr)
		}
		return err
	}
	if err := w.exportTransaction(ctx, tx, p.Version); err != nil {
		slog.ErrorContext(ctx, "Failed to sync pending transaction", "id", p.ID, "error", err)
		return err
	}
	return nil
}

// exportTransaction appends the row state and marks it synced. MarkSynced
// carries the version the export was based on; the store ignores the mark
// when the row moved on in the meantime, so the newer state stays pending.
func (w *SyncWorker) exportTransaction(ctx context.Context, tx core.Transaction, version int64) error {
	ref, err := w.exporter.Append(ctx, tx)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, tx.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", tx.ID, "error", markErr)
		}
		return fmt.Errorf("append to export: %w", err)
	}

	if err := w.store.MarkSynced(ctx, tx.ID, version); err != nil {
		// The export itself worked; the row will be retried by the
		// pending scan at worst.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", tx.ID, "error", err)
	}

	slog.InfoContext(ctx, "Synced transaction",
		"id", tx.ID,
		"sheets_ref", ref,
		"category", tx.Category,
		"nominal", tx.Nominal,
		"active", tx.Active)

	return nil
}

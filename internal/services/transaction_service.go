package services

import (
	"context"
	"fmt"
	"log/slog"

	"tabungan/internal/core"
	"tabungan/internal/ledger"
)

// SyncPublisher queues a transaction state for export. The AMQP client
// implements it; a nil publisher disables sync entirely.
type SyncPublisher interface {
	PublishSync(ctx context.Context, id, version int64) error
	PublishDelete(ctx context.Context, id, version int64) error
}

// Versioner is implemented by stores that track a per-row sync version.
type Versioner interface {
	GetVersion(ctx context.Context, id int64) (int64, error)
}

// TransactionService orchestrates transaction writes across the ledger store
// and the sync queue. The local write always happens first; a failed publish
// is logged and dropped because the periodic worker pass re-drives pending
// rows anyway.
type TransactionService struct {
	store     ledger.Store
	publisher SyncPublisher
	closers   []func() error
}

func NewTransactionService(store ledger.Store, publisher SyncPublisher) *TransactionService {
	return &TransactionService{store: store, publisher: publisher}
}

// AddCloser registers a resource to close with the service.
func (s *TransactionService) AddCloser(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Create validates and persists a new transaction, then queues it for sync.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.Insert(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	s.publishSync(ctx, id)
	return id, nil
}

// Update applies the mutable fields and re-queues the row for sync.
func (s *TransactionService) Update(ctx context.Context, id int64, upd core.TransactionUpdate) error {
	if err := s.store.Update(ctx, id, upd); err != nil {
		return err
	}
	s.publishSync(ctx, id)
	return nil
}

// Delete soft-deletes the row and queues a delete marker for export.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return err
	}

	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishDelete(ctx, id, s.version(ctx, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message", "id", id, "error", err)
	}
	return nil
}

// Get returns one transaction by ID, active or not.
func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.Get(ctx, id)
}

// ListByCategory returns active transactions of one category, date descending.
func (s *TransactionService) ListByCategory(ctx context.Context, category core.Category) ([]core.Transaction, error) {
	if !category.Valid() {
		return nil, core.ErrInvalidCategory
	}
	return s.store.FetchByCategory(ctx, category)
}

// ListAll returns the full active snapshot, date descending.
func (s *TransactionService) ListAll(ctx context.Context) ([]core.Transaction, error) {
	return s.store.FetchAll(ctx)
}

func (s *TransactionService) publishSync(ctx context.Context, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSync(ctx, id, s.version(ctx, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}
}

// version reads the row's sync version when the store tracks one. Stores
// without versioning report 1; the worker treats versions as advisory.
func (s *TransactionService) version(ctx context.Context, id int64) int64 {
	v, ok := s.store.(Versioner)
	if !ok {
		return 1
	}
	version, err := v.GetVersion(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "Failed to read sync version", "id", id, "error", err)
		return 1
	}
	return version
}

// Close releases every registered resource.
func (s *TransactionService) Close() error {
	var errs []error
	for _, fn := range s.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}

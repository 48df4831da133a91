package worker

import (
	"context"
	"testing"

	"tabungan/internal/amqp"
	"tabungan/internal/core"
	"tabungan/internal/export/memory"
	"tabungan/internal/storage"
)

type fakeStore struct {
	rows       map[int64]core.Transaction
	versions   map[int64]int64
	pending    []storage.PendingTransaction
	synced     map[int64]int64
	syncErrors []int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:     make(map[int64]core.Transaction),
		versions: make(map[int64]int64),
		synced:   make(map[int64]int64),
	}
}

func (f *fakeStore) Get(_ context.Context, id int64) (core.Transaction, error) {
	tx, ok := f.rows[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return tx, nil
}

func (f *fakeStore) GetVersion(_ context.Context, id int64) (int64, error) {
	return f.versions[id], nil
}

func (f *fakeStore) PendingSync(_ context.Context, limit int) ([]storage.PendingTransaction, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeStore) MarkSynced(_ context.Context, id, version int64) error {
	f.synced[id] = version
	return nil
}

func (f *fakeStore) MarkSyncError(_ context.Context, id int64) error {
	f.syncErrors = append(f.syncErrors, id)
	return nil
}

func TestHandleMessageExportsAndMarksSynced(t *testing.T) {
	store := newFakeStore()
	store.rows[1] = core.Transaction{
		ID:       1,
		Category: core.CategoryRumah,
		Nominal:  500000,
		Date:     core.NewDate(2025, 3, 10),
		Active:   true,
	}
	exporter := memory.New()
	w := NewSyncWorker(store, exporter, 10)

	if err := w.HandleMessage(context.Background(), amqp.NewSyncMessage(1, 2)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	rows := exporter.Rows()
	if len(rows) != 1 || rows[0].ID != 1 {
		t.Fatalf("expected one exported row for id 1, got %+v", rows)
	}
	if v, ok := store.synced[1]; !ok || v != 2 {
		t.Fatalf("expected row marked synced at version 2, got %v ok=%v", v, ok)
	}
}

func TestHandleMessageDeleteExportsInactiveState(t *testing.T) {
	store := newFakeStore()
	store.rows[3] = core.Transaction{
		ID:       3,
		Category: core.CategoryAnak,
		Nominal:  -200000,
		Date:     core.NewDate(2025, 4, 1),
		Active:   false,
	}
	exporter := memory.New()
	w := NewSyncWorker(store, exporter, 10)

	if err := w.HandleMessage(context.Background(), amqp.NewDeleteMessage(3, 1)); err != nil {
		t.Fatalf("handle delete: %v", err)
	}

	rows := exporter.Rows()
	if len(rows) != 1 || rows[0].Active {
		t.Fatalf("expected one inactive exported row, got %+v", rows)
	}
}

func TestHandleMessageMissingRowDropped(t *testing.T) {
	w := NewSyncWorker(newFakeStore(), memory.New(), 10)

	// A missing row must not error, or the delivery would requeue forever.
	if err := w.HandleMessage(context.Background(), amqp.NewSyncMessage(99, 1)); err != nil {
		t.Fatalf("expected nil for missing row, got %v", err)
	}
}

func TestExportFailureMarksError(t *testing.T) {
	store := newFakeStore()
	store.rows[5] = core.Transaction{
		ID:       5,
		Category: core.CategoryHoliday,
		Nominal:  100000,
		Date:     core.NewDate(2025, 1, 1),
		Active:   true,
	}
	exporter := memory.New()
	exporter.FailNext(true)
	w := NewSyncWorker(store, exporter, 10)

	if err := w.HandleMessage(context.Background(), amqp.NewSyncMessage(5, 1)); err == nil {
		t.Fatal("expected error when export fails")
	}
	if len(store.syncErrors) != 1 || store.syncErrors[0] != 5 {
		t.Fatalf("expected sync error marked for id 5, got %v", store.syncErrors)
	}
}

func TestProcessPendingDrainsBacklog(t *testing.T) {
	store := newFakeStore()
	for id := int64(1); id <= 3; id++ {
		store.rows[id] = core.Transaction{
			ID:       id,
			Category: core.CategoryRumah,
			Nominal:  1000 * id,
			Date:     core.NewDate(2025, 2, int(id)),
			Active:   true,
		}
		store.pending = append(store.pending, storage.PendingTransaction{ID: id, Version: 1})
	}
	exporter := memory.New()
	w := NewSyncWorker(store, exporter, 10)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if len(exporter.Rows()) != 3 {
		t.Fatalf("expected 3 exported rows, got %d", len(exporter.Rows()))
	}
	if len(store.synced) != 3 {
		t.Fatalf("expected 3 rows marked synced, got %d", len(store.synced))
	}
}

func TestProcessPendingSkipsFailedRowAndContinues(t *testing.T) {
	store := newFakeStore()
	// id 1 exists, id 2 is missing from the rows map.
	store.rows[1] = core.Transaction{
		ID:       1,
		Category: core.CategoryRumah,
		Nominal:  1000,
		Date:     core.NewDate(2025, 2, 1),
		Active:   true,
	}
	store.pending = []storage.PendingTransaction{{ID: 2, Version: 1}, {ID: 1, Version: 1}}
	exporter := memory.New()
	w := NewSyncWorker(store, exporter, 10)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if len(exporter.Rows()) != 1 {
		t.Fatalf("expected the healthy row exported, got %d rows", len(exporter.Rows()))
	}
	if len(store.syncErrors) != 1 || store.syncErrors[0] != 2 {
		t.Fatalf("expected sync error for id 2, got %v", store.syncErrors)
	}
}

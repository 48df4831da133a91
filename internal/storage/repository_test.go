package storage

import (
	"context"
	"path/filepath"
	"testing"

	"tabungan/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "tabungan.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestInsertAndFetch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, core.Transaction{
		Category: core.CategoryRumah,
		Nominal:  500000,
		Note:     "cicilan",
		Date:     core.NewDate(2025, 3, 10),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero id")
	}

	items, err := repo.FetchByCategory(ctx, core.CategoryRumah)
	if err != nil {
		t.Fatalf("fetch by category: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 row, got %d", len(items))
	}
	got := items[0]
	if got.ID != id || got.Nominal != 500000 || got.Note != "cicilan" || got.Date.String() != "2025-03-10" || !got.Active {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestInsertRejectsInvalidCategory(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Insert(context.Background(), core.Transaction{
		Category: "statistik",
		Nominal:  1,
		Date:     core.NewDate(2025, 1, 1),
	})
	if err != core.ErrInvalidCategory {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestFetchAllOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older, _ := repo.Insert(ctx, core.Transaction{Category: core.CategoryRumah, Nominal: 100, Date: core.NewDate(2025, 1, 1)})
	newer, _ := repo.Insert(ctx, core.Transaction{Category: core.CategoryAnak, Nominal: 200, Date: core.NewDate(2025, 2, 1)})
	sameDay, _ := repo.Insert(ctx, core.Transaction{Category: core.CategoryHoliday, Nominal: 300, Date: core.NewDate(2025, 2, 1)})

	items, err := repo.FetchAll(ctx)
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(items))
	}
	if items[0].ID != sameDay || items[1].ID != newer || items[2].ID != older {
		t.Fatalf("unexpected order: %d %d %d", items[0].ID, items[1].ID, items[2].ID)
	}
}

func TestUpdateAndVersioning(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, _ := repo.Insert(ctx, core.Transaction{Category: core.CategoryRumah, Nominal: 100, Date: core.NewDate(2025, 1, 1)})
	if err := repo.MarkSynced(ctx, id, 1); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if pending, _ := repo.PendingSync(ctx, 10); len(pending) != 0 {
		t.Fatalf("expected no pending rows, got %+v", pending)
	}

	nominal := int64(-50000)
	note := "koreksi"
	if err := repo.Update(ctx, id, core.TransactionUpdate{Nominal: &nominal, Note: &note}); err != nil {
		t.Fatalf("update: %v", err)
	}

	tx, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if tx.Nominal != -50000 || tx.Note != "koreksi" {
		t.Fatalf("update not applied: %+v", tx)
	}

	// Update re-queues the row for sync with a bumped version.
	pending, err := repo.PendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("pending sync: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != id || pending[0].Version != 2 {
		t.Fatalf("unexpected pending rows: %+v", pending)
	}
}

func TestUpdateMissingRow(t *testing.T) {
	repo := newTestRepo(t)

	nominal := int64(1)
	err := repo.Update(context.Background(), 42, core.TransactionUpdate{Nominal: &nominal})
	if err != core.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSoftDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, _ := repo.Insert(ctx, core.Transaction{Category: core.CategoryAnak, Nominal: 100, Date: core.NewDate(2025, 1, 1)})
	if err := repo.SoftDelete(ctx, id); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if items, _ := repo.FetchAll(ctx); len(items) != 0 {
		t.Fatalf("soft-deleted row still visible: %+v", items)
	}

	// The row still exists for the sync worker, flagged inactive.
	tx, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if tx.Active {
		t.Fatal("expected inactive row")
	}

	if err := repo.SoftDelete(ctx, id); err != core.ErrNotFound {
		t.Fatalf("double delete expected ErrNotFound, got %v", err)
	}
}

func TestMarkSyncedStaleVersion(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, _ := repo.Insert(ctx, core.Transaction{Category: core.CategoryRumah, Nominal: 100, Date: core.NewDate(2025, 1, 1)})

	nominal := int64(200)
	if err := repo.Update(ctx, id, core.TransactionUpdate{Nominal: &nominal}); err != nil {
		t.Fatalf("update: %v", err)
	}

	// Acking the old version must not clear the newer pending state.
	if err := repo.MarkSynced(ctx, id, 1); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pending, _ := repo.PendingSync(ctx, 10)
	if len(pending) != 1 || pending[0].Version != 2 {
		t.Fatalf("expected version 2 still pending, got %+v", pending)
	}
}

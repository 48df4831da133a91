package services

import (
	"context"
	"errors"
	"testing"

	"tabungan/internal/core"
	"tabungan/internal/ledger/memory"
)

type fakePublisher struct {
	syncs   []int64
	deletes []int64
	fail    bool
}

func (f *fakePublisher) PublishSync(_ context.Context, id, _ int64) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.syncs = append(f.syncs, id)
	return nil
}

func (f *fakePublisher) PublishDelete(_ context.Context, id, _ int64) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.deletes = append(f.deletes, id)
	return nil
}

func TestCreatePublishesSync(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub)
	ctx := context.Background()

	id, err := svc.Create(ctx, core.Transaction{
		Category: core.CategoryRumah,
		Nominal:  500000,
		Date:     core.NewDate(2025, 3, 10),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(pub.syncs) != 1 || pub.syncs[0] != id {
		t.Fatalf("expected sync for id %d, got %+v", id, pub.syncs)
	}
}

func TestCreateValidates(t *testing.T) {
	svc := NewTransactionService(memory.New(), &fakePublisher{})

	_, err := svc.Create(context.Background(), core.Transaction{
		Category: "statistik",
		Nominal:  1,
		Date:     core.NewDate(2025, 1, 1),
	})
	if err != core.ErrInvalidCategory {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}

	_, err = svc.Create(context.Background(), core.Transaction{
		Category: core.CategoryRumah,
		Nominal:  1,
	})
	if err != core.ErrMissingDate {
		t.Fatalf("expected ErrMissingDate, got %v", err)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &fakePublisher{fail: true}
	svc := NewTransactionService(memory.New(), pub)
	ctx := context.Background()

	id, err := svc.Create(ctx, core.Transaction{
		Category: core.CategoryAnak,
		Nominal:  100,
		Date:     core.NewDate(2025, 1, 1),
	})
	if err != nil {
		t.Fatalf("create should survive publish failure, got %v", err)
	}

	// The row is persisted despite the broker being down.
	if _, err := svc.Get(ctx, id); err != nil {
		t.Fatalf("get: %v", err)
	}
}

func TestDeletePublishesDeleteMarker(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewTransactionService(memory.New(), pub)
	ctx := context.Background()

	id, _ := svc.Create(ctx, core.Transaction{
		Category: core.CategoryHoliday,
		Nominal:  100,
		Date:     core.NewDate(2025, 1, 1),
	})
	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(pub.deletes) != 1 || pub.deletes[0] != id {
		t.Fatalf("expected delete marker for id %d, got %+v", id, pub.deletes)
	}

	if err := svc.Delete(ctx, id); err != core.ErrNotFound {
		t.Fatalf("double delete expected ErrNotFound, got %v", err)
	}
}

func TestNilPublisherSkipsSync(t *testing.T) {
	svc := NewTransactionService(memory.New(), nil)
	ctx := context.Background()

	id, err := svc.Create(ctx, core.Transaction{
		Category: core.CategoryRumah,
		Nominal:  100,
		Date:     core.NewDate(2025, 1, 1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestListByCategoryRejectsInvalid(t *testing.T) {
	svc := NewTransactionService(memory.New(), nil)
	if _, err := svc.ListByCategory(context.Background(), "statistik"); err != core.ErrInvalidCategory {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

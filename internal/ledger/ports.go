package ledger

import (
	"context"

	"tabungan/internal/core"
)

// Ports for the storage collaborator. Readers return only active rows,
// ordered by date descending (newest insert first on equal dates), so the
// aggregation engine never needs to re-filter or re-sort.
type (
	TransactionWriter interface {
		Insert(ctx context.Context, tx core.Transaction) (int64, error)
	}

	TransactionReader interface {
		FetchByCategory(ctx context.Context, category core.Category) ([]core.Transaction, error)
		FetchAll(ctx context.Context) ([]core.Transaction, error)
		Get(ctx context.Context, id int64) (core.Transaction, error)
	}

	// TransactionMutator updates the mutable fields of a row or soft-deletes
	// it. Soft delete is irreversible through this interface.
	TransactionMutator interface {
		Update(ctx context.Context, id int64, upd core.TransactionUpdate) error
		SoftDelete(ctx context.Context, id int64) error
	}

	// Store is the full storage collaborator contract.
	Store interface {
		TransactionWriter
		TransactionReader
		TransactionMutator
	}
)

package export

import (
	"context"

	"tabungan/internal/core"
)

// RowWriter appends one row per transaction state to the external export
// target. The export is append-only: updates and soft deletes land as new
// rows carrying the latest state, so the sheet doubles as an audit log.
type RowWriter interface {
	Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
}

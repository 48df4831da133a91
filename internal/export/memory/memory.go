package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tabungan/internal/core"
	"tabungan/internal/export"
)

// Exporter records appended rows in memory. Used in tests and as a stand-in
// when no spreadsheet is configured.
type Exporter struct {
	mu   sync.Mutex
	rows []core.Transaction
	fail bool
}

var _ export.RowWriter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

// FailNext makes every subsequent Append return an error.
func (e *Exporter) FailNext(fail bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fail = fail
}

func (e *Exporter) Append(_ context.Context, tx core.Transaction) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.fail {
		return "", errors.New("export unavailable")
	}
	e.rows = append(e.rows, tx)
	return fmt.Sprintf("memory!A%d", len(e.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (e *Exporter) Rows() []core.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]core.Transaction, len(e.rows))
	copy(out, e.rows)
	return out
}

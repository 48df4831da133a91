// Package memory provides an in-memory ledger store. It is the default
// backend for local development and the double used by server tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"tabungan/internal/core"
	"tabungan/internal/ledger"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Transaction
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{nextID: 1}
}

// Insert stores the transaction and returns its assigned ID.
func (s *Store) Insert(_ context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = s.nextID
	tx.Active = true
	s.nextID++
	s.items = append(s.items, tx)
	return tx.ID, nil
}

func (s *Store) FetchByCategory(_ context.Context, category core.Category) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(func(tx core.Transaction) bool {
		return tx.Active && tx.Category == category
	}), nil
}

func (s *Store) FetchAll(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(func(tx core.Transaction) bool {
		return tx.Active
	}), nil
}

// Get returns a transaction regardless of its active flag, so callers can
// still load a soft-deleted row by ID.
func (s *Store) Get(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.items {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *Store) Update(_ context.Context, id int64, upd core.TransactionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID != id || !s.items[i].Active {
			continue
		}
		if upd.Nominal != nil {
			s.items[i].Nominal = *upd.Nominal
		}
		if upd.Note != nil {
			s.items[i].Note = *upd.Note
		}
		if upd.Date != nil {
			s.items[i].Date = *upd.Date
		}
		return nil
	}
	return core.ErrNotFound
}

func (s *Store) SoftDelete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id && s.items[i].Active {
			s.items[i].Active = false
			return nil
		}
	}
	return core.ErrNotFound
}

// snapshot copies matching rows sorted date descending, newest ID first on
// equal dates. Callers hold the lock.
func (s *Store) snapshot(match func(core.Transaction) bool) []core.Transaction {
	out := make([]core.Transaction, 0, len(s.items))
	for _, tx := range s.items {
		if match(tx) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

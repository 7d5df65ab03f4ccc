// Package memory is an in-process TransactionWriter used in tests and local
// runs without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"alphawealth/internal/core"
)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
	fail  error
}

func New() *Store {
	return &Store{}
}

// FailWith makes every subsequent Append return err; nil restores normal
// behavior.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, tx core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return "", s.fail
	}
	s.items = append(s.items, tx)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Items returns a copy of everything appended so far.
func (s *Store) Items() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...)
}

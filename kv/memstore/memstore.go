// Package memstore is an in-memory kv.Store, used by tests, the CLI
// harness (cmd/mrrun) running on the in-process simulated cluster, and
// single-node deployments that don't need durability across restarts.
package memstore

import (
	"bytes"
	"context"
	"sync"

	"github.com/distcol/mrengine/kv"
)

// Store is a concurrency-safe, in-memory kv.Store.
type Store struct {
	mu    sync.Mutex
	items map[string][]byte
}

var _ kv.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Store) PutIfMatch(_ context.Context, key string, newValue, oldValue []byte) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, exists := s.items[key]
	matches := (!exists && oldValue == nil) || (exists && bytes.Equal(cur, oldValue))
	if !matches {
		return false, append([]byte(nil), cur...), nil
	}
	s.items[key] = append([]byte(nil), newValue...)
	return true, append([]byte(nil), newValue...), nil
}

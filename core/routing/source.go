package routing

import (
	"context"
	"fmt"
	"sync"
)

// Source yields the latest snapshot produced by the allocation service.
type Source interface {
	Current(ctx context.Context) (*Table, error)
}

// Publisher makes a new snapshot available to Sources.
type Publisher interface {
	Publish(ctx context.Context, t *Table) error
}

// MemSource is an in-process Source and Publisher.
type MemSource struct {
	mu      sync.RWMutex
	current *Table
}

func NewMemSource() *MemSource { return &MemSource{} }

func (s *MemSource) Current(context.Context) (*Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoSnapshot
	}
	return s.current, nil
}

// Publish replaces the current snapshot. Older versions are rejected.
func (s *MemSource) Publish(_ context.Context, t *Table) error {
	if t == nil {
		return ErrNilSnapshot
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && t.Version() <= s.current.Version() {
		return fmt.Errorf("routing: publish version %d over %d: %w", t.Version(), s.current.Version(), ErrStaleSnapshot)
	}
	s.current = t
	return nil
}

var (
	_ Source    = (*MemSource)(nil)
	_ Publisher = (*MemSource)(nil)
)

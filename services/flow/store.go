package flow

import (
	"context"
	"errors"
	"sync"
)

// ErrContextNotFound is returned by a ContextStore when no context exists
// for the requested booking.
var ErrContextNotFound = errors.New("booking context not found")

// ContextStore is the injected index of booking contexts. The in-memory
// backend serves tests and single-process deployments; the redis backend
// gives the embedding application durability and TTL-based eviction.
type ContextStore interface {
	Get(ctx context.Context, bookingID string) (*BookingContext, error)
	Put(ctx context.Context, bc *BookingContext) error
	Delete(ctx context.Context, bookingID string) error
}

// InMemoryContextStore keeps contexts in a process-wide map with no
// eviction, the reference behavior.
type InMemoryContextStore struct {
	mu       sync.RWMutex
	contexts map[string]*BookingContext
}

// NewInMemoryContextStore returns an empty in-memory store.
func NewInMemoryContextStore() *InMemoryContextStore {
	return &InMemoryContextStore{contexts: make(map[string]*BookingContext)}
}

func (s *InMemoryContextStore) Get(_ context.Context, bookingID string) (*BookingContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bc, ok := s.contexts[bookingID]
	if !ok {
		return nil, ErrContextNotFound
	}
	return bc, nil
}

func (s *InMemoryContextStore) Put(_ context.Context, bc *BookingContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[bc.BookingID] = bc
	return nil
}

func (s *InMemoryContextStore) Delete(_ context.Context, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, bookingID)
	return nil
}

// Len returns the number of tracked contexts.
func (s *InMemoryContextStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contexts)
}

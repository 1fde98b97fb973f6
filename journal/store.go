package journal

import (
	"context"
	"errors"
	"sync"
)

// ErrConcurrencyConflict is returned when an append's expected version
// does not match the stream's actual version.
var ErrConcurrencyConflict = errors.New("journal: concurrency conflict")

// EventFilter selects events for ReadAll. Zero-value fields match
// everything.
type EventFilter struct {
	// StreamID restricts results to one stream.
	StreamID string

	// Types restricts results to the named event types.
	Types []string
}

func (f EventFilter) matches(e *Event) bool {
	if f.StreamID != "" && e.Stream != f.StreamID {
		return false
	}
	if len(f.Types) > 0 {
		ok := false
		for _, t := range f.Types {
			if e.Type == t {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Store persists ordered event streams.
type Store interface {
	// Append adds events to a stream. expectedVersion is the version
	// of the stream's last event, or -1 for a new stream; a mismatch
	// fails with ErrConcurrencyConflict and nothing is written.
	// Returns the stream's new version.
	Append(ctx context.Context, stream string, expectedVersion int, events []*Event) (int, error)

	// Read returns a stream's events from the given version onward,
	// in order.
	Read(ctx context.Context, stream string, fromVersion int) ([]*Event, error)

	// ReadAll returns events across streams matching the filter, in
	// global append order.
	ReadAll(ctx context.Context, filter EventFilter) ([]*Event, error)

	// StreamVersion returns the version of the stream's last event, or
	// -1 if the stream does not exist.
	StreamVersion(ctx context.Context, stream string) (int, error)

	// DeleteStream removes a stream and all its events.
	DeleteStream(ctx context.Context, stream string) error

	// Close releases store resources.
	Close() error
}

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]*Event
	order   []*Event
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		streams: make(map[string][]*Event),
	}
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, stream string, expectedVersion int, events []*Event) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.streams[stream]
	current := len(existing) - 1
	if expectedVersion != current {
		return 0, ErrConcurrencyConflict
	}

	for _, e := range events {
		e.Stream = stream
		e.Version = current + 1
		current++
		existing = append(existing, e)
		s.order = append(s.order, e)
	}
	s.streams[stream] = existing
	return current, nil
}

// Read implements Store.
func (s *MemoryStore) Read(ctx context.Context, stream string, fromVersion int) ([]*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for _, e := range s.streams[stream] {
		if e.Version >= fromVersion {
			out = append(out, e)
		}
	}
	return out, nil
}

// ReadAll implements Store.
func (s *MemoryStore) ReadAll(ctx context.Context, filter EventFilter) ([]*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for _, e := range s.order {
		if filter.matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// StreamVersion implements Store.
func (s *MemoryStore) StreamVersion(ctx context.Context, stream string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.streams[stream]) - 1, nil
}

// DeleteStream implements Store.
func (s *MemoryStore) DeleteStream(ctx context.Context, stream string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.streams, stream)
	kept := s.order[:0]
	for _, e := range s.order {
		if e.Stream != stream {
			kept = append(kept, e)
		}
	}
	s.order = kept
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)

// Package store provides the bounded, newest-first rolling event store.
// One ring buffer per tracking key; the cap bounds memory, eviction is
// strictly of the oldest entries.
package store

import "tickflash/internal/domain"

// Store maps tracking keys to capped, newest-first event sequences.
// Keys are created lazily on first append and never proactively deleted;
// memory is bounded by the cap, not by key count.
//
// Store is not safe for concurrent use; the engine serializes access.
type Store struct {
	cap   int
	rings map[string]*ring
}

// New creates a store with the given per-key cap.
func New(capacity int) *Store {
	if capacity <= 0 {
		panic("store capacity must be positive")
	}
	return &Store{cap: capacity, rings: make(map[string]*ring)}
}

// Cap returns the per-key cap.
func (s *Store) Cap() int {
	return s.cap
}

// Append inserts an event at the head of the key's sequence, evicting
// the oldest entry once the cap is reached. O(1).
func (s *Store) Append(key string, ev domain.TickEvent) {
	r, ok := s.rings[key]
	if !ok {
		r = newRing(s.cap)
		s.rings[key] = r
	}
	r.push(ev)
}

// Events returns the current newest-first sequence for a key as a fresh
// slice the caller may keep; appends never reorder what was read.
func (s *Store) Events(key string) []domain.TickEvent {
	r, ok := s.rings[key]
	if !ok {
		return nil
	}
	return r.snapshot()
}

// Len returns the number of events held for a key.
func (s *Store) Len(key string) int {
	r, ok := s.rings[key]
	if !ok {
		return 0
	}
	return r.n
}

// Clear drops the history for one key.
func (s *Store) Clear(key string) {
	delete(s.rings, key)
}

// ClearAll drops all history. Used when the tracked instrument or
// provider changes so stale prints cannot linger in the view.
func (s *Store) ClearAll() {
	s.rings = make(map[string]*ring)
}

// ring is a fixed-capacity buffer with the newest element at head.
type ring struct {
	buf  []domain.TickEvent
	head int // index of newest element
	n    int // elements held
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]domain.TickEvent, capacity)}
}

func (r *ring) push(ev domain.TickEvent) {
	r.head = (r.head - 1 + len(r.buf)) % len(r.buf)
	r.buf[r.head] = ev
	if r.n < len(r.buf) {
		r.n++
	}
}

func (r *ring) snapshot() []domain.TickEvent {
	out := make([]domain.TickEvent, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

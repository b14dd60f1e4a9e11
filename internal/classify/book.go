package classify

import "tickflash/internal/domain"

// BookCache holds the most recently observed bid/ask per tracking key.
// Last write wins, sides update independently, and no history is kept.
// Not safe for concurrent use; the engine event loop is its only caller.
type BookCache struct {
	books map[string]domain.BookSnapshot
}

// NewBookCache creates an empty book cache.
func NewBookCache() *BookCache {
	return &BookCache{books: make(map[string]domain.BookSnapshot)}
}

// Update merges newly observed levels into the key's snapshot. A nil
// side leaves the previously cached value in place.
func (b *BookCache) Update(key string, bid, ask *float64) {
	snap := b.books[key]
	if bid != nil {
		snap.Bid = bid
	}
	if ask != nil {
		snap.Ask = ask
	}
	b.books[key] = snap
}

// Get returns the current snapshot for a key, zero value when none.
func (b *BookCache) Get(key string) domain.BookSnapshot {
	return b.books[key]
}

// Reset drops all cached snapshots.
func (b *BookCache) Reset() {
	b.books = make(map[string]domain.BookSnapshot)
}

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tickflash/internal/domain"
)

func TestEdge_ExactMatches(t *testing.T) {
	book := domain.BookSnapshot{Bid: f64(100.25), Ask: f64(100.27)}

	assert.Equal(t, domain.EdgeBid, Edge(100.25, book))
	assert.Equal(t, domain.EdgeAsk, Edge(100.27, book))
}

func TestEdge_BetweenQuotes(t *testing.T) {
	book := domain.BookSnapshot{Bid: f64(100.25), Ask: f64(100.27)}
	assert.Equal(t, domain.EdgeNone, Edge(100.26, book))
}

func TestEdge_OutsideQuotes(t *testing.T) {
	book := domain.BookSnapshot{Bid: f64(100.25), Ask: f64(100.27)}
	assert.Equal(t, domain.EdgeNone, Edge(100.10, book))
	assert.Equal(t, domain.EdgeNone, Edge(100.40, book))
}

func TestEdge_ToleranceAbsorbsFloatNoise(t *testing.T) {
	// eps = max(1e-6, min(bid,ask)*1e-6); a price within it still counts.
	book := domain.BookSnapshot{Bid: f64(100.0), Ask: f64(101.0)}
	assert.Equal(t, domain.EdgeBid, Edge(100.0+5e-5, book))
	assert.Equal(t, domain.EdgeAsk, Edge(101.0-5e-5, book))
}

func TestEdge_IncompleteBookNeverGuesses(t *testing.T) {
	assert.Equal(t, domain.EdgeNone, Edge(100.0, domain.BookSnapshot{}))
	assert.Equal(t, domain.EdgeNone, Edge(100.0, domain.BookSnapshot{Bid: f64(100.0)}))
	assert.Equal(t, domain.EdgeNone, Edge(100.0, domain.BookSnapshot{Ask: f64(100.0)}))
}

func TestEdgeWithOverride_ExplicitLevelsWin(t *testing.T) {
	cached := domain.BookSnapshot{Bid: f64(99.0), Ask: f64(100.0)}

	// Explicit levels on the event beat the cached snapshot.
	edge := EdgeWithOverride(101.0, f64(100.5), f64(101.0), cached)
	assert.Equal(t, domain.EdgeAsk, edge)

	// A single explicit side merges with the cached other side.
	edge = EdgeWithOverride(99.5, f64(99.5), nil, cached)
	assert.Equal(t, domain.EdgeBid, edge)

	// No explicit levels: cached snapshot applies unchanged.
	edge = EdgeWithOverride(99.0, nil, nil, cached)
	assert.Equal(t, domain.EdgeBid, edge)
}

func TestBookCache_LastWriteWins(t *testing.T) {
	b := NewBookCache()

	b.Update("SPY", f64(100.0), nil)
	assert.Equal(t, domain.BookSnapshot{Bid: f64(100.0)}, b.Get("SPY"))

	// Ask arrives separately; bid survives.
	b.Update("SPY", nil, f64(100.1))
	snap := b.Get("SPY")
	assert.Equal(t, 100.0, *snap.Bid)
	assert.Equal(t, 100.1, *snap.Ask)

	b.Update("SPY", f64(100.05), nil)
	assert.Equal(t, 100.05, *b.Get("SPY").Bid)

	b.Reset()
	assert.Equal(t, domain.BookSnapshot{}, b.Get("SPY"))
}

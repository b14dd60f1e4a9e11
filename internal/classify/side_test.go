package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tickflash/internal/domain"
)

func f64(v float64) *float64 { return &v }

func TestClassify_ExplicitLabelWins(t *testing.T) {
	c := NewSideClassifier()

	// Seed book and last-price state that would both say SELL.
	c.Classify("SPY", 100.0, "", domain.BookSnapshot{})
	book := domain.BookSnapshot{Bid: f64(98.0), Ask: f64(99.0)}

	// Upstream label must be used verbatim regardless of book or memory.
	side, src := c.Classify("SPY", 90.0, domain.SideBuy, book)
	assert.Equal(t, domain.SideBuy, side)
	assert.Equal(t, domain.SideSourceMid, src)
}

func TestClassify_UnknownLabelStillShortCircuits(t *testing.T) {
	c := NewSideClassifier()
	c.Classify("SPY", 100.0, "", domain.BookSnapshot{})

	// An upstream UNKNOWN is a label too; the cascade must not second-guess it.
	side, src := c.Classify("SPY", 101.0, domain.SideUnknown, domain.BookSnapshot{})
	assert.Equal(t, domain.SideUnknown, side)
	assert.Equal(t, domain.SideSourceMid, src)
}

func TestClassify_Midpoint(t *testing.T) {
	book := domain.BookSnapshot{Bid: f64(10.0), Ask: f64(11.0)}

	c := NewSideClassifier()
	side, src := c.Classify("SPY", 10.8, "", book)
	assert.Equal(t, domain.SideBuy, side)
	assert.Equal(t, domain.SideSourceTick, src)

	side, src = c.Classify("SPY", 10.2, "", book)
	assert.Equal(t, domain.SideSell, side)
	assert.Equal(t, domain.SideSourceTick, src)

	// Exactly at midpoint: book was consulted but indecisive.
	side, src = c.Classify("SPY", 10.5, "", book)
	assert.Equal(t, domain.SideUnknown, side)
	assert.Equal(t, domain.SideSourceTick, src)
}

func TestClassify_IncompleteBookFallsThrough(t *testing.T) {
	c := NewSideClassifier()
	c.Classify("SPY", 10.0, "", domain.BookSnapshot{})

	// Bid only: midpoint unavailable, uptick rule applies.
	side, src := c.Classify("SPY", 10.5, "", domain.BookSnapshot{Bid: f64(10.0)})
	assert.Equal(t, domain.SideBuy, side)
	assert.Equal(t, domain.SideSourceUptick, src)
}

func TestClassify_UptickRule(t *testing.T) {
	c := NewSideClassifier()

	// No prior price: unresolved.
	side, src := c.Classify("AAA", 10.0, "", domain.BookSnapshot{})
	assert.Equal(t, domain.SideUnknown, side)
	assert.Equal(t, domain.SideSourceNone, src)

	side, src = c.Classify("AAA", 11.0, "", domain.BookSnapshot{})
	assert.Equal(t, domain.SideBuy, side)
	assert.Equal(t, domain.SideSourceUptick, src)

	side, src = c.Classify("AAA", 10.5, "", domain.BookSnapshot{})
	assert.Equal(t, domain.SideSell, side)
	assert.Equal(t, domain.SideSourceUptick, src)

	// Equal price does not resolve.
	side, src = c.Classify("AAA", 10.5, "", domain.BookSnapshot{})
	assert.Equal(t, domain.SideUnknown, side)
	assert.Equal(t, domain.SideSourceNone, src)
}

func TestClassify_MemoryUpdatedOnEveryStep(t *testing.T) {
	c := NewSideClassifier()

	// Resolved by label, but the price must still enter uptick memory.
	c.Classify("SPY", 50.0, domain.SideSell, domain.BookSnapshot{})

	side, src := c.Classify("SPY", 51.0, "", domain.BookSnapshot{})
	assert.Equal(t, domain.SideBuy, side)
	assert.Equal(t, domain.SideSourceUptick, src)

	// Resolved by midpoint: same rule.
	book := domain.BookSnapshot{Bid: f64(51.0), Ask: f64(53.0)}
	c.Classify("SPY", 52.5, "", book)

	side, _ = c.Classify("SPY", 52.0, "", domain.BookSnapshot{})
	assert.Equal(t, domain.SideSell, side)
}

func TestClassify_KeysAreIndependent(t *testing.T) {
	c := NewSideClassifier()
	c.Classify("AAA", 10.0, "", domain.BookSnapshot{})

	side, src := c.Classify("BBB", 11.0, "", domain.BookSnapshot{})
	assert.Equal(t, domain.SideUnknown, side)
	assert.Equal(t, domain.SideSourceNone, src)
}

func TestReset_ClearsMemory(t *testing.T) {
	c := NewSideClassifier()
	c.Classify("SPY", 10.0, "", domain.BookSnapshot{})
	c.Reset()

	_, ok := c.LastPrice("SPY")
	assert.False(t, ok)

	side, src := c.Classify("SPY", 11.0, "", domain.BookSnapshot{})
	assert.Equal(t, domain.SideUnknown, side)
	assert.Equal(t, domain.SideSourceNone, src)
}

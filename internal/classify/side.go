// Package classify infers the aggressor side, edge-of-book placement,
// and open/close lean of trade prints. All of it is documented
// best-effort heuristics with a fixed precedence of evidence, not
// ground truth.
package classify

import "tickflash/internal/domain"

// SideClassifier decides BUY/SELL/UNKNOWN for a print, with a defined
// precedence of evidence sources:
//
//  1. a side label already carried on the upstream message (MID),
//  2. comparison against the cached book midpoint (TICK),
//  3. the uptick rule against the last trade price for the key (UPTICK),
//  4. unresolved (NONE).
//
// The classifier keeps per-key last-trade-price memory. It is not safe
// for concurrent use; the engine event loop is its only caller.
type SideClassifier struct {
	lastPrice map[string]float64
}

// NewSideClassifier creates a classifier with empty last-price memory.
func NewSideClassifier() *SideClassifier {
	return &SideClassifier{lastPrice: make(map[string]float64)}
}

// Classify returns the side and its provenance for a print.
//
// label is the upstream-carried side, domain.Side("") when absent; an
// upstream UNKNOWN label is still a label and short-circuits the
// cascade. The last-price memory is updated for every call, whichever
// step resolves, so later uptick comparisons track every observed print.
func (c *SideClassifier) Classify(key string, price float64, label domain.Side, book domain.BookSnapshot) (domain.Side, domain.SideSource) {
	prev, hasPrev := c.lastPrice[key]
	c.lastPrice[key] = price

	if label != "" {
		return label, domain.SideSourceMid
	}

	if book.Complete() {
		mid := (*book.Bid + *book.Ask) / 2
		switch {
		case price > mid:
			return domain.SideBuy, domain.SideSourceTick
		case price < mid:
			return domain.SideSell, domain.SideSourceTick
		default:
			// Book was consulted but indecisive.
			return domain.SideUnknown, domain.SideSourceTick
		}
	}

	if hasPrev {
		if price > prev {
			return domain.SideBuy, domain.SideSourceUptick
		}
		if price < prev {
			return domain.SideSell, domain.SideSourceUptick
		}
		// Equal price does not resolve; fall through to NONE.
	}

	return domain.SideUnknown, domain.SideSourceNone
}

// LastPrice returns the remembered last trade price for a key.
func (c *SideClassifier) LastPrice(key string) (float64, bool) {
	p, ok := c.lastPrice[key]
	return p, ok
}

// Reset drops all last-price memory. Called when the tracked instrument
// or provider changes so state from the previous subscription cannot
// leak into the new one.
func (c *SideClassifier) Reset() {
	c.lastPrice = make(map[string]float64)
}

package classify

import (
	"math"

	"tickflash/internal/domain"
)

// Edge decides whether a print landed at the inside bid or ask. Both
// sides must be known, otherwise no label is ever guessed. The tolerance
// absorbs floating-point noise, not real spread.
func Edge(price float64, book domain.BookSnapshot) domain.Edge {
	if !book.Complete() {
		return domain.EdgeNone
	}
	bid, ask := *book.Bid, *book.Ask

	eps := math.Max(1e-6, math.Min(bid, ask)*1e-6)
	if math.Abs(price-bid) <= eps {
		return domain.EdgeBid
	}
	if math.Abs(price-ask) <= eps {
		return domain.EdgeAsk
	}
	return domain.EdgeNone
}

// EdgeWithOverride classifies against bid/ask carried on the event
// itself when present, falling back to the cached snapshot otherwise.
// Explicit levels take precedence side by side: an event may carry only
// one of the two.
func EdgeWithOverride(price float64, explicitBid, explicitAsk *float64, cached domain.BookSnapshot) domain.Edge {
	book := cached
	if explicitBid != nil {
		book.Bid = explicitBid
	}
	if explicitAsk != nil {
		book.Ask = explicitAsk
	}
	return Edge(price, book)
}

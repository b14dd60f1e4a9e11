// Package delta derives rolling per-second net buy/sell pressure from a
// filtered view of the event store. Everything here is a pure projection
// recomputed on read; nothing is updated incrementally, so filter
// changes need no invalidation path.
package delta

import (
	"sort"

	"tickflash/internal/domain"
)

// DefaultBucketLimit caps how many most-recent seconds a series returns.
// Display concern, not correctness.
const DefaultBucketLimit = 12

// Filter is the user-chosen view over an event sequence.
type Filter struct {
	MinQuantity int64 // drop prints smaller than this
	HideUnknown bool  // drop prints with unresolved side
	EdgesOnly   bool  // keep only prints at the inside bid/ask
}

// Apply returns the events passing the filter, preserving order.
func Apply(events []domain.TickEvent, f Filter) []domain.TickEvent {
	out := make([]domain.TickEvent, 0, len(events))
	for _, ev := range events {
		if ev.Quantity < f.MinQuantity {
			continue
		}
		if f.HideUnknown && (ev.Side == domain.SideUnknown || ev.SideSource == domain.SideSourceNone) {
			continue
		}
		if f.EdgesOnly && ev.Edge == domain.EdgeNone {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Bucket is one whole second of accumulated signed quantity.
type Bucket struct {
	Second int64 // whole-second timestamp, floor(ts/1000)
	Buy    int64 // total BUY quantity
	Sell   int64 // total SELL quantity
	Net    int64 // Buy - Sell; UNKNOWN contributes nothing
}

// Series groups a filtered sequence by event second and sums signed
// quantity per bucket: +qty for BUY, -qty for SELL, 0 for UNKNOWN.
// Buckets come back sorted descending by time, truncated to limit
// (DefaultBucketLimit when limit <= 0).
func Series(events []domain.TickEvent, limit int) []Bucket {
	if limit <= 0 {
		limit = DefaultBucketLimit
	}

	bySecond := make(map[int64]*Bucket)
	for _, ev := range events {
		sec := ev.Timestamp / 1000
		b, ok := bySecond[sec]
		if !ok {
			b = &Bucket{Second: sec}
			bySecond[sec] = b
		}
		switch ev.Side {
		case domain.SideBuy:
			b.Buy += ev.Quantity
		case domain.SideSell:
			b.Sell += ev.Quantity
		}
	}

	out := make([]Bucket, 0, len(bySecond))
	for _, b := range bySecond {
		b.Net = b.Buy - b.Sell
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Second > out[j].Second })

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Biggest returns the n largest prints by quantity from a filtered
// sequence, largest first. Ties keep the input (newest-first) order.
func Biggest(events []domain.TickEvent, n int) []domain.TickEvent {
	if n <= 0 || len(events) == 0 {
		return nil
	}
	out := make([]domain.TickEvent, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

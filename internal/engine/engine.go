// Package engine owns all per-subscription state: book snapshots,
// last-price memory, and the rolling event store. One goroutine
// processes inbound stream messages in arrival order; every exported
// read is a non-blocking snapshot of the latest processed event.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"tickflash/internal/classify"
	"tickflash/internal/delta"
	"tickflash/internal/domain"
	"tickflash/internal/observability"
	"tickflash/internal/occ"
	"tickflash/internal/store"
	"tickflash/internal/stream"
)

// DefaultCap bounds per-key history when no cap is configured.
const DefaultCap = 800

// optionMultiplier converts option contracts to notional shares.
var optionMultiplier = decimal.NewFromInt(100)

// Options configure an Engine.
type Options struct {
	// Cap is the per-key rolling history bound.
	Cap int
	// Logger for engine events.
	Logger zerolog.Logger
	// Now supplies event receive time; wall clock when nil.
	Now func() time.Time
}

// Engine is the real-time tick classification and bounded aggregation
// core. Mutation happens only on the goroutine driving Run/Process;
// reads are serialized behind the same mutex and never block ingestion
// for longer than a snapshot copy.
type Engine struct {
	logger zerolog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	log   *store.Store
	sides *classify.SideClassifier
	books *classify.BookCache
	seq   uint64
	subs  map[string][]chan struct{}
}

// New creates an engine with empty state.
func New(opts Options) *Engine {
	capacity := opts.Cap
	if capacity <= 0 {
		capacity = DefaultCap
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		logger: opts.Logger.With().Str("component", "engine").Logger(),
		now:    now,
		log:    store.New(capacity),
		sides:  classify.NewSideClassifier(),
		books:  classify.NewBookCache(),
		subs:   make(map[string][]chan struct{}),
	}
}

// Run consumes the stream until the channel closes or ctx is done.
// It is the engine's single event-processing task.
func (e *Engine) Run(ctx context.Context, msgs <-chan *stream.Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-msgs:
			if !ok {
				return nil
			}
			e.Process(m)
		}
	}
}

// Process handles one inbound message. It must only be called from a
// single goroutine; the uptick memory depends on in-order processing.
func (e *Engine) Process(m *stream.Message) {
	if m == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch m.Type {
	case stream.TypeQuotes:
		e.handleQuote(m)
	case stream.TypeEquityTS, stream.TypeTrade:
		e.handleEquity(m)
	case stream.TypeOptionTS:
		e.handleOption(m)
	default:
		// Forward-compatible message types are ignored.
	}
}

// handleQuote refreshes the book snapshot and synthesizes a tick event
// when the feed echoes trade-like last/size fields on the quote.
func (e *Engine) handleQuote(m *stream.Message) {
	q := m.Quote
	if q == nil {
		return
	}
	observability.RecordEventProcessed(stream.TypeQuotes)

	sym := q.Symbol
	if sym == "" {
		sym = m.Symbol
	}
	if sym == "" {
		return
	}

	if q.Bid != nil || q.Ask != nil {
		e.books.Update(sym, q.Bid, q.Ask)
		observability.RecordBookUpdate()
	}

	if q.Last == nil || q.Size == nil {
		return
	}
	price, qty := *q.Last, *q.Size
	if price <= 0 || qty <= 0 {
		// Quote without a usable trade echo; nothing to record.
		return
	}

	key := occ.Root(sym)

	side, src := e.sides.Classify(sym, price, wireSide(m.Side), e.books.Get(sym))
	edge := classify.Edge(price, e.books.Get(sym))

	ts := e.now().UnixMilli()
	if q.TradeTime != nil && *q.TradeTime > 0 {
		ts = *q.TradeTime
	}

	e.append(domain.TickEvent{
		ID:         e.nextID(),
		Key:        key,
		Timestamp:  ts,
		Price:      price,
		Quantity:   qty,
		Notional:   notional(price, qty, false),
		Side:       side,
		SideSource: src,
		Edge:       edge,
		Provider:   m.Provider,
		RawTime:    q.Time,
	})
}

// handleEquity classifies and stores one equity trade print.
func (e *Engine) handleEquity(m *stream.Message) {
	d := m.Equity
	if d == nil || m.Symbol == "" {
		return
	}
	observability.RecordEventProcessed(stream.TypeEquityTS)

	price, qty := d.PriceQty()
	if price <= 0 || qty <= 0 {
		observability.RecordMalformedEvent()
		return
	}

	key := m.Symbol

	side, src := e.sides.Classify(key, price, wireSide(d.Side), e.books.Get(key))

	// Explicit levels on the print beat the cached snapshot.
	bid, ask := d.Bid, d.Ask
	if d.Book != nil {
		if bid == nil {
			bid = d.Book.Bid
		}
		if ask == nil {
			ask = d.Book.Ask
		}
	}
	edge := classify.EdgeWithOverride(price, bid, ask, e.books.Get(key))

	e.append(domain.TickEvent{
		ID:         e.nextID(),
		Key:        key,
		Timestamp:  e.now().UnixMilli(),
		Price:      price,
		Quantity:   qty,
		Notional:   notional(price, qty, false),
		Side:       side,
		SideSource: src,
		Edge:       edge,
		Provider:   m.Provider,
		RawTime:    d.Time,
	})
}

// handleOption classifies and stores one option trade print, grouped
// under its underlying root. An identifier that fails to decode stays
// an opaque key rather than being dropped.
func (e *Engine) handleOption(m *stream.Message) {
	d := m.Option
	if d == nil || m.Symbol == "" {
		return
	}
	observability.RecordEventProcessed(stream.TypeOptionTS)

	if d.Price <= 0 || d.Qty <= 0 {
		observability.RecordMalformedEvent()
		return
	}

	key := m.Symbol
	var contract *domain.Contract
	if c, err := occ.ParseSymbol(m.Symbol); err == nil {
		key = c.Root
		contract = &c
	} else {
		observability.RecordUnparsableSymbol()
		if d.Option != nil {
			// Feed-supplied descriptor as fallback for display.
			contract = &domain.Contract{
				Root:   m.Symbol,
				Expiry: d.Option.Expiry,
				Right:  domain.Right(d.Option.Right),
				Strike: decimal.NewFromFloat(d.Option.Strike),
			}
		}
	}

	// Book context rides on the print itself for options.
	if d.Book != nil && (d.Book.Bid != nil || d.Book.Ask != nil) {
		e.books.Update(m.Symbol, d.Book.Bid, d.Book.Ask)
		observability.RecordBookUpdate()
	}

	// Side memory is per contract, not per root: prints on different
	// strikes must not feed each other's uptick comparisons.
	side, src := e.sides.Classify(m.Symbol, d.Price, wireSide(d.Side), e.books.Get(m.Symbol))
	edge := classify.Edge(d.Price, e.books.Get(m.Symbol))
	action, conf := classify.Action(side, d.Qty, d.OI, d.PriorVol)

	ts := d.TS
	if ts <= 0 {
		ts = e.now().UnixMilli()
	}

	e.append(domain.TickEvent{
		ID:           e.nextID(),
		Key:          key,
		Timestamp:    ts,
		Price:        d.Price,
		Quantity:     d.Qty,
		Notional:     notional(d.Price, d.Qty, true),
		Side:         side,
		SideSource:   src,
		Edge:         edge,
		Provider:     m.Provider,
		Contract:     contract,
		OpenInterest: d.OI,
		PriorVolume:  d.PriorVol,
		Action:       action,
		ActionConf:   conf,
	})
}

// append stores an event and notifies subscribers. Caller holds e.mu.
func (e *Engine) append(ev domain.TickEvent) {
	e.log.Append(ev.Key, ev)
	e.notify(ev.Key)
	e.notify("")
}

// Events returns the newest-first history for a key.
func (e *Engine) Events(key string) []domain.TickEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.log.Events(key)
}

// NetDelta returns the per-second net delta series for a key's filtered
// history, recomputed from scratch on every call.
func (e *Engine) NetDelta(key string, f delta.Filter, limit int) []delta.Bucket {
	e.mu.RLock()
	events := e.log.Events(key)
	e.mu.RUnlock()
	return delta.Series(delta.Apply(events, f), limit)
}

// Biggest returns the n largest filtered prints for a key.
func (e *Engine) Biggest(key string, f delta.Filter, n int) []domain.TickEvent {
	e.mu.RLock()
	events := e.log.Events(key)
	e.mu.RUnlock()
	return delta.Biggest(delta.Apply(events, f), n)
}

// Book returns the cached snapshot for a key.
func (e *Engine) Book(key string) domain.BookSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.books.Get(key)
}

// Subscribe returns a channel that receives a coalesced signal whenever
// the key's history changes; key "" signals on every event. Sends never
// block ingestion, so consumers read the latest state via Events after
// each signal rather than counting signals.
func (e *Engine) Subscribe(key string) <-chan struct{} {
	ch := make(chan struct{}, 1)
	e.mu.Lock()
	e.subs[key] = append(e.subs[key], ch)
	e.mu.Unlock()
	return ch
}

// notify signals subscribers for a key. Caller holds e.mu.
func (e *Engine) notify(key string) {
	for _, ch := range e.subs[key] {
		select {
		case ch <- struct{}{}:
		default:
			// Subscriber already has a pending signal.
		}
	}
}

// Reset drops all history, last-price memory, and book snapshots. Wired
// into the subscription coordinator so a new subscription starts clean.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log.ClearAll()
	e.sides.Reset()
	e.books.Reset()
	e.logger.Debug().Msg("engine state cleared for re-subscription")
}

// nextID allocates a per-connection event id. Caller holds e.mu.
func (e *Engine) nextID() string {
	e.seq++
	return fmt.Sprintf("tick_%d", e.seq)
}

// wireSide maps a feed side tag to a domain side label. An empty tag
// means no label; any unrecognized non-empty tag, such as the feed's
// em-dash placeholder, is an explicit UNKNOWN label.
func wireSide(s string) domain.Side {
	switch s {
	case "":
		return ""
	case "BOT":
		return domain.SideBuy
	case "SLD":
		return domain.SideSell
	default:
		return domain.SideUnknown
	}
}

// notional computes price * quantity * multiplier exactly before
// rounding back to float for display.
func notional(price float64, qty int64, option bool) float64 {
	n := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(qty))
	if option {
		n = n.Mul(optionMultiplier)
	}
	f, _ := n.Float64()
	return f
}

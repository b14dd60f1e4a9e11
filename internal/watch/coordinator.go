package watch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tickflash/internal/domain"
	"tickflash/internal/observability"
)

// State of the coordinator's per-session machine.
type State string

const (
	// StateIdle: no request pending; also the landing state after a
	// failed request, which is never retried automatically.
	StateIdle State = "idle"
	// StateRequesting: an intent change is debouncing or in flight.
	StateRequesting State = "requesting"
	// StateActive: the latest request was confirmed by the server.
	StateActive State = "active"
)

// DefaultDebounce coalesces rapid successive intent changes, e.g. a
// user retyping a ticker, into one outbound request.
const DefaultDebounce = 350 * time.Millisecond

// Options tune coordinator behavior.
type Options struct {
	// Debounce is the coalescing window for intent changes.
	Debounce time.Duration
	// RequestTimeout bounds each outbound watch request.
	RequestTimeout time.Duration
	// OnReset runs when a request is issued for a changed instrument or
	// provider, before the request goes out. It must clear all cached
	// per-key state so nothing leaks across subscriptions.
	OnReset func()
	// Logger for coordinator events.
	Logger zerolog.Logger
}

// Coordinator translates user intent into outbound watch requests and
// reconciles the provider the server actually activated against the one
// requested. Requests are debounced and tagged with a monotonic
// sequence number; only the response matching the latest sequence is
// ever applied, so a superseded in-flight request cannot touch state.
type Coordinator struct {
	client  Client
	logger  zerolog.Logger
	window  time.Duration
	timeout time.Duration
	onReset func()

	mu        sync.Mutex
	intent    domain.Intent
	hasIntent bool
	env       domain.Environment
	state     State
	seq       uint64 // latest issued request sequence
	dirty     bool   // instruments/provider changed since last issue
	timer     *time.Timer
	closed    bool
	inflight  sync.WaitGroup
}

// NewCoordinator creates a coordinator in the Idle state with an
// unknown confirmed environment.
func NewCoordinator(client Client, opts Options) *Coordinator {
	window := opts.Debounce
	if window <= 0 {
		window = DefaultDebounce
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Coordinator{
		client:  client,
		logger:  opts.Logger.With().Str("component", "watch").Logger(),
		window:  window,
		timeout: timeout,
		onReset: opts.OnReset,
		env:     domain.UnknownEnvironment(),
		state:   StateIdle,
	}
}

// SetIntent records the user's current intent and (re)arms the debounce
// timer. Rapid successive calls collapse into one request carrying the
// last intent seen.
func (c *Coordinator) SetIntent(intent domain.Intent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	if !c.hasIntent || !intent.KeyFieldsEqual(c.intent) {
		c.dirty = true
	}
	c.intent = intent
	c.hasIntent = true
	c.state = StateRequesting

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.window, c.fire)
}

// fire issues one watch request carrying the full current intent.
func (c *Coordinator) fire() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	intent := c.intent
	if c.dirty {
		// Stale prints, last-price memory, and book snapshots from the
		// previous subscription must never leak into the new one.
		if c.onReset != nil {
			c.onReset()
		}
		c.dirty = false
	}

	c.seq++
	seq := c.seq
	c.inflight.Add(1)
	c.mu.Unlock()

	defer c.inflight.Done()

	observability.RecordWatchRequest()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	resp, err := c.client.StartWatch(ctx, intent)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		// A newer request has been issued; this response is superseded.
		observability.RecordStaleResponse()
		c.logger.Debug().Uint64("seq", seq).Uint64("latest", c.seq).Msg("discarding stale watch response")
		return
	}

	if err != nil {
		observability.RecordWatchFailure()
		c.env = domain.UnknownEnvironment()
		c.state = StateIdle
		c.logger.Warn().Err(err).Str("provider", intent.Provider).Msg("watch request failed")
		return
	}

	provider := resp.Provider
	if provider == "" {
		provider = domain.ProviderUnknown
	}
	c.env = domain.Environment{Provider: provider, Raw: resp.Env}
	c.state = StateActive

	if provider != intent.Provider {
		// Observable discrepancy, never coerced to match the request.
		c.logger.Info().
			Str("requested", intent.Provider).
			Str("active", provider).
			Msg("server activated a different provider")
	}
}

// Env returns the confirmed environment as last reported by the server.
func (c *Coordinator) Env() domain.Environment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.env
}

// State returns the current coordinator state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Intent returns the most recently set intent.
func (c *Coordinator) Intent() domain.Intent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.intent
}

// Close stops the debounce timer and waits for any in-flight request to
// settle. Further SetIntent calls are ignored.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()
	c.inflight.Wait()
}

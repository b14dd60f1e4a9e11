package watch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickflash/internal/domain"
)

// fakeClient records StartWatch calls and answers from a script.
type fakeClient struct {
	mu      sync.Mutex
	calls   []domain.Intent
	respond func(intent domain.Intent) (*StartWatchResponse, error)
	gate    chan struct{} // when non-nil, StartWatch blocks until closed
}

func (f *fakeClient) StartWatch(ctx context.Context, intent domain.Intent) (*StartWatchResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, intent)
	gate := f.gate
	f.gate = nil // only the first call blocks
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if f.respond != nil {
		return f.respond(intent)
	}
	return &StartWatchResponse{OK: true, Provider: intent.Provider}, nil
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeClient) lastCall() domain.Intent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func newTestCoordinator(client Client, onReset func()) *Coordinator {
	return NewCoordinator(client, Options{
		Debounce:       20 * time.Millisecond,
		RequestTimeout: time.Second,
		OnReset:        onReset,
		Logger:         zerolog.Nop(),
	})
}

func intentFor(symbol, provider string) domain.Intent {
	return domain.Intent{
		Instruments:       []string{symbol},
		EquityInstruments: []string{symbol},
		Provider:          provider,
		Moneyness:         0.25,
		BackfillDepth:     10,
		Limit:             200,
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestCoordinator_DebounceCoalesces(t *testing.T) {
	client := &fakeClient{}
	c := newTestCoordinator(client, nil)
	defer c.Close()

	// Three changes within the window: exactly one request, carrying the
	// parameters of the last change.
	c.SetIntent(intentFor("N", "tradier"))
	c.SetIntent(intentFor("NV", "tradier"))
	c.SetIntent(intentFor("NVDA", "tradier"))

	waitFor(t, func() bool { return c.State() == StateActive })

	assert.Equal(t, 1, client.callCount())
	assert.Equal(t, []string{"NVDA"}, client.lastCall().Instruments)
}

func TestCoordinator_StateTransitions(t *testing.T) {
	client := &fakeClient{}
	c := newTestCoordinator(client, nil)
	defer c.Close()

	assert.Equal(t, StateIdle, c.State())

	c.SetIntent(intentFor("SPY", "tradier"))
	assert.Equal(t, StateRequesting, c.State())

	waitFor(t, func() bool { return c.State() == StateActive })

	// Any further intent change re-enters Requesting.
	c.SetIntent(intentFor("QQQ", "tradier"))
	assert.Equal(t, StateRequesting, c.State())
}

func TestCoordinator_ProviderDiscrepancyIsKept(t *testing.T) {
	client := &fakeClient{
		respond: func(domain.Intent) (*StartWatchResponse, error) {
			return &StartWatchResponse{OK: true, Provider: "tradier", Env: json.RawMessage(`{"sandbox":true}`)}, nil
		},
	}
	c := newTestCoordinator(client, nil)
	defer c.Close()

	c.SetIntent(intentFor("SPY", "alpaca"))
	waitFor(t, func() bool { return c.State() == StateActive })

	// Requested alpaca, server says tradier: the server's value wins.
	env := c.Env()
	assert.Equal(t, "tradier", env.Provider)
	assert.JSONEq(t, `{"sandbox":true}`, string(env.Raw))
	assert.Equal(t, "alpaca", c.Intent().Provider)
}

func TestCoordinator_FailureYieldsUnknownEnv(t *testing.T) {
	client := &fakeClient{
		respond: func(domain.Intent) (*StartWatchResponse, error) {
			return nil, errors.New("connection refused")
		},
	}
	c := newTestCoordinator(client, nil)
	defer c.Close()

	c.SetIntent(intentFor("SPY", "tradier"))
	waitFor(t, func() bool { return c.State() == StateIdle })

	assert.Equal(t, domain.ProviderUnknown, c.Env().Provider)
	// Intent survives the failure so the user can re-trigger it.
	assert.Equal(t, []string{"SPY"}, c.Intent().Instruments)
	// No automatic retry.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, client.callCount())
}

func TestCoordinator_StaleResponseDiscarded(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{
		gate: gate, // first request hangs until released
		respond: func(intent domain.Intent) (*StartWatchResponse, error) {
			return &StartWatchResponse{OK: true, Provider: intent.Provider}, nil
		},
	}
	c := newTestCoordinator(client, nil)

	c.SetIntent(intentFor("SPY", "alpaca"))
	waitFor(t, func() bool { return client.callCount() == 1 })

	// Supersede the hung request, let the replacement complete.
	c.SetIntent(intentFor("QQQ", "tradier"))
	waitFor(t, func() bool { return client.callCount() == 2 })
	waitFor(t, func() bool { return c.Env().Provider == "tradier" })

	// Now release the original: its response must not be applied.
	close(gate)
	c.Close()

	assert.Equal(t, "tradier", c.Env().Provider)
	assert.Equal(t, StateActive, c.State())
}

func TestCoordinator_ResetOnInstrumentChangeOnly(t *testing.T) {
	var resets int
	var mu sync.Mutex
	onReset := func() { mu.Lock(); resets++; mu.Unlock() }

	client := &fakeClient{}
	c := newTestCoordinator(client, onReset)
	defer c.Close()

	count := func() int { mu.Lock(); defer mu.Unlock(); return resets }

	// First intent counts as a change.
	c.SetIntent(intentFor("SPY", "tradier"))
	waitFor(t, func() bool { return c.State() == StateActive })
	require.Equal(t, 1, count())

	// Parameter-only change: history is kept.
	next := intentFor("SPY", "tradier")
	next.BackfillDepth = 30
	c.SetIntent(next)
	waitFor(t, func() bool { return client.callCount() == 2 })
	assert.Equal(t, 1, count())

	// Provider change wipes state.
	c.SetIntent(intentFor("SPY", "alpaca"))
	waitFor(t, func() bool { return client.callCount() == 3 })
	assert.Equal(t, 2, count())

	// Instrument change wipes state.
	c.SetIntent(intentFor("QQQ", "alpaca"))
	waitFor(t, func() bool { return client.callCount() == 4 })
	assert.Equal(t, 2+1, count())
}

func TestCoordinator_EmptyProviderBecomesUnknown(t *testing.T) {
	client := &fakeClient{
		respond: func(domain.Intent) (*StartWatchResponse, error) {
			return &StartWatchResponse{OK: true}, nil
		},
	}
	c := newTestCoordinator(client, nil)
	defer c.Close()

	c.SetIntent(intentFor("SPY", "tradier"))
	waitFor(t, func() bool { return c.State() == StateActive })
	assert.Equal(t, domain.ProviderUnknown, c.Env().Provider)
}

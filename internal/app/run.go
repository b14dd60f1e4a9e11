package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tickflash/internal/delta"
	"tickflash/internal/engine"
	"tickflash/internal/observability"
	"tickflash/internal/occ"
	"tickflash/internal/stream"
	"tickflash/internal/watch"
)

// session bundles the wired components of one live run.
type session struct {
	client  *stream.Client
	engine  *engine.Engine
	coord   *watch.Coordinator
	metrics *http.Server
}

// openSession connects the feed and wires the engine and coordinator
// together. The coordinator's reset hook clears engine state whenever
// the tracked instrument or provider changes.
func (a *App) openSession(ctx context.Context) (*session, error) {
	eng := engine.New(engine.Options{
		Cap:    a.Config.Engine.EventCap,
		Logger: a.Logger,
	})

	streamCfg := &stream.ClientConfig{
		ReconnectDelay:    a.Config.Stream.ReconnectDelay,
		MaxReconnectDelay: a.Config.Stream.MaxReconnectDelay,
		PingInterval:      a.Config.Stream.PingInterval,
		ReadTimeout:       a.Config.Stream.ReadTimeout,
		WriteTimeout:      a.Config.Stream.WriteTimeout,
		Buffer:            a.Config.Stream.Buffer,
	}
	client, err := stream.NewClient(ctx, a.Config.Stream.Endpoint, streamCfg, a.Logger)
	if err != nil {
		return nil, err
	}

	watchClient := watch.NewHTTPClient(a.Config.Watch.BaseURL, a.Config.Watch.RequestTimeout, a.Logger)
	coord := watch.NewCoordinator(watchClient, watch.Options{
		Debounce:       a.Config.Watch.Debounce,
		RequestTimeout: a.Config.Watch.RequestTimeout,
		OnReset:        eng.Reset,
		Logger:         a.Logger,
	})

	s := &session{client: client, engine: eng, coord: coord}

	if a.Config.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		s.metrics = &http.Server{Addr: a.Config.Metrics.Listen, Handler: mux}
		go func() {
			a.Logger.Info().Str("listen", a.Config.Metrics.Listen).Msg("serving metrics")
			if err := s.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.Logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	return s, nil
}

func (s *session) close() {
	s.coord.Close()
	s.client.Close()
	if s.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		s.metrics.Shutdown(ctx)
		cancel()
	}
}

// Run streams, classifies, and summarizes tick flow until interrupted.
func (a *App) Run(ctx context.Context, opts WatchOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	s.coord.SetIntent(a.intent(opts))

	go a.summaryLoop(ctx, s, opts.Symbols)

	a.Logger.Info().
		Strs("symbols", opts.Symbols).
		Str("provider", a.intent(opts).Provider).
		Msg("starting tick flow engine")

	err = s.engine.Run(ctx, s.client.Messages())
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("engine terminated with error")
		return err
	}

	a.Logger.Info().Msg("tick flow engine stopped")
	return nil
}

// summaryLoop periodically logs per-symbol flow and the confirmed
// environment so a headless run stays observable.
func (a *App) summaryLoop(ctx context.Context, s *session, symbols []string) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			env := s.coord.Env()
			for _, sym := range symbols {
				key := occ.Root(sym)
				buckets := s.engine.NetDelta(key, delta.Filter{}, a.Config.Engine.BucketLimit)
				var net int64
				if len(buckets) > 0 {
					net = buckets[0].Net
				}
				a.Logger.Info().
					Str("key", key).
					Str("provider", env.Provider).
					Int("events", len(s.engine.Events(key))).
					Int64("latest_net", net).
					Msg("flow summary")
			}
		}
	}
}

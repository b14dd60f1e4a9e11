// Package app aggregates configuration and shared dependencies and
// implements the CLI commands on top of the engine.
package app

import (
	"time"

	"github.com/rs/zerolog"

	"tickflash/internal/config"
	"tickflash/internal/domain"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// WatchOptions describe what to subscribe to. Shared by run and export.
type WatchOptions struct {
	Symbols       []string
	EquitySymbols []string
	Provider      string
	Moneyness     float64
	Backfill      int
	Limit         int
	Live          bool
	Replay        bool
}

// ExportOptions hold parameters for capturing and exporting a window of
// tick flow.
type ExportOptions struct {
	WatchOptions

	// Key selects whose history to export; first symbol when empty.
	Key string
	// Duration bounds the capture window.
	Duration time.Duration

	CSVPath string
	PNGPath string

	MinQuantity int64
	HideUnknown bool
	EdgesOnly   bool
}

// intent translates CLI options into a subscription intent, applying
// the configured default provider.
func (a *App) intent(opts WatchOptions) domain.Intent {
	provider := opts.Provider
	if provider == "" {
		provider = a.Config.Watch.Provider
	}
	return domain.Intent{
		Instruments:       opts.Symbols,
		EquityInstruments: opts.EquitySymbols,
		Provider:          provider,
		Moneyness:         opts.Moneyness,
		BackfillDepth:     opts.Backfill,
		Limit:             opts.Limit,
		Live:              opts.Live,
		Replay:            opts.Replay,
	}
}

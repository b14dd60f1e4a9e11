package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"tickflash/internal/app"
)

var runWatch = watchFlags{}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Stream, classify, and summarize live tick flow",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := runWatch.options()
		if err != nil {
			return err
		}
		return getApp().Run(cmd.Context(), opts)
	},
}

// watchFlags are the subscription flags shared by run and export.
type watchFlags struct {
	symbols   []string
	equities  []string
	provider  string
	moneyness float64
	backfill  int
	limit     int
	live      bool
	replay    bool
}

func (f *watchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.symbols, "symbols", nil, "Instruments to watch (underlyings or option identifiers)")
	cmd.Flags().StringSliceVar(&f.equities, "eq-ts", nil, "Underlyings to stream equity time and sales for")
	cmd.Flags().StringVar(&f.provider, "provider", "", "Preferred data provider (defaults to config)")
	cmd.Flags().Float64Var(&f.moneyness, "moneyness", 0, "Moneyness band for the option chain watch")
	cmd.Flags().IntVar(&f.backfill, "backfill", 0, "Recent prints to backfill per instrument")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Server-side event limit per instrument")
	cmd.Flags().BoolVar(&f.live, "live", true, "Request live streaming")
	cmd.Flags().BoolVar(&f.replay, "replay", false, "Request a replay session instead of live data")
}

func (f *watchFlags) options() (app.WatchOptions, error) {
	if len(f.symbols) == 0 {
		return app.WatchOptions{}, errors.New("at least one --symbols value is required")
	}
	return app.WatchOptions{
		Symbols:       f.symbols,
		EquitySymbols: f.equities,
		Provider:      f.provider,
		Moneyness:     f.moneyness,
		Backfill:      f.backfill,
		Limit:         f.limit,
		Live:          f.live,
		Replay:        f.replay,
	}, nil
}

func init() {
	runWatch.register(runCmd)
}

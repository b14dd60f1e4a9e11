package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"tickflash/internal/delta"
	"tickflash/internal/domain"
	"tickflash/internal/occ"
)

// Export captures a window of live tick flow for one key and writes it
// out as a CSV of classified prints and/or a PNG of the per-second net
// delta series.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}
	if opts.Key == "" {
		if len(opts.Symbols) == 0 {
			return errors.New("no symbol to export")
		}
		opts.Key = occ.Root(opts.Symbols[0])
	}
	if opts.Duration <= 0 {
		opts.Duration = 30 * time.Second
	}

	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	s.coord.SetIntent(a.intent(opts.WatchOptions))

	a.Logger.Info().
		Str("key", opts.Key).
		Dur("window", opts.Duration).
		Msg("capturing tick flow for export")

	runCtx, cancel := context.WithTimeout(ctx, opts.Duration)
	defer cancel()
	if err := s.engine.Run(runCtx, s.client.Messages()); err != nil &&
		!errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}

	filter := delta.Filter{
		MinQuantity: opts.MinQuantity,
		HideUnknown: opts.HideUnknown,
		EdgesOnly:   opts.EdgesOnly,
	}
	events := delta.Apply(s.engine.Events(opts.Key), filter)
	if len(events) == 0 {
		a.Logger.Info().Str("key", opts.Key).Msg("no events captured for export window")
		return nil
	}
	if max := a.Config.Export.MaxRows; len(events) > max {
		events = events[:max]
	}

	a.Logger.Info().Int("events", len(events)).Msg("exporting tick flow")

	if opts.CSVPath != "" {
		if err := writeEventsCSV(opts.CSVPath, events); err != nil {
			return err
		}
	}
	if opts.PNGPath != "" {
		buckets := delta.Series(events, a.Config.Engine.BucketLimit)
		if err := a.writeDeltaPNG(opts.PNGPath, opts.Key, buckets); err != nil {
			return err
		}
	}
	return nil
}

func writeEventsCSV(path string, events []domain.TickEvent) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"id", "key", "ts_ms", "price", "quantity", "notional", "side", "side_src", "edge", "action", "action_conf", "provider"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, ev := range events {
		record := []string{
			ev.ID,
			ev.Key,
			strconv.FormatInt(ev.Timestamp, 10),
			strconv.FormatFloat(ev.Price, 'f', -1, 64),
			strconv.FormatInt(ev.Quantity, 10),
			strconv.FormatFloat(ev.Notional, 'f', 2, 64),
			string(ev.Side),
			string(ev.SideSource),
			string(ev.Edge),
			string(ev.Action),
			string(ev.ActionConf),
			ev.Provider,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func (a *App) writeDeltaPNG(path, key string, buckets []delta.Bucket) error {
	if len(buckets) == 0 {
		return errors.New("no buckets to chart")
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	// Buckets come newest first; the chart reads left to right.
	x := make([]time.Time, len(buckets))
	net := make([]float64, len(buckets))
	for i, b := range buckets {
		j := len(buckets) - 1 - i
		x[j] = time.Unix(b.Second, 0)
		net[j] = float64(b.Net)
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s net delta per second", key),
		Width:  a.Config.Export.ChartWidth,
		Height: a.Config.Export.ChartHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Net quantity",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Net",
				XValues: x,
				YValues: net,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

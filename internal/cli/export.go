package cli

import (
	"time"

	"github.com/spf13/cobra"

	"tickflash/internal/app"
)

var (
	exportWatch    = watchFlags{}
	exportKey      string
	exportDuration time.Duration
	exportCSVPath  string
	exportPNGPath  string
	exportMinQty   int64
	exportHideUnk  bool
	exportEdges    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Capture a window of tick flow and export it as CSV and/or PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		watchOpts, err := exportWatch.options()
		if err != nil {
			return err
		}
		return getApp().Export(cmd.Context(), app.ExportOptions{
			WatchOptions: watchOpts,
			Key:          exportKey,
			Duration:     exportDuration,
			CSVPath:      exportCSVPath,
			PNGPath:      exportPNGPath,
			MinQuantity:  exportMinQty,
			HideUnknown:  exportHideUnk,
			EdgesOnly:    exportEdges,
		})
	},
}

func init() {
	exportWatch.register(exportCmd)
	exportCmd.Flags().StringVar(&exportKey, "key", "", "Tracking key to export (defaults to the first symbol's root)")
	exportCmd.Flags().DurationVar(&exportDuration, "duration", 30*time.Second, "Capture window")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV data")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG net delta chart")
	exportCmd.Flags().Int64Var(&exportMinQty, "min-qty", 0, "Drop prints smaller than this quantity")
	exportCmd.Flags().BoolVar(&exportHideUnk, "hide-unknown", false, "Drop prints with unresolved side")
	exportCmd.Flags().BoolVar(&exportEdges, "edges-only", false, "Keep only prints at the inside bid/ask")
}

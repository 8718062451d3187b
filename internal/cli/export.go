package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"lootradar/internal/app"
)

var (
	exportPNGPath  string
	exportCSVPath  string
	exportCurrency string
	exportLimit    int
)

var exportCmd = &cobra.Command{
	Use:   "export <title>",
	Short: "Export the deals of one search as CSV and/or PNG chart",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkLimit(exportLimit); err != nil {
			return err
		}
		return getApp().Export(cmd.Context(), app.ExportOptions{
			SearchOptions: app.SearchOptions{
				Title:    strings.Join(args, " "),
				Currency: exportCurrency,
				Limit:    exportLimit,
				Out:      cmd.OutOrStdout(),
			},
			PNGPath: exportPNGPath,
			CSVPath: exportCSVPath,
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV data")
	addSearchFlags(exportCmd, &exportCurrency, &exportLimit)
}

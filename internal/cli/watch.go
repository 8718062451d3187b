package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"lootradar/internal/app"
)

var (
	watchCurrency   string
	watchLimit      int
	watchMinSavings int
)

var watchCmd = &cobra.Command{
	Use:   "watch <title>",
	Short: "Periodically re-run a search and notify about deep discounts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkLimit(watchLimit); err != nil {
			return err
		}
		if err := app.CheckMinSavings(watchMinSavings); err != nil {
			return err
		}
		return getApp().Watch(cmd.Context(), app.WatchOptions{
			SearchOptions: app.SearchOptions{
				Title:    strings.Join(args, " "),
				Currency: watchCurrency,
				Limit:    watchLimit,
			},
			MinSavings: watchMinSavings,
		})
	},
}

func init() {
	addSearchFlags(watchCmd, &watchCurrency, &watchLimit)
	watchCmd.Flags().IntVar(&watchMinSavings, "min-savings", app.ConfigMinSavings, "Minimum savings percentage to notify about (defaults to config)")
}

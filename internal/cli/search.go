package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lootradar/internal/app"
	"lootradar/internal/config"
)

var (
	searchCurrency string
	searchLimit    int
)

var searchCmd = &cobra.Command{
	Use:   "search <title>",
	Short: "Print the best current deal for each matching game",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkLimit(searchLimit); err != nil {
			return err
		}
		return getApp().Search(cmd.Context(), app.SearchOptions{
			Title:    strings.Join(args, " "),
			Currency: searchCurrency,
			Limit:    searchLimit,
			Out:      cmd.OutOrStdout(),
		})
	},
}

var linksCmd = &cobra.Command{
	Use:   "links <query>",
	Short: "Print storefront search links for a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Links(app.SearchOptions{
			Title: strings.Join(args, " "),
			Out:   cmd.OutOrStdout(),
		})
	},
}

func checkLimit(limit int) error {
	if limit < 0 || limit > config.MaxSearchLimit {
		return fmt.Errorf("--limit must be between 1 and %d", config.MaxSearchLimit)
	}
	return nil
}

func addSearchFlags(cmd *cobra.Command, cur *string, limit *int) {
	cmd.Flags().StringVar(cur, "currency", "", "Display currency, EUR or USD (defaults to config)")
	cmd.Flags().IntVar(limit, "limit", 0, "Maximum games to look up (defaults to config)")
}

func init() {
	addSearchFlags(searchCmd, &searchCurrency, &searchLimit)
}

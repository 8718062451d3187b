package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"lootradar/internal/currency"
	"lootradar/internal/service"
)

const maxChartLabel = 18

// Export writes the classified deals of one search as CSV and/or a PNG chart.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	result, err := a.runSearch(ctx, opts.SearchOptions)
	if err != nil {
		return err
	}
	if result.NoResults {
		a.Logger.Info().Str("query", result.Query).Msg("no deals found for export")
		return nil
	}
	a.Logger.Info().Str("query", result.Query).Int("cards", len(result.Cards)).Msg("exporting deals")

	if opts.CSVPath != "" {
		if err := writeCardsCSV(opts.CSVPath, result); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	if opts.PNGPath != "" {
		size := chartSize{Width: a.Config.Export.ChartWidth, Height: a.Config.Export.ChartHeight}
		if err := writeCardsPNG(opts.PNGPath, result, size); err != nil {
			return fmt.Errorf("write png: %w", err)
		}
	}

	return nil
}

func writeCardsCSV(path string, result service.SearchResult) error {
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

	header := []string{"game_id", "title", "store_id", "store", "currency", "sale_price", "retail_price", "savings_pct", "is_bundle", "steam_price", "deal_url"}
	if err := writer.Write(header); err != nil {
		return err
	}

	code := string(result.Currency.Code)
	for _, card := range result.Cards {
		steam := ""
		if ref := card.Deal.SteamReferencePrice; ref.Valid {
			steam = currency.Amount(ref.Decimal)
		}
		record := []string{
			card.Game.GameID,
			card.Game.External,
			card.Deal.StoreID,
			card.Deal.StoreName,
			code,
			currency.Amount(card.Deal.SalePrice),
			currency.Amount(card.Deal.RetailPrice),
			strconv.FormatInt(card.Deal.SavingsPercent, 10),
			strconv.FormatBool(card.Deal.IsBundle),
			steam,
			card.RedirectURL,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

type chartSize struct {
	Width  int
	Height int
}

// writeCardsPNG draws a sale and a retail bar per game on a zero-based axis.
func writeCardsPNG(path string, result service.SearchResult, size chartSize) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	saleStyle := chart.Style{FillColor: chart.ColorBlue, StrokeColor: chart.ColorBlue}
	retailStyle := chart.Style{FillColor: chart.ColorLightGray, StrokeColor: chart.ColorAlternateGray}

	top := decimal.NewFromInt(1)
	bars := make([]chart.Value, 0, 2*len(result.Cards))
	for _, card := range result.Cards {
		name := shorten(card.Game.External, maxChartLabel)
		bars = append(bars,
			chart.Value{Label: name + " (sale)", Value: card.Deal.SalePrice.InexactFloat64(), Style: saleStyle},
			chart.Value{Label: name + " (retail)", Value: card.Deal.RetailPrice.InexactFloat64(), Style: retailStyle},
		)
		top = decimal.Max(top, card.Deal.RetailPrice, card.Deal.SalePrice)
	}

	priceFormatter := func(v interface{}) string {
		return result.Currency.Symbol + chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.BarChart{
		Title:      fmt.Sprintf("%s deals (%s): sale vs retail", result.Query, result.Currency.Label()),
		Width:      size.Width,
		Height:     size.Height,
		BarSpacing: 10,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		YAxis: chart.YAxis{
			Name:           "Price",
			ValueFormatter: priceFormatter,
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: top.Mul(decimal.RequireFromString("1.1")).InexactFloat64(),
			},
		},
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         bars,
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func shorten(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"lootradar/internal/links"
	"lootradar/internal/service"
)

// Search runs one query and prints the cards as a table.
func (a *App) Search(ctx context.Context, opts SearchOptions) error {
	result, err := a.runSearch(ctx, opts)
	if err != nil {
		return err
	}
	out := output(opts.Out)

	if result.NoResults {
		fmt.Fprintln(out, "no results on CheapShark; try the store searches:")
		return a.printLinks(out, result.Query)
	}

	t := newTable(out)
	t.AppendHeader(table.Row{"#", "Title", "Store", "Price", "Retail", "Savings", "Pack", "Steam", "Deal"})

	cur := result.Currency
	for i, card := range result.Cards {
		steam := "-"
		if ref := card.Deal.SteamReferencePrice; ref.Valid {
			steam = cur.Format(ref.Decimal)
		}
		pack := ""
		if card.Deal.IsBundle {
			pack = "yes"
		}
		t.AppendRow(table.Row{
			i + 1,
			sanitizeInline(card.Game.External),
			card.Deal.StoreName,
			cur.Format(card.Deal.SalePrice),
			cur.Format(card.Deal.RetailPrice),
			fmt.Sprintf("-%d%%", card.Deal.SavingsPercent),
			pack,
			steam,
			card.RedirectURL,
		})
	}
	t.Render()
	return nil
}

// Links prints the storefront search links for a query.
func (a *App) Links(opts SearchOptions) error {
	if links.Blank(opts.Title) {
		return fmt.Errorf("query must not be empty")
	}
	return a.printLinks(output(opts.Out), opts.Title)
}

func (a *App) printLinks(out io.Writer, query string) error {
	t := newTable(out)
	t.AppendHeader(table.Row{"Store", "Search"})
	for _, link := range links.Default().Build(query) {
		t.AppendRow(table.Row{link.Name, link.URL})
	}
	t.Render()
	return nil
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func (a *App) runSearch(ctx context.Context, opts SearchOptions) (service.SearchResult, error) {
	if links.Blank(opts.Title) {
		return service.SearchResult{}, fmt.Errorf("title must not be empty")
	}
	cur, err := a.resolveCurrency(opts.Currency)
	if err != nil {
		return service.SearchResult{}, err
	}
	return a.newSearchService(nil).Search(ctx, opts.Title, a.Config.ResolveLimit(opts.Limit), cur), nil
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	cleaned = strings.ReplaceAll(cleaned, "\t", " ")
	return cleaned
}

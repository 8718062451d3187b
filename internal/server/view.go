package server

import (
	"lootradar/internal/currency"
	"lootradar/internal/links"
	"lootradar/internal/service"
)

type currencyJSON struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
}

type cardJSON struct {
	GameID              string      `json:"gameId"`
	Title               string      `json:"title"`
	Thumb               string      `json:"thumb"`
	DealID              string      `json:"dealId"`
	StoreID             string      `json:"storeId"`
	StoreName           string      `json:"storeName"`
	SalePrice           string      `json:"salePrice"`
	RetailPrice         string      `json:"retailPrice"`
	SavingsPercent      int64       `json:"savingsPercent"`
	IsBundle            bool        `json:"isBundle"`
	SteamReferencePrice *string     `json:"steamReferencePrice"`
	DealURL             string      `json:"dealUrl"`
	Links               links.Links `json:"links"`
}

type searchJSON struct {
	Query     string       `json:"query"`
	Currency  currencyJSON `json:"currency"`
	Links     links.Links  `json:"links"`
	Cards     []cardJSON   `json:"cards"`
	NoResults bool         `json:"noResults"`
}

func newSearchJSON(result service.SearchResult) searchJSON {
	out := searchJSON{
		Query:     result.Query,
		Currency:  currencyJSON{Code: string(result.Currency.Code), Symbol: result.Currency.Symbol},
		Links:     result.Links,
		Cards:     make([]cardJSON, 0, len(result.Cards)),
		NoResults: result.NoResults,
	}
	for _, card := range result.Cards {
		item := cardJSON{
			GameID:         card.Game.GameID,
			Title:          card.Game.External,
			Thumb:          card.Game.Thumb,
			DealID:         card.Deal.DealID,
			StoreID:        card.Deal.StoreID,
			StoreName:      card.Deal.StoreName,
			SalePrice:      currency.Amount(card.Deal.SalePrice),
			RetailPrice:    currency.Amount(card.Deal.RetailPrice),
			SavingsPercent: card.Deal.SavingsPercent,
			IsBundle:       card.Deal.IsBundle,
			DealURL:        card.RedirectURL,
			Links:          card.Links,
		}
		if ref := card.Deal.SteamReferencePrice; ref.Valid {
			v := currency.Amount(ref.Decimal)
			item.SteamReferencePrice = &v
		}
		out.Cards = append(out.Cards, item)
	}
	return out
}

type currencyOption struct {
	Code     string
	Label    string
	Selected bool
}

type cardView struct {
	Title         string
	Thumb         string
	StoreName     string
	SalePrice     string
	RetailPrice   string
	Savings       int64
	IsBundle      bool
	SteamPrice    string
	DealURL       string
	EnebaURL      string
	InstantURL    string
	BundleSiteURL string
}

type pageView struct {
	Query      string
	Currencies []currencyOption
	Searched   bool
	QuickLinks links.Links
	Cards      []cardView
	NoResults  bool
	Error      string
	Version    string
}

func newPageView(query string, cur currency.Currency) pageView {
	page := pageView{Query: query}
	for _, opt := range currency.Options() {
		page.Currencies = append(page.Currencies, currencyOption{
			Code:     string(opt.Code),
			Label:    opt.Label(),
			Selected: opt.Code == cur.Code,
		})
	}
	return page
}

func (p *pageView) fill(result service.SearchResult) {
	p.Searched = true
	p.QuickLinks = result.Links
	p.NoResults = result.NoResults
	cur := result.Currency
	for _, card := range result.Cards {
		view := cardView{
			Title:       card.Game.External,
			Thumb:       card.Game.Thumb,
			StoreName:   card.Deal.StoreName,
			SalePrice:   cur.Format(card.Deal.SalePrice),
			RetailPrice: cur.Format(card.Deal.RetailPrice),
			Savings:     card.Deal.SavingsPercent,
			IsBundle:    card.Deal.IsBundle,
			DealURL:     card.RedirectURL,
		}
		if ref := card.Deal.SteamReferencePrice; ref.Valid {
			view.SteamPrice = cur.Format(ref.Decimal)
		}
		view.EnebaURL, _ = card.Links.URL(links.Eneba)
		view.InstantURL, _ = card.Links.URL(links.InstantGaming)
		view.BundleSiteURL, _ = card.Links.URL(links.HumbleBundle)
		p.Cards = append(p.Cards, view)
	}
}

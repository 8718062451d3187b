package cheapshark

import "github.com/shopspring/decimal"

// GameSummary is one row of a title search.
type GameSummary struct {
	GameID     string          `json:"gameID"`
	SteamAppID string          `json:"steamAppID"`
	Cheapest   decimal.Decimal `json:"cheapest"`
	External   string          `json:"external"`
	Thumb      string          `json:"thumb"`
}

// RawDeal is one store's current offer for a game.
type RawDeal struct {
	DealID      string          `json:"dealID"`
	StoreID     string          `json:"storeID"`
	Price       decimal.Decimal `json:"price"`
	RetailPrice decimal.Decimal `json:"retailPrice"`
	Savings     decimal.Decimal `json:"savings"`
}

// GameInfo carries the title metadata of a detail lookup.
type GameInfo struct {
	Title      string `json:"title"`
	SteamAppID string `json:"steamAppID"`
	Thumb      string `json:"thumb"`
}

// GameDetail lists every current deal for a game. Deals[0] is the primary
// deal; the order is whatever upstream returned.
type GameDetail struct {
	Info  GameInfo  `json:"info"`
	Deals []RawDeal `json:"deals"`
}

// Primary returns the first deal, if any.
func (d GameDetail) Primary() (RawDeal, bool) {
	if len(d.Deals) == 0 {
		return RawDeal{}, false
	}
	return d.Deals[0], true
}

type errorResponse struct {
	Error string `json:"error"`
}

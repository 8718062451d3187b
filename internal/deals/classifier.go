// Package deals turns a game's raw CheapShark offers into display attributes.
package deals

import (
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"lootradar/internal/cheapshark"
	"lootradar/internal/currency"
	"lootradar/internal/stores"
)

// Rules is the data behind the bundle heuristic and the reference price.
type Rules struct {
	// BundleStores flag every deal from these stores as a bundle.
	BundleStores []string
	// BundleKeywords are matched as lowercase substrings of the game name.
	BundleKeywords []string
	// ReferenceStoreID is the store whose price is surfaced for comparison.
	ReferenceStoreID string
}

// DefaultRules mirrors what users know from the dashboard: Steam, Fanatical and
// Direct2Drive listings, and titles naming a pack, saga, bundle, collection or
// anthology, are badged as bundles. The reference price comes from Steam.
func DefaultRules() Rules {
	return Rules{
		BundleStores:     []string{"1", "15", "24"},
		BundleKeywords:   []string{"pack", "saga", "bundle", "collection", "anthology"},
		ReferenceStoreID: stores.SteamID,
	}
}

// ClassifiedDeal is the view-model of a game's primary deal.
type ClassifiedDeal struct {
	DealID         string
	StoreID        string
	StoreName      string
	SalePrice      decimal.Decimal
	RetailPrice    decimal.Decimal
	SavingsPercent int64
	IsBundle       bool
	// SteamReferencePrice is invalid when no reference-store deal exists.
	SteamReferencePrice decimal.NullDecimal
}

// Classifier is stateless once built and safe for concurrent use.
type Classifier struct {
	directory      *stores.Directory
	bundleStores   map[string]struct{}
	bundleKeywords []string
	referenceStore string
}

// NewClassifier copies rules so later changes by the caller have no effect.
func NewClassifier(directory *stores.Directory, rules Rules) *Classifier {
	if directory == nil {
		directory = stores.Default("")
	}
	return &Classifier{
		directory: directory,
		bundleStores: lo.SliceToMap(rules.BundleStores, func(id string) (string, struct{}) {
			return id, struct{}{}
		}),
		bundleKeywords: lo.Map(rules.BundleKeywords, func(k string, _ int) string {
			return strings.ToLower(k)
		}),
		referenceStore: rules.ReferenceStoreID,
	}
}

// Classify derives the display attributes of detail's primary deal, with every
// amount converted by cur. ok is false when detail has no deals; such games
// must be skipped by the caller.
func (c *Classifier) Classify(game cheapshark.GameSummary, detail cheapshark.GameDetail, cur currency.Currency) (ClassifiedDeal, bool) {
	primary, ok := detail.Primary()
	if !ok {
		return ClassifiedDeal{}, false
	}

	out := ClassifiedDeal{
		DealID:         primary.DealID,
		StoreID:        primary.StoreID,
		StoreName:      c.directory.Lookup(primary.StoreID),
		SalePrice:      cur.Convert(primary.Price),
		RetailPrice:    cur.Convert(primary.RetailPrice),
		SavingsPercent: primary.Savings.IntPart(),
		IsBundle:       c.IsBundle(game.External, primary.StoreID),
	}

	if ref, found := c.referenceDeal(detail.Deals); found {
		out.SteamReferencePrice = decimal.NewNullDecimal(cur.Convert(ref.Price))
	}
	return out, true
}

// IsBundle ORs the store signal with the title keyword signal. Both are weak;
// false positives are accepted.
func (c *Classifier) IsBundle(name, storeID string) bool {
	if _, ok := c.bundleStores[storeID]; ok {
		return true
	}
	lower := strings.ToLower(name)
	return lo.SomeBy(c.bundleKeywords, func(k string) bool {
		return strings.Contains(lower, k)
	})
}

func (c *Classifier) referenceDeal(all []cheapshark.RawDeal) (cheapshark.RawDeal, bool) {
	if c.referenceStore == "" {
		return cheapshark.RawDeal{}, false
	}
	return lo.Find(all, func(d cheapshark.RawDeal) bool {
		return d.StoreID == c.referenceStore
	})
}

package deals

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"lootradar/internal/cheapshark"
	"lootradar/internal/currency"
	"lootradar/internal/stores"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func bigIntEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}

func newTestClassifier() *Classifier {
	return NewClassifier(stores.Default(""), DefaultRules())
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func deal(storeID, price, retail, savings string) cheapshark.RawDeal {
	return cheapshark.RawDeal{
		DealID:      "deal-" + storeID,
		StoreID:     storeID,
		Price:       dec(price),
		RetailPrice: dec(retail),
		Savings:     dec(savings),
	}
}

func TestClassifyPricesAtUnityRate(t *testing.T) {
	game := cheapshark.GameSummary{GameID: "1", External: "Hades"}
	detail := cheapshark.GameDetail{Deals: []cheapshark.RawDeal{deal("7", "10.00", "20.00", "50.0")}}

	got, ok := newTestClassifier().Classify(game, detail, currency.Dollar())
	if !ok {
		t.Fatal("expected classification")
	}

	want := ClassifiedDeal{
		DealID:         "deal-7",
		StoreID:        "7",
		StoreName:      "GOG",
		SalePrice:      dec("10.00"),
		RetailPrice:    dec("20.00"),
		SavingsPercent: 50,
	}
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Fatalf("unexpected classification (-want +got):\n%s", diff)
	}
	if got.SalePrice.StringFixed(2) != "10.00" || got.RetailPrice.StringFixed(2) != "20.00" {
		t.Fatalf("prices should render with two decimals: %s / %s", got.SalePrice.StringFixed(2), got.RetailPrice.StringFixed(2))
	}
}

func TestClassifyConvertsToEuro(t *testing.T) {
	game := cheapshark.GameSummary{External: "Hades"}
	detail := cheapshark.GameDetail{Deals: []cheapshark.RawDeal{deal("7", "9.99", "24.99", "60.024")}}

	got, _ := newTestClassifier().Classify(game, detail, currency.Euro())
	if got.SalePrice.StringFixed(2) != "9.49" {
		t.Fatalf("sale price = %s", got.SalePrice.StringFixed(2))
	}
	if got.RetailPrice.StringFixed(2) != "23.74" {
		t.Fatalf("retail price = %s", got.RetailPrice.StringFixed(2))
	}
	if got.SavingsPercent != 60 {
		t.Fatalf("savings should drop the fraction, got %d", got.SavingsPercent)
	}
}

func TestClassifySavingsTruncates(t *testing.T) {
	for savings, want := range map[string]int64{"0": 0, "0.99": 0, "49.999999": 49, "86.695565": 86, "100": 100} {
		detail := cheapshark.GameDetail{Deals: []cheapshark.RawDeal{deal("7", "1", "2", savings)}}
		got, _ := newTestClassifier().Classify(cheapshark.GameSummary{}, detail, currency.Dollar())
		if got.SavingsPercent != want {
			t.Fatalf("savings %s → %d, want %d", savings, got.SavingsPercent, want)
		}
	}
}

func TestClassifyBundleHeuristic(t *testing.T) {
	cases := []struct {
		name    string
		storeID string
		want    bool
	}{
		{"Resident Evil Collection", "7", true},
		{"Elden Ring", "21", false},
		{"Elden Ring", "1", true},
		{"Elden Ring", "15", true},
		{"Elden Ring", "24", true},
		{"The Witcher Saga", "3", true},
		{"Anno 1800 ANTHOLOGY", "2", true},
		{"Humble Indie BUNDLE", "11", true},
		// Substring matches are intended, even inside other words.
		{"Backpack Hero", "7", true},
		{"Hollow Knight", "99", false},
	}

	c := newTestClassifier()
	for _, tc := range cases {
		detail := cheapshark.GameDetail{Deals: []cheapshark.RawDeal{deal(tc.storeID, "5", "10", "50")}}
		got, _ := c.Classify(cheapshark.GameSummary{External: tc.name}, detail, currency.Dollar())
		if got.IsBundle != tc.want {
			t.Fatalf("%q at store %s: IsBundle = %v, want %v", tc.name, tc.storeID, got.IsBundle, tc.want)
		}
	}
}

func TestClassifySteamReferenceScansAllDeals(t *testing.T) {
	detail := cheapshark.GameDetail{Deals: []cheapshark.RawDeal{
		deal("7", "30.00", "40.00", "25"),
		deal("1", "25.00", "40.00", "37.5"),
		deal("15", "20.00", "40.00", "50"),
	}}

	for _, cur := range currency.Options() {
		got, _ := newTestClassifier().Classify(cheapshark.GameSummary{External: "Game"}, detail, cur)
		if !got.SteamReferencePrice.Valid {
			t.Fatalf("%s: expected steam reference price", cur)
		}
		want := dec("25.00").Mul(cur.Rate)
		if !got.SteamReferencePrice.Decimal.Equal(want) {
			t.Fatalf("%s: steam reference = %s, want %s", cur, got.SteamReferencePrice.Decimal, want)
		}
		if got.StoreID != "7" {
			t.Fatalf("primary deal must stay index 0, got store %s", got.StoreID)
		}
	}
}

func TestClassifySteamReferenceUsesFirstSteamEntry(t *testing.T) {
	detail := cheapshark.GameDetail{Deals: []cheapshark.RawDeal{
		deal("1", "12.00", "20.00", "40"),
		deal("1", "11.00", "20.00", "45"),
	}}
	got, _ := newTestClassifier().Classify(cheapshark.GameSummary{}, detail, currency.Dollar())
	if !got.SteamReferencePrice.Decimal.Equal(dec("12.00")) {
		t.Fatalf("expected the first steam entry, got %s", got.SteamReferencePrice.Decimal)
	}
}

func TestClassifyWithoutSteamDeal(t *testing.T) {
	detail := cheapshark.GameDetail{Deals: []cheapshark.RawDeal{deal("7", "5", "10", "50"), deal("3", "6", "10", "40")}}
	got, _ := newTestClassifier().Classify(cheapshark.GameSummary{}, detail, currency.Dollar())
	if got.SteamReferencePrice.Valid {
		t.Fatalf("expected no steam reference, got %s", got.SteamReferencePrice.Decimal)
	}
}

func TestClassifyUnknownStoreUsesPlaceholder(t *testing.T) {
	c := NewClassifier(stores.Default("Tienda"), DefaultRules())
	detail := cheapshark.GameDetail{Deals: []cheapshark.RawDeal{deal("404", "5", "10", "50")}}
	got, _ := c.Classify(cheapshark.GameSummary{}, detail, currency.Dollar())
	if got.StoreName != "Tienda" {
		t.Fatalf("expected placeholder, got %q", got.StoreName)
	}
}

func TestClassifyEmptyDetail(t *testing.T) {
	if _, ok := newTestClassifier().Classify(cheapshark.GameSummary{External: "X"}, cheapshark.GameDetail{}, currency.Euro()); ok {
		t.Fatal("classification of a game without deals must be skipped")
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	c := newTestClassifier()
	game := cheapshark.GameSummary{GameID: "9", External: "Mass Effect Legendary Edition Pack"}
	detail := cheapshark.GameDetail{Deals: []cheapshark.RawDeal{
		deal("3", "14.99", "59.99", "75.012502"),
		deal("1", "17.99", "59.99", "70.011668"),
	}}

	first, _ := c.Classify(game, detail, currency.Euro())
	second, _ := c.Classify(game, detail, currency.Euro())

	exact := cmp.AllowUnexported(decimal.Decimal{})
	if diff := cmp.Diff(first, second, exact, cmp.Comparer(bigIntEqual)); diff != "" {
		t.Fatalf("classification is not idempotent (-first +second):\n%s", diff)
	}
}

func TestNewClassifierCopiesRules(t *testing.T) {
	rules := DefaultRules()
	c := NewClassifier(nil, rules)
	rules.BundleStores[0] = "7"
	rules.BundleKeywords[0] = "ring"

	if c.IsBundle("Elden Ring", "7") {
		t.Fatal("classifier must not observe caller mutation of its rules")
	}
	if !c.IsBundle("Elden Ring", "1") {
		t.Fatal("steam listings should still count as bundles")
	}
}

// Package currency models the two display currencies offered to users.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnsupported is returned for codes other than EUR and USD.
var ErrUnsupported = errors.New("unsupported currency")

// Code identifies a display currency.
type Code string

const (
	EUR Code = "EUR"
	USD Code = "USD"
)

// eurPerUSD is a fixed approximation, not a live exchange rate.
var eurPerUSD = decimal.RequireFromString("0.95")

// Currency pairs a rate applied to upstream USD amounts with its symbol.
type Currency struct {
	Code   Code
	Symbol string
	Rate   decimal.Decimal
}

var (
	euro   = Currency{Code: EUR, Symbol: "€", Rate: eurPerUSD}
	dollar = Currency{Code: USD, Symbol: "$", Rate: decimal.NewFromInt(1)}
)

// Euro returns the converted EUR option.
func Euro() Currency { return euro }

// Dollar returns the unconverted USD option.
func Dollar() Currency { return dollar }

// Options lists the selectable currencies in selector order.
func Options() []Currency {
	return []Currency{euro, dollar}
}

// Parse accepts a code ("eur"), or a selector label ("EUR (€)").
func Parse(raw string) (Currency, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if i := strings.IndexByte(code, ' '); i > 0 {
		code = code[:i]
	}
	switch Code(code) {
	case EUR:
		return euro, nil
	case USD:
		return dollar, nil
	default:
		return Currency{}, fmt.Errorf("%w: %q", ErrUnsupported, raw)
	}
}

// Label is the selector text, e.g. "EUR (€)".
func (c Currency) Label() string {
	return fmt.Sprintf("%s (%s)", c.Code, c.Symbol)
}

// Convert applies the rate to an upstream USD amount without rounding.
func (c Currency) Convert(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(c.Rate)
}

// Format renders amount with the symbol and two decimals, e.g. "€9.49".
func (c Currency) Format(amount decimal.Decimal) string {
	return c.Symbol + Amount(amount)
}

// Amount renders amount with exactly two decimals and no symbol, e.g. "9.49".
func Amount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func (c Currency) String() string {
	return string(c.Code)
}

package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownCurrency  = errors.New("unknown currency")
	ErrAmountOutOfRange = errors.New("amount out of range")
)

// MaxAmount is the exclusive upper bound on any amount a settlement records,
// declared or converted.
var MaxAmount = decimal.New(1, 12)

// AmountDecimals is the precision amounts are declared and stored with.
const AmountDecimals = 2

type Currency string

const (
	CZK Currency = "czk"
	EUR Currency = "eur"
	USD Currency = "usd"
)

// Canonical is the settlement unit every price is converted into.
const Canonical = CZK

var known = map[Currency]struct{}{CZK: {}, EUR: {}, USD: {}}

// Parse accepts a currency code in any letter case.
func Parse(code string) (Currency, error) {
	c := Currency(strings.ToLower(strings.TrimSpace(code)))
	if _, ok := known[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return c, nil
}

func (c Currency) String() string { return string(c) }

// Code is the ISO-style uppercase code used in human-readable messages.
func (c Currency) Code() string { return strings.ToUpper(string(c)) }

type Price struct {
	UserID   string
	Amount   decimal.Decimal
	Currency Currency
}

type ConvertedPrice struct {
	UserID           string              `json:"user_id"`
	OriginalPrice    decimal.Decimal     `json:"original_price"`
	OriginalCurrency Currency            `json:"original_currency"`
	ConversionRate   decimal.NullDecimal `json:"conversion_rate"`
	PriceInCZK       decimal.Decimal     `json:"price_in_czk"`
}

// Table maps each non-canonical currency to its rate in canonical units.
type Table map[Currency]decimal.Decimal

// NewTable builds a rate table from lowercase code → decimal string pairs as
// they appear in configuration.
func NewTable(raw map[string]string) (Table, error) {
	t := make(Table, len(raw))
	for code, v := range raw {
		c, err := Parse(code)
		if err != nil {
			return nil, err
		}
		if c == Canonical {
			return nil, fmt.Errorf("rate for canonical currency %s is not configurable", c.Code())
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("rate for %s: %w", c.Code(), err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate for %s must be positive", c.Code())
		}
		t[c] = rate
	}
	return t, nil
}

// Supports reports whether c can be converted with this table.
func (t Table) Supports(c Currency) bool {
	if c == Canonical {
		return true
	}
	_, ok := t[c]
	return ok
}

// Convert is pure: canonical prices pass through with a null rate, everything
// else is multiplied by its rate. The product is exact.
func (t Table) Convert(p Price) (ConvertedPrice, error) {
	out := ConvertedPrice{
		UserID:           p.UserID,
		OriginalPrice:    p.Amount,
		OriginalCurrency: p.Currency,
	}
	if p.Currency == Canonical {
		out.PriceInCZK = p.Amount
		return out, nil
	}
	rate, ok := t[p.Currency]
	if !ok {
		return ConvertedPrice{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, p.Currency)
	}
	out.ConversionRate = decimal.NewNullDecimal(rate)
	out.PriceInCZK = p.Amount.Mul(rate)
	return out, nil
}

// Total sums the canonical amounts.
func Total(prices []ConvertedPrice) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range prices {
		sum = sum.Add(p.PriceInCZK)
	}
	return sum
}

// CheckAmount reports ErrAmountOutOfRange when v does not fit a settlement.
func CheckAmount(v decimal.Decimal) error {
	if v.Abs().GreaterThanOrEqual(MaxAmount) {
		return fmt.Errorf("%w: %s is not below %s", ErrAmountOutOfRange, v, MaxAmount)
	}
	return nil
}

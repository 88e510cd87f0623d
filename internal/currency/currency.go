// Package currency converts between EUR and RSD at a fixed configured rate.
package currency

import (
	"fmt"

	"github.com/shopspring/decimal"

	"troskovi/internal/core"
)

// DefaultRate is used when no rate is configured.
const DefaultRate = 117.0

// Converter converts amounts at a fixed EUR to RSD rate. The rate is read
// once from configuration at startup and never recomputed.
type Converter struct {
	rate decimal.Decimal
}

// Conversion carries both currency amounts plus the rate that produced them.
// The side matching the input currency holds the input verbatim; only the
// other side is derived and rounded.
type Conversion struct {
	EurAmount    float64
	RsdAmount    float64
	ExchangeRate float64
}

func NewConverter(rate float64) (*Converter, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("exchange rate must be positive, got %v", rate)
	}
	return &Converter{rate: decimal.NewFromFloat(rate)}, nil
}

// ToRSD converts an EUR amount to RSD, rounded half up to 2 decimals.
func (c *Converter) ToRSD(eur float64) float64 {
	return decimal.NewFromFloat(eur).Mul(c.rate).Round(2).InexactFloat64()
}

// ToEUR converts an RSD amount to EUR, rounded half up to 2 decimals.
func (c *Converter) ToEUR(rsd float64) float64 {
	return decimal.NewFromFloat(rsd).Div(c.rate).Round(2).InexactFloat64()
}

// Rate returns the configured EUR to RSD rate.
func (c *Converter) Rate() float64 {
	return c.rate.InexactFloat64()
}

// Convert fills both currency sides for an amount entered in the given
// currency.
func (c *Converter) Convert(amount float64, cur core.Currency) (Conversion, error) {
	conv := Conversion{ExchangeRate: c.Rate()}
	switch cur {
	case core.EUR:
		conv.EurAmount = amount
		conv.RsdAmount = c.ToRSD(amount)
	case core.RSD:
		conv.RsdAmount = amount
		conv.EurAmount = c.ToEUR(amount)
	default:
		return Conversion{}, core.ErrInvalidCurrency
	}
	return conv, nil
}

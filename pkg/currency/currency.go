// Package currency converts amounts stored in the canonical currency (SAR)
// into a display currency and formats them with the right symbol placement
// and decimal precision. Rates are static constants; there is no live feed.
package currency

import (
	"fmt"
	"sort"
)

// Symbol positions relative to the amount.
const (
	PositionLeft  = "left"
	PositionRight = "right"
)

// DefaultCode is the canonical currency everything is priced in at rest.
const DefaultCode = "SAR"

type Currency struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	Flag          string  `json:"flag"`
	ExchangeRate  float64 `json:"exchange_rate"` // units per 1 SAR
	DecimalPlaces int     `json:"decimal_places"`
	Position      string  `json:"position"`
}

var currencies = map[string]Currency{
	"SAR": {Code: "SAR", Name: "الريال السعودي", Symbol: "ريال", Flag: "🇸🇦", ExchangeRate: 1, DecimalPlaces: 2, Position: PositionRight},
	"AED": {Code: "AED", Name: "الدرهم الإماراتي", Symbol: "د.إ", Flag: "🇦🇪", ExchangeRate: 0.98, DecimalPlaces: 2, Position: PositionLeft},
	"KWD": {Code: "KWD", Name: "الدينار الكويتي", Symbol: "د.ك", Flag: "🇰🇼", ExchangeRate: 0.12, DecimalPlaces: 3, Position: PositionLeft},
	"QAR": {Code: "QAR", Name: "الريال القطري", Symbol: "ر.ق", Flag: "🇶🇦", ExchangeRate: 0.98, DecimalPlaces: 2, Position: PositionLeft},
	"BHD": {Code: "BHD", Name: "الدينار البحريني", Symbol: "د.ب", Flag: "🇧🇭", ExchangeRate: 0.10, DecimalPlaces: 3, Position: PositionLeft},
	"OMR": {Code: "OMR", Name: "الريال العماني", Symbol: "ر.ع", Flag: "🇴🇲", ExchangeRate: 0.10, DecimalPlaces: 3, Position: PositionLeft},
	"EGP": {Code: "EGP", Name: "الجنيه المصري", Symbol: "ج.م", Flag: "🇪🇬", ExchangeRate: 8.20, DecimalPlaces: 2, Position: PositionLeft},
}

// Get returns the currency for code, and whether it is known.
func Get(code string) (Currency, bool) {
	c, ok := currencies[code]
	return c, ok
}

func IsValid(code string) bool {
	_, ok := currencies[code]
	return ok
}

// List returns all supported currencies ordered by code.
func List() []Currency {
	out := make([]Currency, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Convert converts amount between two currencies by pivoting through SAR,
// rounded to the target currency's decimal places. Unknown codes leave the
// amount unchanged rather than failing; display code never breaks a page.
func Convert(amount float64, fromCode, toCode string) float64 {
	if fromCode == toCode {
		return amount
	}
	from, okFrom := currencies[fromCode]
	to, okTo := currencies[toCode]
	if !okFrom || !okTo {
		return amount
	}
	inSAR := amount / from.ExchangeRate
	return round(inSAR*to.ExchangeRate, to.DecimalPlaces)
}

// Format renders amount with the currency's symbol on the configured side.
func Format(amount float64, code string) string {
	c, ok := currencies[code]
	if !ok {
		return fmt.Sprintf("%.2f ريال", amount)
	}
	value := fmt.Sprintf("%.*f", c.DecimalPlaces, amount)
	if c.Position == PositionLeft {
		return fmt.Sprintf("%s %s", c.Symbol, value)
	}
	return fmt.Sprintf("%s %s", value, c.Symbol)
}

// FormatWithFlag is Format with the country flag prefixed.
func FormatWithFlag(amount float64, code string) string {
	c, ok := currencies[code]
	if !ok {
		return fmt.Sprintf("%.2f ريال", amount)
	}
	return fmt.Sprintf("%s %s", c.Flag, Format(amount, code))
}

// Tax computes subtotal*rate rounded to the currency's decimal places.
func Tax(subtotal, rate float64, code string) float64 {
	tax := subtotal * rate
	c, ok := currencies[code]
	if !ok {
		return tax
	}
	return round(tax, c.DecimalPlaces)
}

// TotalWithTax computes subtotal plus tax at rate, rounded for the currency.
func TotalWithTax(subtotal, rate float64, code string) float64 {
	total := subtotal + Tax(subtotal, rate, code)
	c, ok := currencies[code]
	if !ok {
		return total
	}
	return round(total, c.DecimalPlaces)
}

func round(v float64, places int) float64 {
	shift := 1.0
	for i := 0; i < places; i++ {
		shift *= 10
	}
	if v < 0 {
		return float64(int64(v*shift-0.5)) / shift
	}
	return float64(int64(v*shift+0.5)) / shift
}

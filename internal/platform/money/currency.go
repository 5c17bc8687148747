// Package money holds currency metadata shared by pricing, orders and payments.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const defaultExponent = 2

// exponents maps ISO 4217 codes to their minor-unit precision.
var exponents = map[string]int32{
	"ILS": 2,
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"BHD": 3,
	"KWD": 3,
}

// aliases normalises the spellings seen in catalog data.
var aliases = map[string]string{
	"NIS": "ILS",
	"₪":   "ILS",
}

// Normalize upper-cases a currency code and resolves known aliases.
func Normalize(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if alias, ok := aliases[c]; ok {
		return alias
	}
	return c
}

// Exponent returns the number of minor-unit digits for the currency.
func Exponent(code string) int32 {
	if exp, ok := exponents[Normalize(code)]; ok {
		return exp
	}
	return defaultExponent
}

// Round rounds an amount half away from zero to the currency precision.
func Round(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(Exponent(code))
}

// ToMinorUnits converts an amount into the integer representation payment
// providers expect (agorot for ILS, cents for USD).
func ToMinorUnits(amount decimal.Decimal, code string) int64 {
	exp := Exponent(code)
	return amount.Round(exp).Shift(exp).IntPart()
}

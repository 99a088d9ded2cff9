package models

import (
	"fmt"
)

// Currency is an ISO 4217 code supported by the checkout integration.
type Currency string

const (
	NOK Currency = "NOK"
	SEK Currency = "SEK"
	DKK Currency = "DKK"
	ISK Currency = "ISK"
	GBP Currency = "GBP"
	EUR Currency = "EUR"
)

// minorUnitExponents is the number of decimal places of each currency's minor unit.
var minorUnitExponents = map[Currency]int32{
	NOK: 2,
	SEK: 2,
	DKK: 2,
	ISK: 0,
	GBP: 2,
	EUR: 2,
}

// Currencies returns all supported currencies.
func Currencies() []Currency {
	return []Currency{NOK, SEK, DKK, ISK, GBP, EUR}
}

// ParseCurrency parses an upper-case three letter code.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(code)
	if _, ok := minorUnitExponents[c]; !ok {
		return "", fmt.Errorf("unsupported currency %q", code)
	}
	return c, nil
}

// MinorUnitExponent returns the number of decimal places of the minor unit
// (2 for øre and cents, 0 for ISK). It panics for an unsupported currency.
func (c Currency) MinorUnitExponent() int32 {
	exp, ok := minorUnitExponents[c]
	if !ok {
		panic(fmt.Sprintf("models: unsupported currency %q", string(c)))
	}
	return exp
}

func (c Currency) Valid() bool {
	_, ok := minorUnitExponents[c]
	return ok
}

func (c Currency) String() string { return string(c) }

func (c Currency) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unsupported currency %q", string(c))
	}
	return []byte(c), nil
}

func (c *Currency) UnmarshalText(text []byte) error {
	parsed, err := ParseCurrency(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

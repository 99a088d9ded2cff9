package models

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value in the currency's minor unit (øre, cents).
type Amount struct {
	Value    uint64   `json:"value"`
	Currency Currency `json:"currency"`
}

// NewAmount converts a major-unit amount into an Amount.
func NewAmount(major decimal.Decimal, currency Currency) (Amount, error) {
	value, err := ToMinorUnits(major, currency)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Value: value, Currency: currency}, nil
}

// Major returns the amount in major units.
func (a Amount) Major() decimal.Decimal {
	return FromMinorUnits(a.Value, a.Currency)
}

// maxMinorUnitDigits is the number of decimal digits in 2^64-1.
const maxMinorUnitDigits = 20

// ToMinorUnits multiplies amount by 10^exponent of the currency and returns
// the result as an unsigned integer. Fractions of a minor unit are truncated
// toward zero. Negative amounts and values above 2^64-1 are rejected.
func ToMinorUnits(amount decimal.Decimal, currency Currency) (uint64, error) {
	if !currency.Valid() {
		return 0, &ConversionError{Amount: describeDecimal(amount), Reason: "unsupported currency " + string(currency)}
	}

	scaled := amount.Shift(currency.MinorUnitExponent())
	if scaled.IsNegative() {
		return 0, &ConversionError{Amount: describeDecimal(amount), Reason: "amount is negative"}
	}

	// Bound the integer part by its digit count before anything expands the
	// exponent into a big.Int.
	coef := scaled.Coefficient()
	if coef.Sign() == 0 {
		return 0, nil
	}
	intDigits := len(coef.String()) + int(scaled.Exponent())
	if intDigits > maxMinorUnitDigits {
		return 0, &ConversionError{Amount: describeDecimal(amount), Reason: "amount exceeds the unsigned 64-bit range"}
	}
	if intDigits <= 0 {
		return 0, nil
	}

	units := scaled.Truncate(0).BigInt()
	if !units.IsUint64() {
		return 0, &ConversionError{Amount: describeDecimal(amount), Reason: "amount exceeds the unsigned 64-bit range"}
	}
	return units.Uint64(), nil
}

// describeDecimal keeps scientific notation for extreme exponents so error
// text stays short.
func describeDecimal(d decimal.Decimal) string {
	if exp := d.Exponent(); exp > maxMinorUnitDigits || exp < -maxMinorUnitDigits*2 {
		return fmt.Sprintf("%se%d", d.Coefficient().String(), exp)
	}
	return d.String()
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(value uint64, currency Currency) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(value), -currency.MinorUnitExponent())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	fields, err := splitObject("amount", data)
	if err != nil {
		return err
	}
	type plain Amount
	var p plain
	if err := decodeFields("amount", fields, &p, "value", "currency"); err != nil {
		return err
	}
	*a = Amount(p)
	return nil
}

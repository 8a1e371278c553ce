package models

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Money is an amount in the currency's minor unit (cents, or whole dong for VND).
type Money int64

// zeroDecimalCurrencies have no minor unit below the major one.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true,
	"kmf": true, "krw": true, "mga": true, "pyg": true, "rwf": true,
	"ugx": true, "vnd": true, "vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// MinorUnitExponent returns how many decimal places the currency's minor unit has.
func MinorUnitExponent(currency string) int {
	if zeroDecimalCurrencies[strings.ToLower(currency)] {
		return 0
	}
	return 2
}

// ParseMoney converts a decimal string into minor units, rounding half-up
// once at the end.
func ParseMoney(s, currency string) (Money, error) {
	s = strings.TrimSpace(s)
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if r.Sign() < 0 {
		return 0, fmt.Errorf("amount %q must not be negative", s)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(MinorUnitExponent(currency))), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))

	// half-up on a non-negative value: floor(x + 1/2)
	r.Add(r, big.NewRat(1, 2))
	q := new(big.Int).Quo(r.Num(), r.Denom())
	if !q.IsInt64() {
		return 0, fmt.Errorf("amount %q is out of range", s)
	}
	return Money(q.Int64()), nil
}

// FromMajor converts a float amount from JSON input into minor units.
func FromMajor(v float64, currency string) (Money, error) {
	return ParseMoney(strconv.FormatFloat(v, 'f', -1, 64), currency)
}

// Decimal renders the amount in major units, e.g. 1999 usd -> "19.99".
func (m Money) Decimal(currency string) string {
	exp := MinorUnitExponent(currency)
	neg := m < 0
	v := int64(m)
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%0*d", exp+1, v)
	if exp > 0 {
		s = s[:len(s)-exp] + "." + s[len(s)-exp:]
	}
	if neg {
		s = "-" + s
	}
	return s
}

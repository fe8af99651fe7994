// Package mist converts between MIST, the smallest ledger currency unit, and
// SUI, the display denomination (1 SUI = 10^9 MIST).
package mist

import (
	"errors"
	"math/big"
	"regexp"
	"strings"
)

const FractionalDigits = 9

var (
	ErrInvalidAmount = errors.New("invalid mist amount")
	ErrInvalidStake  = errors.New("invalid stake amount")

	// One or more whole digits, optionally a point and 1-9 fractional digits.
	// Signs, exponents and bare points are all rejected.
	stakePattern = regexp.MustCompile(`^\d+(\.\d{1,9})?$`)

	mistPerSui = new(big.Int).Exp(big.NewInt(10), big.NewInt(FractionalDigits), nil)
)

// Format renders a MIST amount in SUI. Trailing fractional zeros are
// stripped; a whole amount carries no decimal point.
func Format(amount *big.Int) string {
	whole := new(big.Int)
	fraction := new(big.Int)
	whole.QuoRem(amount, mistPerSui, fraction)

	padded := fraction.String()
	for len(padded) < FractionalDigits {
		padded = "0" + padded
	}

	trimmed := strings.TrimRight(padded, "0")
	if len(trimmed) == 0 {
		return whole.String()
	}

	return whole.String() + "." + trimmed
}

// FormatUint is Format for amounts already held as unsigned integers.
func FormatUint(amount uint64) string {
	return Format(new(big.Int).SetUint64(amount))
}

// FormatString is Format for amounts transported as decimal strings, the
// backend's representation of stake fields. Negative values are rejected;
// backend data is untrusted and Format assumes a non-negative amount.
func FormatString(amount string) (string, error) {
	value, ok := new(big.Int).SetString(amount, 10)
	if !ok || value.Sign() < 0 {
		return "", ErrInvalidAmount
	}

	return Format(value), nil
}

// ParseAmount reads a backend decimal string into MIST. A non-positive
// amount is rejected, matching the create_room validation.
func ParseAmount(amount string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(amount, 10)
	if !ok || value.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	return value, nil
}

// ParseStake converts user-entered SUI into MIST. This is the sole gate
// against malformed or non-positive stake submission.
func ParseStake(raw string) (*big.Int, error) {
	normalized := strings.TrimSpace(raw)
	if !stakePattern.MatchString(normalized) {
		return nil, ErrInvalidStake
	}

	wholePart, fractionPart, _ := strings.Cut(normalized, ".")

	padded := fractionPart + strings.Repeat("0", FractionalDigits)
	padded = padded[:FractionalDigits]

	whole, _ := new(big.Int).SetString(wholePart, 10)
	fraction, _ := new(big.Int).SetString(padded, 10)

	result := new(big.Int).Mul(whole, mistPerSui)
	result.Add(result, fraction)

	if result.Sign() <= 0 {
		return nil, ErrInvalidStake
	}

	return result, nil
}

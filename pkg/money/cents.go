// Package money provides integer-cent arithmetic utilities. All currency
// amounts in the engine are int64 cents and all rates are int64 basis points;
// nothing in this package touches floating-point currency.
package money

import (
	"github.com/fbonnet/fiscal-forecast/pkg/constants"
)

// RoundDiv divides num by den rounding half away from zero, the rounding mode
// used for every cent-level computation in the engine.
func RoundDiv(num, den int64) int64 {
	if den == 0 {
		return 0
	}
	if (num < 0) != (den < 0) {
		return -((-num + den/2) / den)
	}
	if num < 0 {
		num, den = -num, -den
	}
	return (num + den/2) / den
}

// ApplyBps applies a basis-point rate to an amount of cents.
// ApplyBps(100000, 2150) = 21500 (21.50% of 1000.00).
func ApplyBps(cents, bps int64) int64 {
	return RoundDiv(cents*bps, constants.BpsDenominator)
}

// SplitVAT splits a tax-inclusive amount into its VAT and tax-exclusive parts
// for the given basis-point rate. The identity ht+vat == ttc always holds
// because ht is derived by subtraction.
func SplitVAT(ttc, rateBps int64) (ht, vat int64) {
	vat = RoundDiv(ttc*rateBps, constants.BpsDenominator+rateBps)
	ht = ttc - vat
	return ht, vat
}

// Abs returns the absolute value of a cent amount.
func Abs(cents int64) int64 {
	if cents < 0 {
		return -cents
	}
	return cents
}

// Min returns the minimum of two cent amounts.
func Min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two cent amounts.
func Max(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// Clamp restricts a cent amount to [lo, hi].
func Clamp(cents, lo, hi int64) int64 {
	if cents < lo {
		return lo
	}
	if cents > hi {
		return hi
	}
	return cents
}

// RatioBps returns value/total expressed in basis points, 0 when total is 0.
func RatioBps(value, total int64) int64 {
	if total == 0 {
		return 0
	}
	return RoundDiv(value*constants.BpsDenominator, total)
}

// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
)

// IsNearZero reports whether a balance is at or below the cancellation threshold.
func IsNearZero(val float64) bool {
	return val <= constants.NearZeroBalance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Min3 returns the smallest of three float64 values.
func Min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

// CeilPositive rounds a real period count up to a whole number of months with a
// floor of 1. Non-finite and non-positive inputs also yield 1.
func CeilPositive(val float64) int {
	if math.IsNaN(val) || math.IsInf(val, 0) || val <= 0 {
		return 1
	}
	n := int(math.Ceil(val))
	if n < 1 {
		return 1
	}
	return n
}

// ToPercentage converts a fraction into a percentage value (0.03 -> 3).
func ToPercentage(fraction float64) float64 {
	return fraction * constants.PercentageMultiplier
}

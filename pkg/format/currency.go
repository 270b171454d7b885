// Package format renders amounts and rates for human-readable output.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}

// Percent renders an annual rate fraction as a percentage with the given number
// of decimals (e.g., 0.0325 with 2 decimals is "3.25%").
func Percent(rate float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return fmt.Sprintf("%.*f%%", decimals, rate*constants.PercentageMultiplier)
}

// Years renders a duration in years with one decimal, or Missing when absent.
func Years(years *float64) string {
	if years == nil {
		return Missing
	}
	return fmt.Sprintf("%.1f", *years)
}

// Month renders an optional month number, or Missing when absent.
func Month(month *int) string {
	if month == nil {
		return Missing
	}
	return fmt.Sprintf("%d", *month)
}

// Missing is shown in place of a value that does not exist.
const Missing = "—"

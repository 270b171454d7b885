// Package loans simulates the amortization of a mortgage with a fixed and a
// variable rate tranche and capped extra principal payments.
package loans

import (
	"math"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
)

// MonthlyRate converts an annual rate fraction to the monthly rate.
func MonthlyRate(annualRate float64) float64 {
	return annualRate / constants.MonthsPerYear
}

// Payment calculates the fixed payment that amortizes presentValue over the
// given number of periods at monthlyRate.
func Payment(monthlyRate float64, periods int, presentValue float64) float64 {
	if periods <= 0 || presentValue <= 0 {
		return 0
	}
	if monthlyRate == 0 {
		// For zero interest, simply divide the principal by term
		return presentValue / float64(periods)
	}
	return presentValue * monthlyRate / (1 - math.Pow(1+monthlyRate, -float64(periods)))
}

// Periods calculates the real-valued number of periods needed to pay off
// presentValue with the given payment at monthlyRate. Callers round up.
// It returns +Inf when the payment does not cover the interest.
func Periods(monthlyRate, payment, presentValue float64) float64 {
	if presentValue <= 0 {
		return 0
	}
	if payment <= 0 {
		return math.Inf(1)
	}
	if monthlyRate == 0 {
		return presentValue / payment
	}
	x := 1 - presentValue*monthlyRate/payment
	if x <= 0 {
		return math.Inf(1)
	}
	return -math.Log(x) / math.Log(1+monthlyRate)
}

// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"
	"testing"

	"github.com/iwvelando/mortgage-simulator/pkg/loans"
	"github.com/iwvelando/mortgage-simulator/pkg/output"
)

// FindReport finds a report by scenario name in the reports slice.
// Returns a pointer to the report if found, nil otherwise.
func FindReport(reports []output.Report, name string) *output.Report {
	for i := range reports {
		if reports[i].Name == name {
			return &reports[i]
		}
	}
	return nil
}

// FixedRateInputs returns a loan with a single rate over its whole term.
func FixedRateInputs(principal float64, termMonths int, annualRate float64) loans.LoanInputs {
	return loans.LoanInputs{
		Principal:       principal,
		TermMonths:      termMonths,
		FixedMonths:     termMonths,
		FixedAnnualRate: annualRate,
		AnnualCapRate:   1,
		YearMode:        loans.YearModeBlocks,
	}
}

// AssertNear fails the test when got differs from expected by more than tolerance.
func AssertNear(t testing.TB, label string, got, expected, tolerance float64) {
	t.Helper()
	if math.Abs(got-expected) > tolerance {
		t.Errorf("%s = %.4f, expected %.4f (tolerance %g)", label, got, expected, tolerance)
	}
}

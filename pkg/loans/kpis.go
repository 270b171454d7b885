package loans

import (
	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/mathutil"
	"gonum.org/v1/gonum/floats"
)

// ComputeKPIs aggregates the totals of a schedule and determines whether and
// when the loan was cancelled. floats.Sum may add in a different order than a
// row-by-row loop, so totals can differ from one in the last bits.
func ComputeKPIs(schedule []ScheduleRow) KPIs {
	interest := make([]float64, len(schedule))
	extra := make([]float64, len(schedule))
	payments := make([]float64, len(schedule))
	for i, row := range schedule {
		interest[i] = row.Interest
		extra[i] = row.ExtraApplied
		payments[i] = row.Payment
	}

	kpis := KPIs{
		TotalInterest:     floats.Sum(interest),
		TotalExtraApplied: floats.Sum(extra),
		TotalPayments:     floats.Sum(payments),
	}
	kpis.TotalPaymentsWithExtra = kpis.TotalPayments + kpis.TotalExtraApplied

	if len(schedule) == 0 {
		return kpis
	}
	last := schedule[len(schedule)-1]
	if mathutil.IsNearZero(last.ClosingBalance) {
		month := last.Month
		years := float64(month) / constants.MonthsPerYear
		kpis.CancellationMonth = &month
		kpis.YearsToCancellation = &years
	}
	return kpis
}

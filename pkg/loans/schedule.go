package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/datetime"
	"github.com/iwvelando/mortgage-simulator/pkg/mathutil"
	"go.uber.org/zap"
)

// Simulator produces amortization schedules. It holds no per-run state and is
// safe for concurrent use.
type Simulator struct {
	logger *zap.Logger
}

// NewSimulator creates a new simulator instance
func NewSimulator(logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{logger: logger}
}

// Simulate runs a simulation without logging.
func Simulate(inputs LoanInputs, entries []ExtraPaymentEntry) (Result, error) {
	return NewSimulator(nil).Simulate(inputs, entries)
}

// yearTagger maps a loan month to the tag of its cap year.
type yearTagger func(m int) int

func newYearTagger(inputs LoanInputs) (yearTagger, error) {
	if inputs.YearMode != YearModeNatural {
		return datetime.BlockYear, nil
	}
	start, err := datetime.ParseYearMonth(inputs.StartYearMonth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStartYearMonth, err)
	}
	return start.CalendarYear, nil
}

// Simulate steps through the loan month by month and returns the schedule
// and its KPIs. The inputs are assumed to be validated by the caller; the only
// error is an unparseable start year-month in natural year mode.
func (s *Simulator) Simulate(inputs LoanInputs, entries []ExtraPaymentEntry) (Result, error) {
	tagYear, err := newYearTagger(inputs)
	if err != nil {
		return Result{}, err
	}

	extraByMonth := GroupExtraPayments(entries)

	balance := inputs.Principal
	remainingTerm := inputs.TermMonths

	initialRate := inputs.VariableAnnualRate()
	if inputs.FixedMonths > 0 {
		initialRate = inputs.FixedAnnualRate
	}
	lastMonthlyRate := MonthlyRate(initialRate)
	currentPayment := Payment(lastMonthlyRate, remainingTerm, balance)

	var (
		yearBaseBalance      = balance
		yearAccumulatedExtra float64
		currentYearTag       int
		haveYearTag          bool
	)

	maxIterations := inputs.TermMonths + constants.RunawayMonths
	schedule := make([]ScheduleRow, 0, max(inputs.TermMonths, 0))

	for m := 1; m <= maxIterations && remainingTerm > 0 && !mathutil.IsNearZero(balance); m++ {
		var flags []Flag

		annualRate := inputs.AnnualRateForMonth(m)
		monthlyRate := MonthlyRate(annualRate)

		if !mathutil.WithinTolerance(monthlyRate, lastMonthlyRate, constants.RateChangeTolerance) {
			currentPayment = Payment(monthlyRate, remainingTerm, balance)
			s.logger.Debug(fmt.Sprintf("month %d: rate changed to %.4f%%, payment recalculated to %.2f",
				m, mathutil.ToPercentage(annualRate), currentPayment),
				zap.String("op", "loans.Simulate"),
			)
			lastMonthlyRate = monthlyRate
		}

		yearTag := tagYear(m)
		if !haveYearTag || yearTag != currentYearTag {
			yearBaseBalance = balance
			yearAccumulatedExtra = 0
			currentYearTag = yearTag
			haveYearTag = true
		}

		yearCap := inputs.AnnualCapRate * yearBaseBalance
		capRemaining := math.Max(0, yearCap-yearAccumulatedExtra)

		planned := extraByMonth[m]
		extraApplied := mathutil.Min3(planned.Amount, capRemaining, balance)
		extraNotApplied := planned.Amount - extraApplied
		if extraNotApplied > constants.ExtraTolerance {
			flags = append(flags, FlagCappedExtra)
			s.logger.Debug("Capping extra principal payment",
				zap.String("op", "loans.Simulate"),
				zap.Int("month", m),
				zap.Float64("requested", planned.Amount),
				zap.Float64("applied", extraApplied),
				zap.Float64("capRemaining", capRemaining))
		}
		yearAccumulatedExtra += extraApplied

		openingBalance := balance
		balance -= extraApplied
		balanceAfterExtra := balance

		if extraApplied > constants.ExtraTolerance && !mathutil.IsNearZero(balance) {
			switch effectiveMode(planned.Mode) {
			case ReducePayment:
				currentPayment = Payment(monthlyRate, remainingTerm, balance)
				lastMonthlyRate = monthlyRate
				s.logger.Debug(fmt.Sprintf("month %d: extra payment %.2f applied, payment reduced to %.2f",
					m, extraApplied, currentPayment),
					zap.String("op", "loans.Simulate"),
				)
			case ReduceTerm:
				remainingTerm = mathutil.CeilPositive(Periods(monthlyRate, currentPayment, balance))
				s.logger.Debug(fmt.Sprintf("month %d: extra payment %.2f applied, remaining term reduced to %d",
					m, extraApplied, remainingTerm),
					zap.String("op", "loans.Simulate"),
				)
			}
		}

		interest := balance * monthlyRate

		var payment, principal float64
		if currentPayment <= interest && !mathutil.IsNearZero(balance) {
			flags = append(flags, FlagPaymentInsufficient)
			payment = currentPayment
			principal = math.Max(0, currentPayment-interest)
		} else {
			// Caps the final payment to exactly close the loan.
			payment = math.Min(currentPayment, interest+balance)
			principal = math.Max(0, payment-interest)
		}

		balance = math.Max(0, balance-principal)

		schedule = append(schedule, ScheduleRow{
			Month:                m,
			Year:                 yearTag,
			AnnualRate:           annualRate,
			Payment:              payment,
			RemainingTerm:        remainingTerm,
			OpeningBalance:       openingBalance,
			BalanceAfterExtra:    balanceAfterExtra,
			ClosingBalance:       balance,
			Interest:             interest,
			PrincipalInPayment:   principal,
			ExtraPlanned:         planned.Amount,
			ExtraApplied:         extraApplied,
			ExtraNotApplied:      extraNotApplied,
			ExtraAccumulatedYear: yearAccumulatedExtra,
			YearCap:              yearCap,
			Flags:                flags,
		})

		remainingTerm--
	}

	result := Result{Schedule: schedule, KPIs: ComputeKPIs(schedule)}
	if !result.Converged() && len(schedule) > 0 {
		s.logger.Warn("schedule ended without cancelling the loan",
			zap.String("op", "loans.Simulate"),
			zap.Int("months", len(schedule)),
			zap.Float64("balance", schedule[len(schedule)-1].ClosingBalance),
		)
	}
	return result, nil
}

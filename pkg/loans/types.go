package loans

import (
	"errors"
	"slices"
)

// ExtraMode selects how an applied extra payment changes the loan.
type ExtraMode string

const (
	// ReducePayment keeps the remaining term and lowers the recurring payment.
	ReducePayment ExtraMode = "reduce-payment"
	// ReduceTerm keeps the recurring payment and shortens the remaining term.
	ReduceTerm ExtraMode = "reduce-term"
)

// YearMode defines the boundaries of the annual extra-payment cap window.
type YearMode string

const (
	// YearModeBlocks uses 12-month blocks counted from the first loan month.
	YearModeBlocks YearMode = "blocks"
	// YearModeNatural uses calendar years anchored on LoanInputs.StartYearMonth.
	YearModeNatural YearMode = "natural"
)

// Flag is an advisory marker attached to a schedule row.
type Flag string

const (
	// FlagCappedExtra marks a planned extra payment truncated by the annual cap
	// or the outstanding balance.
	FlagCappedExtra Flag = "CAPPED_EXTRA"
	// FlagPaymentInsufficient marks a month whose scheduled payment does not
	// cover the interest due.
	FlagPaymentInsufficient Flag = "PAYMENT_INSUFFICIENT"
)

// ErrInvalidStartYearMonth is returned when natural year mode is requested
// without a parseable start year-month.
var ErrInvalidStartYearMonth = errors.New("natural year mode requires a valid start year-month")

// LoanInputs holds the parameters of one simulation run. Rates are annual
// fractions, e.g. 0.03 for 3%.
type LoanInputs struct {
	Principal       float64  `json:"principal" yaml:"principal" mapstructure:"principal"`
	TermMonths      int      `json:"termMonths" yaml:"termMonths" mapstructure:"termMonths"`
	FixedMonths     int      `json:"fixedMonths" yaml:"fixedMonths" mapstructure:"fixedMonths"`
	FixedAnnualRate float64  `json:"fixedAnnualRate" yaml:"fixedAnnualRate" mapstructure:"fixedAnnualRate"`
	ReferenceRate   float64  `json:"referenceRate" yaml:"referenceRate" mapstructure:"referenceRate"`
	Spread          float64  `json:"spread" yaml:"spread" mapstructure:"spread"`
	AnnualCapRate   float64  `json:"annualCapRate" yaml:"annualCapRate" mapstructure:"annualCapRate"`
	YearMode        YearMode `json:"yearMode" yaml:"yearMode" mapstructure:"yearMode"`
	StartYearMonth  string   `json:"startYearMonth,omitempty" yaml:"startYearMonth,omitempty" mapstructure:"startYearMonth"`
}

// VariableAnnualRate returns the annual rate applied after the fixed tranche.
func (in LoanInputs) VariableAnnualRate() float64 {
	return in.ReferenceRate + in.Spread
}

// AnnualRateForMonth returns the annual rate in effect for the 1-based month m.
func (in LoanInputs) AnnualRateForMonth(m int) float64 {
	if m <= in.FixedMonths {
		return in.FixedAnnualRate
	}
	return in.VariableAnnualRate()
}

// ExtraPaymentEntry is an out-of-schedule principal payment planned for a
// given loan month.
type ExtraPaymentEntry struct {
	ID      string    `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Month   int       `json:"month" yaml:"month" mapstructure:"month"`
	Amount  float64   `json:"amount" yaml:"amount" mapstructure:"amount"`
	Mode    ExtraMode `json:"mode" yaml:"mode" mapstructure:"mode"`
	Comment string    `json:"comment,omitempty" yaml:"comment,omitempty" mapstructure:"comment"`
}

// ScheduleRow holds the values of one simulated month.
type ScheduleRow struct {
	Month                int     `json:"month"`
	Year                 int     `json:"year"`
	AnnualRate           float64 `json:"annualRate"`
	Payment              float64 `json:"payment"`
	RemainingTerm        int     `json:"remainingTerm"`
	OpeningBalance       float64 `json:"openingBalance"`
	BalanceAfterExtra    float64 `json:"balanceAfterExtra"`
	ClosingBalance       float64 `json:"closingBalance"`
	Interest             float64 `json:"interest"`
	PrincipalInPayment   float64 `json:"principalInPayment"`
	ExtraPlanned         float64 `json:"extraPlanned"`
	ExtraApplied         float64 `json:"extraApplied"`
	ExtraNotApplied      float64 `json:"extraNotApplied"`
	ExtraAccumulatedYear float64 `json:"extraAccumulatedYear"`
	YearCap              float64 `json:"yearCap"`
	Flags                []Flag  `json:"flags,omitempty"`
}

// HasFlag reports whether the row carries the given advisory flag.
func (r ScheduleRow) HasFlag(flag Flag) bool {
	return slices.Contains(r.Flags, flag)
}

// KPIs aggregates a schedule. CancellationMonth and YearsToCancellation are
// nil when the schedule does not end with a cancelled loan.
type KPIs struct {
	TotalInterest          float64  `json:"totalInterest"`
	TotalExtraApplied      float64  `json:"totalExtraApplied"`
	TotalPayments          float64  `json:"totalPayments"`
	TotalPaymentsWithExtra float64  `json:"totalPaymentsWithExtra"`
	CancellationMonth      *int     `json:"cancellationMonth"`
	YearsToCancellation    *float64 `json:"yearsToCancellation"`
}

// Result is the output of a simulation run.
type Result struct {
	Schedule []ScheduleRow `json:"schedule"`
	KPIs     KPIs          `json:"kpis"`
}

// Converged reports whether the loan was fully cancelled within the schedule.
func (r Result) Converged() bool {
	return r.KPIs.CancellationMonth != nil
}

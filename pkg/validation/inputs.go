package validation

import (
	"fmt"

	"github.com/iwvelando/mortgage-simulator/pkg/datetime"
	"github.com/iwvelando/mortgage-simulator/pkg/loans"
)

// ValidateInputs checks loan parameters before a simulation and returns one
// message per problem found. An empty result means the inputs can be simulated.
// The reference rate may be negative as long as reference plus spread is not,
// and only when the loan has a variable tranche.
func ValidateInputs(inputs loans.LoanInputs) []string {
	var errs []string

	if inputs.Principal <= 0 {
		errs = append(errs, "principal must be greater than 0")
	}
	if inputs.TermMonths < 1 {
		errs = append(errs, "term must be at least 1 month")
	}
	if inputs.FixedMonths > inputs.TermMonths {
		errs = append(errs, "fixed tranche cannot exceed the total term")
	}
	if inputs.FixedMonths < 0 {
		errs = append(errs, "fixed tranche cannot be negative")
	}
	if inputs.FixedAnnualRate < 0 {
		errs = append(errs, "fixed rate cannot be negative")
	}
	if inputs.Spread < 0 {
		errs = append(errs, "spread cannot be negative")
	} else if inputs.FixedMonths < inputs.TermMonths && inputs.VariableAnnualRate() < 0 {
		errs = append(errs, "variable rate (reference + spread) cannot be negative")
	}
	if inputs.AnnualCapRate < 0 || inputs.AnnualCapRate > 1 {
		errs = append(errs, "annual extra payment cap must be between 0% and 100%")
	}

	switch inputs.YearMode {
	case loans.YearModeBlocks, "":
	case loans.YearModeNatural:
		if inputs.StartYearMonth == "" {
			errs = append(errs, "natural year mode requires a start year-month")
		} else if _, err := datetime.ParseYearMonth(inputs.StartYearMonth); err != nil {
			errs = append(errs, fmt.Sprintf("start year-month: %v", err))
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown year mode %q, expected %s or %s",
			inputs.YearMode, loans.YearModeBlocks, loans.YearModeNatural))
	}

	return errs
}

// ValidateExtraPayments checks planned extra payments and returns one message
// per invalid entry. Entries planned after the nominal term are reported since
// they only apply if the loan runs past it.
func ValidateExtraPayments(entries []loans.ExtraPaymentEntry, termMonths int) []string {
	var errs []string

	for i, entry := range entries {
		label := fmt.Sprintf("extra payment %d", i+1)
		if entry.Comment != "" {
			label = fmt.Sprintf("extra payment %d (%s)", i+1, entry.Comment)
		}

		if entry.Month < 1 {
			errs = append(errs, fmt.Sprintf("%s: month must be at least 1, got %d", label, entry.Month))
		} else if termMonths > 0 && entry.Month > termMonths {
			errs = append(errs, fmt.Sprintf("%s: month %d is beyond the %d month term", label, entry.Month, termMonths))
		}
		if entry.Amount < 0 {
			errs = append(errs, fmt.Sprintf("%s: amount cannot be negative", label))
		}
		switch entry.Mode {
		case loans.ReducePayment, loans.ReduceTerm:
		default:
			errs = append(errs, fmt.Sprintf("%s: unknown mode %q, expected %s or %s",
				label, entry.Mode, loans.ReducePayment, loans.ReduceTerm))
		}
	}

	return errs
}

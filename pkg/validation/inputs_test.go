package validation

import (
	"strings"
	"testing"

	"github.com/iwvelando/mortgage-simulator/pkg/loans"
)

func validInputs() loans.LoanInputs {
	return loans.LoanInputs{
		Principal:       200000,
		TermMonths:      360,
		FixedMonths:     60,
		FixedAnnualRate: 0.025,
		ReferenceRate:   0.03,
		Spread:          0.008,
		AnnualCapRate:   0.15,
		YearMode:        loans.YearModeBlocks,
	}
}

func TestValidateInputs(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(in *loans.LoanInputs)
		contains []string
	}{
		{
			name:   "Valid inputs",
			modify: func(in *loans.LoanInputs) {},
		},
		{
			name:   "Negative reference rate allowed",
			modify: func(in *loans.LoanInputs) { in.ReferenceRate = -0.005 },
		},
		{
			name:   "Empty year mode treated as blocks",
			modify: func(in *loans.LoanInputs) { in.YearMode = "" },
		},
		{
			name: "Natural mode with start",
			modify: func(in *loans.LoanInputs) {
				in.YearMode = loans.YearModeNatural
				in.StartYearMonth = "2025-03"
			},
		},
		{
			name:     "Zero principal",
			modify:   func(in *loans.LoanInputs) { in.Principal = 0 },
			contains: []string{"principal must be greater than 0"},
		},
		{
			name:     "Zero term",
			modify:   func(in *loans.LoanInputs) { in.TermMonths = 0; in.FixedMonths = 0 },
			contains: []string{"term must be at least 1 month"},
		},
		{
			name:     "Fixed tranche longer than term",
			modify:   func(in *loans.LoanInputs) { in.FixedMonths = 361 },
			contains: []string{"fixed tranche cannot exceed the total term"},
		},
		{
			name:     "Negative fixed tranche",
			modify:   func(in *loans.LoanInputs) { in.FixedMonths = -1 },
			contains: []string{"fixed tranche cannot be negative"},
		},
		{
			name:     "Negative fixed rate",
			modify:   func(in *loans.LoanInputs) { in.FixedAnnualRate = -0.01 },
			contains: []string{"fixed rate cannot be negative"},
		},
		{
			name:     "Negative spread",
			modify:   func(in *loans.LoanInputs) { in.Spread = -0.01 },
			contains: []string{"spread cannot be negative"},
		},
		{
			name:     "Negative total variable rate",
			modify:   func(in *loans.LoanInputs) { in.ReferenceRate = -0.02 },
			contains: []string{"variable rate (reference + spread) cannot be negative"},
		},
		{
			name: "Negative variable rate unused by fully fixed loan",
			modify: func(in *loans.LoanInputs) {
				in.ReferenceRate = -0.02
				in.FixedMonths = in.TermMonths
			},
		},
		{
			name:     "Cap above one",
			modify:   func(in *loans.LoanInputs) { in.AnnualCapRate = 1.5 },
			contains: []string{"between 0% and 100%"},
		},
		{
			name:     "Negative cap",
			modify:   func(in *loans.LoanInputs) { in.AnnualCapRate = -0.1 },
			contains: []string{"between 0% and 100%"},
		},
		{
			name:     "Natural mode without start",
			modify:   func(in *loans.LoanInputs) { in.YearMode = loans.YearModeNatural },
			contains: []string{"natural year mode requires a start year-month"},
		},
		{
			name: "Natural mode with unparseable start",
			modify: func(in *loans.LoanInputs) {
				in.YearMode = loans.YearModeNatural
				in.StartYearMonth = "March 2025"
			},
			contains: []string{"start year-month"},
		},
		{
			name:     "Unknown year mode",
			modify:   func(in *loans.LoanInputs) { in.YearMode = "fiscal" },
			contains: []string{"unknown year mode"},
		},
		{
			name: "Several problems reported together",
			modify: func(in *loans.LoanInputs) {
				in.Principal = -1
				in.Spread = -0.01
			},
			contains: []string{"principal must be greater than 0", "spread cannot be negative"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := validInputs()
			tt.modify(&inputs)

			errs := ValidateInputs(inputs)
			if len(tt.contains) == 0 {
				if len(errs) != 0 {
					t.Errorf("ValidateInputs() = %v, expected no errors", errs)
				}
				return
			}
			if len(errs) != len(tt.contains) {
				t.Errorf("ValidateInputs() returned %d errors %v, expected %d", len(errs), errs, len(tt.contains))
			}
			joined := strings.Join(errs, "\n")
			for _, want := range tt.contains {
				if !strings.Contains(joined, want) {
					t.Errorf("ValidateInputs() = %v, expected a message containing %q", errs, want)
				}
			}
		})
	}
}

func TestValidateExtraPayments(t *testing.T) {
	tests := []struct {
		name        string
		entries     []loans.ExtraPaymentEntry
		expectCount int
		contains    string
	}{
		{
			name:        "No entries",
			entries:     nil,
			expectCount: 0,
		},
		{
			name: "Valid entries",
			entries: []loans.ExtraPaymentEntry{
				{Month: 1, Amount: 1000, Mode: loans.ReduceTerm},
				{Month: 360, Amount: 0, Mode: loans.ReducePayment},
			},
			expectCount: 0,
		},
		{
			name: "Month zero",
			entries: []loans.ExtraPaymentEntry{
				{Month: 0, Amount: 1000, Mode: loans.ReduceTerm},
			},
			expectCount: 1,
			contains:    "month must be at least 1",
		},
		{
			name: "Month beyond term",
			entries: []loans.ExtraPaymentEntry{
				{Month: 400, Amount: 1000, Mode: loans.ReduceTerm},
			},
			expectCount: 1,
			contains:    "beyond the 360 month term",
		},
		{
			name: "Negative amount",
			entries: []loans.ExtraPaymentEntry{
				{Month: 12, Amount: -5, Mode: loans.ReducePayment},
			},
			expectCount: 1,
			contains:    "amount cannot be negative",
		},
		{
			name: "Unknown mode",
			entries: []loans.ExtraPaymentEntry{
				{Month: 12, Amount: 5, Mode: "lump-sum"},
			},
			expectCount: 1,
			contains:    "unknown mode",
		},
		{
			name: "Comment used as label",
			entries: []loans.ExtraPaymentEntry{
				{Month: 12, Amount: -5, Mode: loans.ReducePayment, Comment: "bonus"},
			},
			expectCount: 1,
			contains:    "(bonus)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateExtraPayments(tt.entries, 360)
			if len(errs) != tt.expectCount {
				t.Fatalf("ValidateExtraPayments() = %v, expected %d errors", errs, tt.expectCount)
			}
			if tt.contains != "" && !strings.Contains(errs[0], tt.contains) {
				t.Errorf("ValidateExtraPayments() = %q, expected it to contain %q", errs[0], tt.contains)
			}
		})
	}
}

package simulation

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-simulator/internal/cache"
	"github.com/iwvelando/mortgage-simulator/internal/config"
	"github.com/iwvelando/mortgage-simulator/pkg/loans"
	"go.uber.org/zap"
)

func baseLoan() loans.LoanInputs {
	return loans.LoanInputs{
		Principal:       200000,
		TermMonths:      360,
		FixedMonths:     360,
		FixedAnnualRate: 0.03,
		AnnualCapRate:   0.2,
		YearMode:        loans.YearModeBlocks,
	}
}

func TestSimulateUsesCache(t *testing.T) {
	ctx := context.Background()
	memory := cache.NewMemory(time.Minute)
	runner := NewRunner(zap.NewNop(), memory)
	entries := []loans.ExtraPaymentEntry{{Month: 12, Amount: 10000, Mode: loans.ReduceTerm}}

	first, cached, err := runner.Simulate(ctx, baseLoan(), entries)
	if err != nil {
		t.Fatalf("Simulate() unexpected error = %v", err)
	}
	if cached {
		t.Errorf("Simulate() first call reported a cache hit")
	}
	if memory.Len() != 1 {
		t.Errorf("cache holds %d entries, expected 1", memory.Len())
	}

	second, cached, err := runner.Simulate(ctx, baseLoan(), entries)
	if err != nil {
		t.Fatalf("Simulate() unexpected error = %v", err)
	}
	if !cached {
		t.Errorf("Simulate() second call missed the cache")
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Simulate() cached result differs from computed result")
	}
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, []byte) error { return errors.New("cache down") }

func (failingCache) Close() error { return nil }

func TestSimulateIgnoresCacheFailures(t *testing.T) {
	runner := NewRunner(nil, failingCache{})

	result, cached, err := runner.Simulate(context.Background(), baseLoan(), nil)
	if err != nil {
		t.Fatalf("Simulate() unexpected error = %v", err)
	}
	if cached || len(result.Schedule) != 360 {
		t.Errorf("Simulate() = %d rows cached=%v, expected 360 computed rows", len(result.Schedule), cached)
	}
}

func TestSimulateWithoutCache(t *testing.T) {
	runner := NewRunner(nil, nil)
	for i := 0; i < 2; i++ {
		_, cached, err := runner.Simulate(context.Background(), baseLoan(), nil)
		if err != nil || cached {
			t.Errorf("Simulate() = cached %v, %v, expected computed result", cached, err)
		}
	}
}

func TestRunScenarios(t *testing.T) {
	natural := baseLoan()
	natural.YearMode = loans.YearModeNatural
	natural.StartYearMonth = "2025-06"

	conf := config.Configuration{
		Scenarios: []config.Scenario{
			{Name: "base", Active: true, Loan: baseLoan()},
			{Name: "draft", Active: false, Loan: baseLoan()},
			{
				Name:          "natural",
				Active:        true,
				Loan:          natural,
				ExtraPayments: []loans.ExtraPaymentEntry{{Month: 7, Amount: 30000, Mode: loans.ReducePayment}},
			},
		},
	}

	reports, err := NewRunner(nil, nil).RunScenarios(context.Background(), conf)
	if err != nil {
		t.Fatalf("RunScenarios() unexpected error = %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("RunScenarios() returned %d reports, expected 2", len(reports))
	}
	if reports[0].Name != "base" || reports[1].Name != "natural" {
		t.Errorf("RunScenarios() names = %s, %s", reports[0].Name, reports[1].Name)
	}
	if reports[1].Result.Schedule[0].Year != 2025 || reports[1].Result.Schedule[7].Year != 2026 {
		t.Errorf("natural scenario year tags = %d, %d, expected 2025, 2026",
			reports[1].Result.Schedule[0].Year, reports[1].Result.Schedule[7].Year)
	}
	if reports[1].Inputs.StartYearMonth != "2025-06" {
		t.Errorf("report inputs not carried through")
	}
}

func TestRunScenariosError(t *testing.T) {
	broken := baseLoan()
	broken.YearMode = loans.YearModeNatural

	conf := config.Configuration{
		Scenarios: []config.Scenario{
			{Name: "ok", Active: true, Loan: baseLoan()},
			{Name: "broken", Active: true, Loan: broken},
		},
	}

	reports, err := NewRunner(nil, nil).RunScenarios(context.Background(), conf)
	if !errors.Is(err, loans.ErrInvalidStartYearMonth) {
		t.Errorf("RunScenarios() error = %v, expected %v", err, loans.ErrInvalidStartYearMonth)
	}
	if len(reports) != 1 {
		t.Errorf("RunScenarios() returned %d reports before failing, expected 1", len(reports))
	}
}

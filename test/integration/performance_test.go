package integration

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-simulator/internal/cache"
	"github.com/iwvelando/mortgage-simulator/internal/config"
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/pkg/loans"
	"go.uber.org/zap"
)

// TestRunner is a simple test runner for debugging
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// heavyScenario is a 40 year mixed-rate loan with a monthly extra payment.
func heavyScenario() (loans.LoanInputs, []loans.ExtraPaymentEntry) {
	inputs := loans.LoanInputs{
		Principal:       600000,
		TermMonths:      480,
		FixedMonths:     120,
		FixedAnnualRate: 0.025,
		ReferenceRate:   0.032,
		Spread:          0.009,
		AnnualCapRate:   0.1,
		YearMode:        loans.YearModeNatural,
		StartYearMonth:  "2024-07",
	}
	entries := make([]loans.ExtraPaymentEntry, 0, 480)
	for m := 1; m <= 480; m++ {
		mode := loans.ReduceTerm
		if m%2 == 0 {
			mode = loans.ReducePayment
		}
		entries = append(entries, loans.ExtraPaymentEntry{Month: m, Amount: 750, Mode: mode})
	}
	return inputs, entries
}

// TestPerformance tests performance characteristics
func TestPerformance(t *testing.T) {
	logger := zap.NewNop()

	start := time.Now()
	conf, err := config.LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}
	loadTime := time.Since(start)

	runner := simulation.NewRunner(logger, nil)

	start = time.Now()
	reports, err := runner.RunScenarios(context.Background(), *conf)
	if err != nil {
		t.Fatalf("RunScenarios failed: %v", err)
	}
	scenarioTime := time.Since(start)

	inputs, entries := heavyScenario()
	start = time.Now()
	for i := 0; i < 100; i++ {
		if _, _, err := runner.Simulate(context.Background(), inputs, entries); err != nil {
			t.Fatalf("Simulate failed on iteration %d: %v", i, err)
		}
	}
	heavyTime := time.Since(start)

	totalTime := loadTime + scenarioTime + heavyTime

	t.Logf("Performance metrics:")
	t.Logf("  Load config: %v", loadTime)
	t.Logf("  Simulate configured scenarios: %v", scenarioTime)
	t.Logf("  Simulate heavy scenario x100: %v", heavyTime)
	t.Logf("  Total time: %v", totalTime)

	if totalTime > 10*time.Second {
		t.Errorf("Total processing time %v exceeds 10 second threshold", totalTime)
	}
	if len(reports) != 2 {
		t.Errorf("Expected 2 reports, got %d", len(reports))
	}
}

// TestCacheSpeedsUpRepeatedRuns checks that a cache hit returns the stored result.
func TestCacheSpeedsUpRepeatedRuns(t *testing.T) {
	memory := cache.NewMemory(time.Minute)
	runner := simulation.NewRunner(zap.NewNop(), memory)
	inputs, entries := heavyScenario()

	computed, cached, err := runner.Simulate(context.Background(), inputs, entries)
	if err != nil || cached {
		t.Fatalf("first Simulate() cached = %v, error = %v", cached, err)
	}

	for i := 0; i < 10; i++ {
		result, cached, err := runner.Simulate(context.Background(), inputs, entries)
		if err != nil {
			t.Fatalf("Simulate failed on iteration %d: %v", i, err)
		}
		if !cached {
			t.Fatalf("iteration %d was not served from the cache", i)
		}
		if len(result.Schedule) != len(computed.Schedule) {
			t.Fatalf("iteration %d: cached schedule has %d rows, expected %d", i, len(result.Schedule), len(computed.Schedule))
		}
	}

	if memory.Len() != 1 {
		t.Errorf("cache holds %d entries, expected 1", memory.Len())
	}
}

// TestDataConsistency validates that multiple runs produce identical results
func TestDataConsistency(t *testing.T) {
	var firstReports []loans.Result

	for run := 0; run < 3; run++ {
		reports := runTestConfig(t)

		results := make([]loans.Result, len(reports))
		for i, report := range reports {
			results[i] = report.Result
		}

		if run == 0 {
			firstReports = results
			continue
		}
		if !reflect.DeepEqual(results, firstReports) {
			t.Errorf("Run %d produced results that differ from the first run", run)
		}
	}
}

func BenchmarkSimulate(b *testing.B) {
	simulator := loans.NewSimulator(zap.NewNop())
	inputs, entries := heavyScenario()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := simulator.Simulate(inputs, entries); err != nil {
			b.Fatal(err)
		}
	}
}

// Package simulation runs configured scenarios through the amortization
// simulator, reusing cached results when available.
package simulation

import (
	"context"
	"fmt"

	"github.com/iwvelando/mortgage-simulator/internal/cache"
	"github.com/iwvelando/mortgage-simulator/internal/config"
	"github.com/iwvelando/mortgage-simulator/pkg/loans"
	"github.com/iwvelando/mortgage-simulator/pkg/output"
	"go.uber.org/zap"
)

// Runner simulates loans through a result cache.
type Runner struct {
	logger    *zap.Logger
	simulator *loans.Simulator
	cache     cache.Cache
}

// NewRunner creates a runner. A nil cache disables caching.
func NewRunner(logger *zap.Logger, c cache.Cache) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.Noop{}
	}
	return &Runner{
		logger:    logger,
		simulator: loans.NewSimulator(logger),
		cache:     c,
	}
}

// Simulate returns the result for the given loan and extra payments and
// whether it was served from the cache. Cache failures are logged and the
// result is computed instead.
func (r *Runner) Simulate(ctx context.Context, inputs loans.LoanInputs, entries []loans.ExtraPaymentEntry) (loans.Result, bool, error) {
	key, err := cache.Key(inputs, entries)
	if err != nil {
		r.logger.Warn("failed to derive cache key",
			zap.String("op", "simulation.Simulate"),
			zap.Error(err),
		)
	} else {
		result, ok, err := cache.GetResult(ctx, r.cache, key)
		if err != nil {
			r.logger.Warn("failed to read cached result",
				zap.String("op", "simulation.Simulate"),
				zap.String("key", key),
				zap.Error(err),
			)
		} else if ok {
			r.logger.Debug("serving cached result",
				zap.String("op", "simulation.Simulate"),
				zap.String("key", key),
			)
			return result, true, nil
		}
	}

	result, err := r.simulator.Simulate(inputs, entries)
	if err != nil {
		return loans.Result{}, false, err
	}

	if key != "" {
		if err := cache.SetResult(ctx, r.cache, key, result); err != nil {
			r.logger.Warn("failed to cache result",
				zap.String("op", "simulation.Simulate"),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	return result, false, nil
}

// RunScenarios simulates every active scenario of the configuration, in order.
func (r *Runner) RunScenarios(ctx context.Context, conf config.Configuration) ([]output.Report, error) {
	var reports []output.Report
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			r.logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "simulation.RunScenarios"),
			)
			continue
		}

		result, cached, err := r.Simulate(ctx, scenario.Loan, scenario.ExtraPayments)
		if err != nil {
			return reports, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}

		r.logger.Debug("simulated scenario",
			zap.String("op", "simulation.RunScenarios"),
			zap.String("scenario", scenario.Name),
			zap.Int("months", len(result.Schedule)),
			zap.Bool("converged", result.Converged()),
			zap.Bool("cached", cached),
		)
		reports = append(reports, output.Report{
			Name:   scenario.Name,
			Inputs: scenario.Loan,
			Result: result,
		})
	}
	return reports, nil
}

// Package cache stores simulation results keyed by a hash of their inputs.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/iwvelando/mortgage-simulator/internal/config"
	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/loans"
	"go.uber.org/zap"
)

// Cache holds serialized simulation results.
type Cache interface {
	// Get returns the value stored under key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// New builds the cache selected by the configuration. Unknown backends
// disable caching.
func New(cfg config.CacheConfig, logger *zap.Logger) (Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case constants.CacheBackendMemory:
		return NewMemory(cfg.TTL), nil
	case constants.CacheBackendRedis:
		return NewRedis(cfg.RedisAddress, cfg.RedisDB, cfg.TTL, logger)
	case "", constants.CacheBackendNone:
		return Noop{}, nil
	}

	logger.Warn("unknown cache backend, caching disabled",
		zap.String("op", "cache.New"),
		zap.String("backend", cfg.Backend),
	)
	return Noop{}, nil
}

// keyMaterial is the part of a simulation request that affects its result.
type keyMaterial struct {
	Inputs  loans.LoanInputs `json:"inputs"`
	Entries []keyEntry       `json:"entries"`
}

type keyEntry struct {
	Month  int             `json:"month"`
	Amount float64         `json:"amount"`
	Mode   loans.ExtraMode `json:"mode"`
}

// Key derives the cache key of a simulation request. Entry IDs and comments do
// not take part in it.
func Key(inputs loans.LoanInputs, entries []loans.ExtraPaymentEntry) (string, error) {
	material := keyMaterial{Inputs: inputs, Entries: make([]keyEntry, len(entries))}
	for i, entry := range entries {
		material.Entries[i] = keyEntry{Month: entry.Month, Amount: entry.Amount, Mode: entry.Mode}
	}

	data, err := json.Marshal(material)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key material: %w", err)
	}
	return constants.CacheKeyPrefix + strconv.FormatUint(xxhash.Sum64(data), 16), nil
}

// GetResult looks up and decodes a cached result.
func GetResult(ctx context.Context, c Cache, key string) (loans.Result, bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return loans.Result{}, false, err
	}
	var result loans.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return loans.Result{}, false, fmt.Errorf("failed to decode cached result %s: %w", key, err)
	}
	return result, true, nil
}

// SetResult encodes and stores a result.
func SetResult(ctx context.Context, c Cache, key string, result loans.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result for cache: %w", err)
	}
	return c.Set(ctx, key, data)
}

// Noop is a cache that never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(context.Context, string, []byte) error { return nil }

func (Noop) Close() error { return nil }

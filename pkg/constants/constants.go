// Package constants provides shared constants for the mortgage-simulator application.
package constants

import "time"

// DateTimeLayout is the year-month format expected in config files and
// scenario documents, e.g. 2025-03.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Simulation thresholds
const (
	// NearZeroBalance is the balance at or below which a loan counts as cancelled.
	NearZeroBalance = 0.01

	// ExtraTolerance is the smallest extra payment amount treated as applied
	// or truncated.
	ExtraTolerance = 0.001

	// RateChangeTolerance is the minimum monthly rate difference that triggers a
	// payment recalculation.
	RateChangeTolerance = 1e-12

	// RunawayMonths is added to the nominal term to bound the simulation loop.
	RunawayMonths = 1000
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Scenario document constants
const (
	// ScenarioVersion is the version written into exported scenario documents.
	ScenarioVersion = "1.0"

	// ScenarioFileExtension is the extension used by the scenario file store.
	ScenarioFileExtension = ".json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

// Cache constants
const (
	// CacheBackendNone disables result caching
	CacheBackendNone = "none"

	// CacheBackendMemory keeps results in process memory
	CacheBackendMemory = "memory"

	// CacheBackendRedis stores results in Redis
	CacheBackendRedis = "redis"

	// DefaultRedisAddress is the default Redis endpoint
	DefaultRedisAddress = "localhost:6379"

	// CacheKeyPrefix namespaces cache entries
	CacheKeyPrefix = "mortgage-simulator:result:"

	// DefaultCacheTTL is how long a cached result stays valid
	DefaultCacheTTL = 10 * time.Minute
)

// Package config defines the data structures related to configuration and
// includes functions for loading, parsing and validating the config.
package config

import (
	"fmt"
	"io"
	"time"

	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/loans"
	"github.com/iwvelando/mortgage-simulator/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for mortgage-simulator.
type Configuration struct {
	Logging   LoggingConfig `yaml:"logging,omitempty" mapstructure:"logging"`
	Output    OutputConfig  `yaml:"output,omitempty" mapstructure:"output"`
	Cache     CacheConfig   `yaml:"cache,omitempty" mapstructure:"cache"`
	Scenarios []Scenario    `yaml:"scenarios" mapstructure:"scenarios"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// CacheConfig selects where simulation results are cached.
type CacheConfig struct {
	Backend      string        `yaml:"backend,omitempty" mapstructure:"backend"` // none, memory, redis
	RedisAddress string        `yaml:"redisAddress,omitempty" mapstructure:"redisAddress"`
	RedisDB      int           `yaml:"redisDB,omitempty" mapstructure:"redisDB"`
	TTL          time.Duration `yaml:"ttl,omitempty" mapstructure:"ttl"`
}

// Scenario holds one loan and its planned extra payments.
type Scenario struct {
	Name          string                    `yaml:"name" mapstructure:"name"`
	Active        bool                      `yaml:"active" mapstructure:"active"`
	Loan          loans.LoanInputs          `yaml:"loan" mapstructure:"loan"`
	ExtraPayments []loans.ExtraPaymentEntry `yaml:"extraPayments,omitempty" mapstructure:"extraPayments"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults()
	return &configuration, nil
}

// Default returns a configuration without scenarios and with every default applied.
func Default() *Configuration {
	configuration := &Configuration{}
	configuration.applyDefaults()
	return configuration
}

func (c *Configuration) applyDefaults() {
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = constants.CacheBackendNone
	}
	if c.Cache.RedisAddress == "" {
		c.Cache.RedisAddress = constants.DefaultRedisAddress
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = constants.DefaultCacheTTL
	}
	for i := range c.Scenarios {
		if c.Scenarios[i].Loan.YearMode == "" {
			c.Scenarios[i].Loan.YearMode = loans.YearModeBlocks
		}
	}
}

// ActiveScenarios returns the scenarios marked active, in configuration order.
func (c *Configuration) ActiveScenarios() []Scenario {
	var active []Scenario
	for _, scenario := range c.Scenarios {
		if scenario.Active {
			active = append(active, scenario)
		}
	}
	return active
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if len(c.ActiveScenarios()) == 0 {
		warnings = append(warnings, "no active scenarios configured")
	}

	switch c.Cache.Backend {
	case "", constants.CacheBackendNone, constants.CacheBackendMemory, constants.CacheBackendRedis:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown cache backend %q, caching disabled", c.Cache.Backend))
	}

	seen := make(map[string]bool)
	for _, scenario := range c.Scenarios {
		if scenario.Name == "" {
			warnings = append(warnings, "scenario without a name")
		} else if seen[scenario.Name] {
			warnings = append(warnings, fmt.Sprintf("duplicate scenario name '%s'", scenario.Name))
		}
		seen[scenario.Name] = true

		if !scenario.Active {
			continue
		}
		for _, msg := range validation.ValidateInputs(scenario.Loan) {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s': %s", scenario.Name, msg))
		}
		for _, msg := range validation.ValidateExtraPayments(scenario.ExtraPayments, scenario.Loan.TermMonths) {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s': %s", scenario.Name, msg))
		}
	}

	return warnings
}

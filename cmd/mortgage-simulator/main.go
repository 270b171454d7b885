package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/iwvelando/mortgage-simulator/internal/cache"
	"github.com/iwvelando/mortgage-simulator/internal/config"
	"github.com/iwvelando/mortgage-simulator/internal/logging"
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/output"
	"github.com/iwvelando/mortgage-simulator/pkg/scenario"
	"github.com/iwvelando/mortgage-simulator/pkg/validation"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	scenarioFile := flag.String("scenario", "", "simulate an exported scenario document (json or yaml) instead of the configured scenarios")
	exportFile := flag.String("export", "", "write the first active scenario to this path as a scenario document and exit")
	flag.Parse()

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("{\"op\": \"main\", \"level\": \"warn\", \"msg\": \"failed to load .env\", \"error\": \"%v\"}\n", err)
	}

	conf, err := loadConfiguration(*configLocation, *scenarioFile)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if *exportFile != "" {
		exportScenario(logger, conf, *exportFile)
		return
	}

	for _, s := range conf.ActiveScenarios() {
		if errs := validation.ValidateInputs(s.Loan); len(errs) > 0 {
			logger.Fatal(fmt.Sprintf("scenario %s has invalid inputs", s.Name),
				zap.String("op", "main"),
				zap.Strings("errors", errs),
			)
		}
	}

	resultCache, err := cache.New(conf.Cache, logger)
	if err != nil {
		logger.Fatal("failed to initialize result cache",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer func() {
		_ = resultCache.Close()
	}()

	reports, err := simulation.NewRunner(logger, resultCache).RunScenarios(context.Background(), *conf)
	if err != nil {
		logger.Fatal("failed to simulate scenarios",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := output.Render(os.Stdout, outputFormat, reports); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// loadConfiguration reads the configuration file. When a scenario document is
// given, it replaces the configured scenarios and the configuration file becomes
// optional.
func loadConfiguration(configPath, scenarioPath string) (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(configPath)
	if err != nil {
		if scenarioPath == "" {
			return nil, err
		}
		if _, statErr := os.Stat(configPath); !errors.Is(statErr, fs.ErrNotExist) {
			return nil, err
		}
		conf = config.Default()
	}

	if scenarioPath == "" {
		return conf, nil
	}

	doc, err := scenario.LoadFile(scenarioPath)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(scenarioPath), filepath.Ext(scenarioPath))
	conf.Scenarios = []config.Scenario{{
		Name:          name,
		Active:        true,
		Loan:          doc.Inputs,
		ExtraPayments: doc.ExtraPayments,
	}}
	return conf, nil
}

func exportScenario(logger *zap.Logger, conf *config.Configuration, path string) {
	active := conf.ActiveScenarios()
	if len(active) == 0 {
		logger.Fatal("no active scenario to export",
			zap.String("op", "main.exportScenario"),
		)
	}

	doc := scenario.NewDocument(active[0].Loan, active[0].ExtraPayments)
	if err := scenario.WriteFile(path, doc); err != nil {
		logger.Fatal("failed to export scenario",
			zap.String("op", "main.exportScenario"),
			zap.String("path", path),
			zap.Error(err),
		)
	}
	logger.Info(fmt.Sprintf("exported scenario %s to %s", active[0].Name, path),
		zap.String("op", "main.exportScenario"),
	)
}

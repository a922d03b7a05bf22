// Package config defines the operation-file structure and includes functions
// for loading, normalizing, and validating it before anything reaches the
// computation engine.
package config

import (
	"fmt"

	"github.com/fbonnet/fiscal-forecast/internal/domain"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Configuration holds everything one fiscal-forecast run needs: the
// operations to compute, the fiscal context, and the treasury anchor, plus
// logging and output options.
type Configuration struct {
	Operations []domain.Operation    `yaml:"operations"`
	Context    domain.FiscalContext  `yaml:"context"`
	Anchor     domain.TreasuryAnchor `yaml:"anchor"`
	Logging    LoggingConfig         `yaml:"logging,omitempty"`
	Output     OutputConfig          `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// operation file there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.Normalize()
	return &configuration, nil
}

// Normalize fills generated identifiers and defaults so hand-written
// operation files stay terse: missing entry and operation ids get UUIDs, the
// solver defaults to the iterative mode, and the VAT payment frequency falls
// back to the context's VAT regime.
func (conf *Configuration) Normalize() {
	for i := range conf.Operations {
		op := &conf.Operations[i]
		if op.ID == "" {
			op.ID = uuid.NewString()
		}
		if op.VATPaymentFrequency == "" {
			op.VATPaymentFrequency = conf.Context.VATRegime
		}
		for j := range op.Entries {
			if op.Entries[j].ID == "" {
				op.Entries[j].ID = uuid.NewString()
			}
		}
	}
	if conf.Context.Options.SolverMode == "" {
		conf.Context.Options.SolverMode = domain.SolverIteratif
	}
	if conf.Context.Household.Parts == 0 {
		conf.Context.Household.Parts = 100
	}
}

// ValidateConfiguration performs boundary validation of the loaded file and
// returns non-fatal warnings alongside the first fatal error.
func (conf *Configuration) ValidateConfiguration() ([]string, error) {
	if err := domain.ValidateContext(&conf.Context); err != nil {
		return nil, err
	}
	if len(conf.Operations) == 0 {
		return nil, domain.NewInvalidOperation("", "no operations in configuration")
	}

	var warnings []string
	for i := range conf.Operations {
		op := &conf.Operations[i]
		if err := domain.ValidateOperation(op); err != nil {
			return warnings, err
		}
		if op.IsScenario && op.ScenarioName == "" {
			warnings = append(warnings, fmt.Sprintf("scenario operation %s has no scenario name", op.ID))
		}
		if op.Year != conf.Context.TaxYear {
			warnings = append(warnings, fmt.Sprintf("operation %s year %d differs from tax year %d and will be ignored", op.ID, op.Year, conf.Context.TaxYear))
		}
	}
	return warnings, nil
}

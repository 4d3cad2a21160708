// Package config loads the YAML run configuration and the process-level
// environment settings. Parsing happens entirely outside the core: the
// engine only ever consumes the typed structures produced here.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"

	"impactproof/domain/check"
	"impactproof/domain/core"
	"impactproof/domain/record"
)

// DatasetConfig locates the input dataset.
type DatasetConfig struct {
	Source string `yaml:"source"` // "file" (csv/xlsx by extension) or "postgres"
	Path   string `yaml:"path"`
	Sheet  string `yaml:"sheet,omitempty"` // xlsx only; first sheet when empty
	DSN    string `yaml:"dsn,omitempty"`
	Query  string `yaml:"query,omitempty"`
}

// ChecksConfig enables and parameterizes the four checks. A nil section
// disables its check. Declaration order is the canonical order below and
// drives every declaration-order tie-break downstream.
type ChecksConfig struct {
	Completeness *check.CompletenessConfig `yaml:"completeness,omitempty"`
	Duplicates   *check.DuplicatesConfig   `yaml:"duplicates,omitempty"`
	Consistency  *check.ConsistencyConfig  `yaml:"consistency,omitempty"`
	Drift        *check.DriftConfig        `yaml:"drift,omitempty"`
}

// OutputConfig controls where and how run outputs are written.
type OutputConfig struct {
	Path        string `yaml:"path"`
	MaxExamples int    `yaml:"max_examples,omitempty"`
}

// RunConfig is one parsed impactproof.yaml.
type RunConfig struct {
	Dataset       DatasetConfig       `yaml:"dataset"`
	Fields        record.Roles        `yaml:"fields"`
	MissingLabels record.MissingVocab `yaml:"missing_labels"`
	Checks        ChecksConfig        `yaml:"checks"`
	Output        OutputConfig        `yaml:"output"`
	Parallel      bool                `yaml:"parallel,omitempty"`
}

// Load reads and validates a run configuration file
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates run configuration bytes
func Parse(data []byte) (*RunConfig, error) {
	cfg := &RunConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfig, err)
	}
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *RunConfig) {
	if cfg.Output.Path == "" {
		cfg.Output.Path = "outputs"
	}
	if cfg.Output.MaxExamples == 0 {
		cfg.Output.MaxExamples = 5
	}
	if cfg.Fields == nil {
		cfg.Fields = record.Roles{}
	}
	if cfg.Checks.Drift != nil && cfg.Checks.Drift.Period == "" {
		cfg.Checks.Drift.Period = check.PeriodMonthly
	}
}

func validate(cfg *RunConfig) error {
	switch cfg.Dataset.Source {
	case "", "file":
		if cfg.Dataset.Path == "" {
			return fmt.Errorf("%w: dataset.path is required for file sources", core.ErrConfig)
		}
	case "postgres":
		if cfg.Dataset.Query == "" {
			return fmt.Errorf("%w: dataset.query is required for postgres sources", core.ErrConfig)
		}
	default:
		return fmt.Errorf("%w: unknown dataset.source %q", core.ErrConfig, cfg.Dataset.Source)
	}

	if cfg.Checks.Completeness == nil && cfg.Checks.Duplicates == nil &&
		cfg.Checks.Consistency == nil && cfg.Checks.Drift == nil {
		return fmt.Errorf("%w: no checks enabled", core.ErrConfig)
	}
	return nil
}

// EnvConfig holds process-level settings read from the environment.
type EnvConfig struct {
	APIPort     string
	PostgresDSN string
	Parallel    bool
}

// LoadEnv reads process configuration from the environment
func LoadEnv() EnvConfig {
	return EnvConfig{
		APIPort:     getEnvOrDefault("PORT", "8080"),
		PostgresDSN: getEnvOrDefault("DATABASE_URL", ""),
		Parallel:    getEnvBoolOrDefault("PARALLEL_CHECKS", false),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// Package config provides configuration loading for gbm.
//
// Configuration is layered: built-in defaults, then an optional YAML or TOML
// file, then GBM_* environment variables. Command-line flags are applied on
// top by the CLI.
package config

import (
	"errors"
	"fmt"

	"github.com/AbbaraS/GBMcode/internal/export"
	"github.com/AbbaraS/GBMcode/internal/logging"
)

// Config holds the complete gbm configuration.
type Config struct {
	Inputs    InputsConfig    `koanf:"inputs"`
	Output    OutputConfig    `koanf:"output"`
	Join      JoinConfig      `koanf:"join"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// InputsConfig names the files a run reads.
type InputsConfig struct {
	Reference string        `koanf:"reference"`
	Tables    []TableConfig `koanf:"tables"`
	Features  string        `koanf:"features"` // prompted when empty
}

// TableConfig is one clinical table. Order in the list is join order.
type TableConfig struct {
	Name string `koanf:"name"`
	Path string `koanf:"path"`
}

// OutputConfig controls where and how the feature table is written.
type OutputConfig struct {
	Path   string `koanf:"path"` // prompted when empty
	Format string `koanf:"format"`
}

// JoinConfig holds the join parameters.
type JoinConfig struct {
	KeyColumn string `koanf:"key_column"`
	IDColumn  string `koanf:"id_column"`
	Separator string `koanf:"separator"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Output string `koanf:"output"`
	Caller bool   `koanf:"caller"`
}

// TelemetryConfig holds OpenTelemetry tracing settings.
type TelemetryConfig struct {
	Enabled         bool     `koanf:"enabled"`
	Endpoint        string   `koanf:"endpoint"`
	Protocol        string   `koanf:"protocol"`
	Insecure        bool     `koanf:"insecure"`
	SamplingRate    float64  `koanf:"sampling_rate"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// MetricsConfig holds run metrics settings.
type MetricsConfig struct {
	Textfile string `koanf:"textfile"` // Prometheus textfile path, empty disables
}

// Validate checks configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Inputs.Reference == "" {
		errs = append(errs, errors.New("inputs.reference is required"))
	}
	if len(c.Inputs.Tables) == 0 {
		errs = append(errs, errors.New("inputs.tables must name at least one table"))
	}
	seen := make(map[string]bool, len(c.Inputs.Tables))
	for i, tc := range c.Inputs.Tables {
		switch {
		case tc.Name == "":
			errs = append(errs, fmt.Errorf("inputs.tables[%d]: name is required", i))
		case seen[tc.Name]:
			errs = append(errs, fmt.Errorf("inputs.tables[%d]: duplicate name %q", i, tc.Name))
		}
		seen[tc.Name] = true
		if tc.Path == "" {
			errs = append(errs, fmt.Errorf("inputs.tables[%d]: path is required", i))
		}
	}

	if _, err := export.ParseFormat(c.Output.Format); err != nil {
		errs = append(errs, fmt.Errorf("output.format: %w", err))
	}
	if c.Join.KeyColumn == "" {
		errs = append(errs, errors.New("join.key_column is required"))
	}
	if c.Join.IDColumn == "" {
		errs = append(errs, errors.New("join.id_column is required"))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}

	return errors.Join(errs...)
}

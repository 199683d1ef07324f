// internal/logging/config.go
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// TraceLevel sits below Debug (-2). The join logs individual table lookups at
// this level.
const TraceLevel = zapcore.Level(-2)

// ParseLevel maps a level name to a zapcore.Level. It accepts the zap names
// plus "trace", ignoring case and surrounding space.
func ParseLevel(name string) (zapcore.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "trace" {
		return TraceLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
	return l, nil
}

// Config holds logging configuration.
type Config struct {
	Level  zapcore.Level
	Format string
	Output string
	Caller bool
	Fields map[string]string
}

// NewDefaultConfig returns config with batch-friendly defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  zapcore.InfoLevel,
		Format: "console",
		Output: "stderr",
		Caller: false,
		Fields: map[string]string{
			"service": "gbm",
		},
	}
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("format must be 'json' or 'console', got %q", c.Format)
	}
	if c.Output != "stderr" && c.Output != "stdout" {
		return fmt.Errorf("output must be 'stderr' or 'stdout', got %q", c.Output)
	}
	for k, v := range c.Fields {
		if k == "" {
			return fmt.Errorf("field key cannot be empty")
		}
		if v == "" {
			return fmt.Errorf("field %q has empty value", k)
		}
	}
	return nil
}

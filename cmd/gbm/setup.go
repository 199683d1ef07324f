package main

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/AbbaraS/GBMcode/internal/config"
	"github.com/AbbaraS/GBMcode/internal/logging"
	"github.com/AbbaraS/GBMcode/internal/telemetry"
)

const tracerName = "github.com/AbbaraS/GBMcode/cmd/gbm"

// runtime holds the per-run services built from configuration.
type runtime struct {
	cfg    *config.Config
	runID  string
	logger *logging.Logger
	tel    *telemetry.Telemetry
	tracer trace.Tracer
}

// loadConfig loads the config file and environment, then applies global flags.
func loadConfig(cmd *cobra.Command, g *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = g.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = g.logFormat
	}
	return cfg, nil
}

// newRuntime builds the logger and telemetry for cfg and tags ctx with a
// fresh run ID.
func newRuntime(ctx context.Context, cfg *config.Config) (context.Context, *runtime, error) {
	logCfg, err := loggingConfig(cfg.Logging)
	if err != nil {
		return ctx, nil, err
	}
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return ctx, nil, err
	}

	tel, err := telemetry.New(ctx, telemetryConfig(cfg.Telemetry))
	if err != nil {
		return ctx, nil, err
	}

	rt := &runtime{
		cfg:    cfg,
		runID:  uuid.NewString(),
		logger: logger,
		tel:    tel,
		tracer: tel.Tracer(tracerName),
	}
	ctx = logging.WithRunID(ctx, rt.runID)
	ctx = logging.WithLogger(ctx, logger)

	if degraded, cause := tel.Degraded(); degraded && cause != nil {
		logger.Warn(ctx, "telemetry disabled", zap.Error(cause))
	}
	return ctx, rt, nil
}

// Close flushes spans and logs.
func (rt *runtime) Close(ctx context.Context) error {
	return errors.Join(rt.tel.Shutdown(ctx), rt.logger.Sync())
}

func loggingConfig(c config.LoggingConfig) (*logging.Config, error) {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	cfg := logging.NewDefaultConfig()
	cfg.Level = level
	if c.Format != "" {
		cfg.Format = c.Format
	}
	if c.Output != "" {
		cfg.Output = c.Output
	}
	cfg.Caller = c.Caller
	cfg.Fields["version"] = version
	return cfg, nil
}

func telemetryConfig(c config.TelemetryConfig) *telemetry.Config {
	cfg := telemetry.NewDefaultConfig()
	cfg.Enabled = c.Enabled
	cfg.Endpoint = c.Endpoint
	cfg.Protocol = c.Protocol
	cfg.Insecure = c.Insecure
	cfg.SamplingRate = c.SamplingRate
	cfg.ServiceVersion = version
	if d := c.ShutdownTimeout.Duration(); d > 0 {
		cfg.ShutdownTimeout = d
	}
	return cfg
}

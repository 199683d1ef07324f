// Package logging provides structured logging for gbm runs.
//
// # Overview
//
// Logging package wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Context-aware methods that inject run correlation fields
//   - JSON or console encoding to stderr, keeping stdout for command output
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithRunID(ctx, runID)
//	logger.Info(ctx, "tables loaded", zap.Int("tables", 3))
//
// Output includes automatic correlation:
//
//	{
//	  "ts": "2026-10-19T10:15:30Z",
//	  "level": "info",
//	  "msg": "tables loaded",
//	  "run.id": "7d5c0c5e-...",
//	  "trace_id": "abc123",
//	  "tables": 3
//	}
//
// # Testing
//
// Use TestLogger for test assertions:
//
//	tl := logging.NewTestLogger()
//	tl.Info(ctx, "join finished", zap.Int("rows", 2))
//	tl.AssertLogged(t, zapcore.InfoLevel, "join finished")
//	tl.AssertField(t, "join finished", "rows", int64(2))
package logging

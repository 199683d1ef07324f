// Package telemetry provides OpenTelemetry tracing for gbm runs.
//
// # Overview
//
// A run is a short batch job, so only traces are exported. Each stage of the
// pipeline (loading inputs, joining, writing output) becomes a span. When
// telemetry is disabled the tracer is a no-op and nothing leaves the process.
//
// # Usage
//
//	tel, err := telemetry.New(ctx, telemetry.NewDefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
//	ctx, span := tel.Tracer("gbm").Start(ctx, "gbm.load")
//	defer span.End()
//
// # Configuration
//
//	telemetry:
//	  enabled: true
//	  endpoint: localhost:4317
//	  protocol: grpc          # or http/protobuf
//	  insecure: true
//	  sampling_rate: 1.0
//
// Spans are batched and flushed by Shutdown, which the CLI calls before exit.
package telemetry

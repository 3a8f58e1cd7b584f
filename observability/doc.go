// Package observability wires OpenTelemetry tracing and metrics for
// restadapter.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("restadapter"))
//	defer tp.Shutdown(ctx)
//
// Every adapter request runs in a client span named SpanHTTPRequest carrying
// the AttrHTTP* attributes.
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("restadapter"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("restadapter"))
//	metrics.RecordRequestEnd(ctx, "httpadapter", "GET", "200", duration)
package observability

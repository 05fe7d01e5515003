// Package observability provides OpenTelemetry tracing and metrics for
// pipeline evaluations.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("streamlist"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "query.run")
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("streamlist"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("streamlist"))
//	metrics.RecordEvaluation(ctx, "to_slice", "ok", 10, 4, duration)
package observability

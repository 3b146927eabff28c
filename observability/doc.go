// Package observability provides OpenTelemetry tracing and metrics for worker
// lifecycle phases.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("billing-worker"))
//	defer tp.Shutdown(ctx)
//
// Lifecycle metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("billing-worker"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewLifecycleMetrics(observability.Meter("billing-worker"))
//
// Phases combine both:
//
//	ctx, phase := observability.StartPhase(ctx, nil, metrics, observability.SpanStartup, "startup")
//	err := app.Startup(ctx)
//	phase.End(ctx, observability.StatusOK, err)
package observability

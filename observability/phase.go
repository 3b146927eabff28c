package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Phase tracks one traced lifecycle phase. Metrics may be nil, in which case
// only the span is recorded.
type Phase struct {
	Name      string
	StartTime time.Time
	Metrics   *LifecycleMetrics

	span trace.Span
}

// StartPhase starts a span named spanName for the given phase. A nil tracer
// falls back to the default tracer.
func StartPhase(ctx context.Context, tracer trace.Tracer, metrics *LifecycleMetrics, spanName, phase string, attrs ...attribute.KeyValue) (context.Context, *Phase) {
	if tracer == nil {
		tracer = DefaultTracer()
	}
	attrs = append(attrs, attribute.String(AttrPhase, phase))
	ctx, span := tracer.Start(ctx, spanName, trace.WithAttributes(attrs...))
	return ctx, &Phase{
		Name:      phase,
		StartTime: time.Now(),
		Metrics:   metrics,
		span:      span,
	}
}

// Span returns the phase span.
func (p *Phase) Span() trace.Span {
	return p.span
}

// End ends the span with the given status and records the hook metric.
func (p *Phase) End(ctx context.Context, status string, err error) {
	duration := time.Since(p.StartTime)
	if err != nil {
		status = StatusError
		p.span.RecordError(err)
		p.span.SetStatus(codes.Error, err.Error())
		p.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	p.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	p.span.End()

	if p.Metrics != nil {
		p.Metrics.RecordHook(ctx, p.Name, status, duration)
	}
}

// Duration returns the elapsed time since the phase started.
func (p *Phase) Duration() time.Duration {
	return time.Since(p.StartTime)
}

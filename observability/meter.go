package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/taskbridge/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider should be shut down on exit.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		logger.FieldService, cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Status values recorded on lifecycle instruments.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// LifecycleMetrics holds the instruments recorded around worker lifecycle
// hooks, application resolution and task execution.
type LifecycleMetrics struct {
	hookTotal    metric.Int64Counter
	hookDuration metric.Float64Histogram
	resolveTotal metric.Int64Counter
	taskTotal    metric.Int64Counter
	taskDuration metric.Float64Histogram
}

// NewLifecycleMetrics creates the lifecycle instruments on the given meter.
func NewLifecycleMetrics(meter metric.Meter) (*LifecycleMetrics, error) {
	hookTotal, err := meter.Int64Counter("taskbridge.hook.total",
		metric.WithDescription("Lifecycle hook executions by phase and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating taskbridge.hook.total counter: %w", err)
	}

	hookDuration, err := meter.Float64Histogram("taskbridge.hook.duration",
		metric.WithDescription("Duration of lifecycle hooks in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating taskbridge.hook.duration histogram: %w", err)
	}

	resolveTotal, err := meter.Int64Counter("taskbridge.resolve.total",
		metric.WithDescription("Application resolutions by reference kind and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating taskbridge.resolve.total counter: %w", err)
	}

	taskTotal, err := meter.Int64Counter("taskbridge.task.total",
		metric.WithDescription("Task executions by name and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating taskbridge.task.total counter: %w", err)
	}

	taskDuration, err := meter.Float64Histogram("taskbridge.task.duration",
		metric.WithDescription("Duration of task executions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating taskbridge.task.duration histogram: %w", err)
	}

	return &LifecycleMetrics{
		hookTotal:    hookTotal,
		hookDuration: hookDuration,
		resolveTotal: resolveTotal,
		taskTotal:    taskTotal,
		taskDuration: taskDuration,
	}, nil
}

// RecordHook records one lifecycle hook execution.
func (m *LifecycleMetrics) RecordHook(ctx context.Context, phase, status string, duration time.Duration) {
	m.hookTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.String("status", status),
	))
	m.hookDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("phase", phase),
	))
}

// RecordResolve records one application resolution.
func (m *LifecycleMetrics) RecordResolve(ctx context.Context, kind, status string) {
	m.resolveTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
}

// RecordTask records one task execution.
func (m *LifecycleMetrics) RecordTask(ctx context.Context, name, status string, duration time.Duration) {
	m.taskTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task", name),
		attribute.String("status", status),
	))
	m.taskDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("task", name),
	))
}

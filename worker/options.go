package worker

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/taskbridge/di"
	"github.com/kbukum/taskbridge/logger"
	"github.com/kbukum/taskbridge/observability"
)

// Option configures an InMemoryBroker.
type Option func(*brokerOptions)

type brokerOptions struct {
	isWorker bool
	deps     *di.Registry
	logger   *logger.Logger
	tracer   trace.Tracer
	metrics  *observability.LifecycleMetrics
}

func resolveOptions(opts []Option) *brokerOptions {
	o := &brokerOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithWorkerProcess marks the broker as a worker (true) or producer (false).
func WithWorkerProcess(isWorker bool) Option {
	return func(o *brokerOptions) { o.isWorker = isWorker }
}

// WithDependencies uses an existing dependency registry.
func WithDependencies(r *di.Registry) Option {
	return func(o *brokerOptions) { o.deps = r }
}

// WithLogger sets the broker logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *brokerOptions) { o.logger = l }
}

// WithTracer sets the tracer used for task spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *brokerOptions) { o.tracer = t }
}

// WithMetrics records task executions on m.
func WithMetrics(m *observability.LifecycleMetrics) Option {
	return func(o *brokerOptions) { o.metrics = m }
}

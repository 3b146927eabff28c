package taskbridge

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/taskbridge/config"
	"github.com/kbukum/taskbridge/di"
	"github.com/kbukum/taskbridge/errors"
	"github.com/kbukum/taskbridge/logger"
	"github.com/kbukum/taskbridge/observability"
)

// Option configures a Bridge.
type Option func(*options)

type options struct {
	logger       *logger.Logger
	registry     *Registry
	forceFactory bool
	lifespan     bool
	tracer       trace.Tracer
	metrics      *observability.LifecycleMetrics
	capabilities map[di.Capability]any
}

func resolveOptions(opts []Option) *options {
	o := &options{lifespan: true}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.Get("taskbridge")
	} else {
		o.logger = o.logger.WithComponent("taskbridge")
	}
	return o
}

// WithLogger sets the bridge logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithFactory treats the referenced object as a constructor and always
// calls it. Resolution fails if the object is not callable.
func WithFactory() Option {
	return func(o *options) { o.forceFactory = true }
}

// WithoutLifespan skips acquiring the application lifespan.
func WithoutLifespan() Option {
	return func(o *options) { o.lifespan = false }
}

// WithRegistry resolves path references against r instead of the
// process-wide registry.
func WithRegistry(r *Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithTracer sets the tracer for startup and shutdown spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithMetrics records lifecycle hooks and resolution on m.
func WithMetrics(m *observability.LifecycleMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithCapabilities registers extra dependencies alongside the request and
// connection providers. Values follow di.Registry.Update: a di.Provider is
// called on every lookup, anything else is returned as is.
func WithCapabilities(caps map[di.Capability]any) Option {
	return func(o *options) {
		if o.capabilities == nil {
			o.capabilities = make(map[di.Capability]any, len(caps))
		}
		for k, v := range caps {
			o.capabilities[k] = v
		}
	}
}

// ConfigRef builds a path reference and its options from the worker section
// of the service configuration.
func ConfigRef(cfg config.WorkerConfig) (AppRef, []Option, error) {
	if cfg.AppPath == "" {
		return AppRef{}, nil, errors.Configuration("worker.app_path is required")
	}
	var opts []Option
	if cfg.Factory {
		opts = append(opts, WithFactory())
	}
	if cfg.DisableLifespan {
		opts = append(opts, WithoutLifespan())
	}
	return Path(cfg.AppPath), opts, nil
}

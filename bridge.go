package taskbridge

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/taskbridge/errors"
	"github.com/kbukum/taskbridge/logger"
	"github.com/kbukum/taskbridge/observability"
	"github.com/kbukum/taskbridge/webapp"
	"github.com/kbukum/taskbridge/worker"
)

// Bridge runs an application's lifecycle inside a worker process.
type Bridge struct {
	broker   worker.Broker
	ref      AppRef
	resolver *Resolver
	opts     *options
	log      *logger.Logger
}

// Init registers the bridge's startup and shutdown handlers on the broker's
// worker events and returns the bridge. In producer processes both handlers
// return immediately, so the application is never resolved there.
//
//	broker := worker.NewInMemoryBroker(worker.WithWorkerProcess(true))
//	taskbridge.Init(broker, taskbridge.Path("example.com/shop/web.App"))
func Init(broker worker.Broker, ref AppRef, opts ...Option) *Bridge {
	o := resolveOptions(opts)
	b := &Bridge{
		broker:   broker,
		ref:      ref,
		resolver: NewResolver(ref, o.registry, o.forceFactory),
		opts:     o,
		log:      o.logger,
	}
	broker.AddEventHandler(worker.EventWorkerStartup, b.Startup)
	broker.AddEventHandler(worker.EventWorkerShutdown, b.Shutdown)
	return b
}

// Resolver returns the bridge's resolver.
func (b *Bridge) Resolver() *Resolver { return b.resolver }

// Startup resolves the application, stores it under StateKeyApp, runs its
// startup hook, acquires its lifespan and populates the dependency context.
// A failing startup hook removes the stored application and its error is
// returned unchanged.
func (b *Bridge) Startup(ctx context.Context, state *worker.State) error {
	if !b.broker.IsWorkerProcess() {
		b.log.Debug("Not a worker process, skipping startup")
		return nil
	}

	ctx, phase := observability.StartPhase(ctx, b.opts.tracer, b.opts.metrics,
		observability.SpanStartup, "startup",
		attribute.String(observability.AttrRefKind, b.ref.Kind().String()),
	)
	err := b.startup(ctx, state)
	phase.End(ctx, observability.StatusOK, err)
	if err != nil {
		fields := logger.Fields(
			logger.FieldRef, b.ref.String(),
			logger.FieldError, err.Error(),
		)
		if appErr, ok := errors.AsAppError(err); ok {
			fields["code"] = appErr.Code
		}
		b.log.Error("Worker startup failed", fields)
		return err
	}
	b.log.Info("Application started in worker", logger.Fields(
		logger.FieldRef, b.ref.String(),
		logger.FieldDuration, phase.Duration().Milliseconds(),
	))
	return nil
}

func (b *Bridge) startup(ctx context.Context, state *worker.State) error {
	app, err := b.resolve(ctx)
	if err != nil {
		return err
	}
	state.Set(StateKeyApp, app)

	if err := app.Startup(ctx); err != nil {
		state.Delete(StateKeyApp)
		return err
	}

	var lifespanState map[string]any
	if lp, ok := app.(LifespanProvider); ok && b.opts.lifespan {
		lifespan := lp.Lifespan()
		lifespanState, err = lifespan.Acquire(ctx)
		if err != nil {
			// The application started; leave it stored so shutdown runs its hooks.
			return fmt.Errorf("acquire lifespan: %w", err)
		}
		if lifespanState == nil {
			lifespanState = map[string]any{}
		}
		state.Set(StateKeyLifespan, lifespan)
		state.Set(StateKeyLifespanState, lifespanState)
		b.log.Debug("Lifespan acquired", logger.Fields(logger.FieldCount, len(lifespanState)))
	}

	populate(b.broker, app, lifespanState, b.opts.capabilities)
	return nil
}

func (b *Bridge) resolve(ctx context.Context) (Application, error) {
	app, err := b.resolver.Resolve(ctx)
	if b.opts.metrics != nil {
		status := observability.StatusOK
		if err != nil {
			status = observability.StatusError
		}
		b.opts.metrics.RecordResolve(ctx, b.ref.Kind().String(), status)
	}
	if err != nil {
		return nil, err
	}
	b.log.Debug("Application resolved", logger.Fields(
		logger.FieldRef, b.ref.String(),
		logger.FieldApp, appName(app),
	))
	return app, nil
}

// Shutdown runs the stored application's shutdown hook, then releases the
// stored lifespan exactly once and clears the state keys. It does nothing
// when no application was started. The hook error is returned unchanged;
// when the release also fails both errors are joined.
func (b *Bridge) Shutdown(ctx context.Context, state *worker.State) error {
	if !b.broker.IsWorkerProcess() {
		b.log.Debug("Not a worker process, skipping shutdown")
		return nil
	}
	app, ok := AppFromState(state)
	if !ok {
		b.log.Debug("No started application, skipping shutdown")
		return nil
	}

	ctx, phase := observability.StartPhase(ctx, b.opts.tracer, b.opts.metrics,
		observability.SpanShutdown, "shutdown",
		attribute.String(observability.AttrRefKind, b.ref.Kind().String()),
	)

	hookErr := app.Shutdown(ctx)

	var releaseErr error
	if v, ok := state.Get(StateKeyLifespan); ok {
		if lifespan, ok := v.(webapp.Lifespan); ok {
			releaseErr = lifespan.Release(ctx)
		}
	}
	state.Delete(StateKeyLifespan)
	state.Delete(StateKeyLifespanState)
	state.Delete(StateKeyApp)

	var err error
	switch {
	case hookErr != nil && releaseErr != nil:
		err = errors.Join(hookErr, releaseErr)
	case hookErr != nil:
		err = hookErr
	default:
		err = releaseErr
	}
	phase.End(ctx, observability.StatusOK, err)

	if err != nil {
		b.log.Error("Worker shutdown failed", logger.Fields(
			logger.FieldRef, b.ref.String(),
			logger.FieldError, err.Error(),
		))
		return err
	}
	b.log.Info("Application shut down in worker", logger.Fields(
		logger.FieldRef, b.ref.String(),
		logger.FieldDuration, phase.Duration().Milliseconds(),
	))
	return nil
}

// appName returns a printable name for app.
func appName(app Application) string {
	if wa, ok := app.(*webapp.App); ok && wa.Name != "" {
		return wa.Name
	}
	return fmt.Sprintf("%T", app)
}

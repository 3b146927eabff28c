package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/taskbridge/di"
	"github.com/kbukum/taskbridge/errors"
	"github.com/kbukum/taskbridge/logger"
	"github.com/kbukum/taskbridge/observability"
)

var _ Broker = (*InMemoryBroker)(nil)

// InMemoryBroker is an in-process worker runtime. It fires lifecycle events
// and executes registered tasks synchronously in the caller's goroutine.
// There is no queueing, persistence or retry.
type InMemoryBroker struct {
	isWorker bool
	state    *State
	deps     *di.Registry
	log      *logger.Logger
	tracer   trace.Tracer
	metrics  *observability.LifecycleMetrics

	mu       sync.RWMutex
	handlers map[Event][]EventHandler
	tasks    map[string]TaskFunc
}

// NewInMemoryBroker creates a broker. It acts as a producer unless
// WithWorkerProcess(true) is given.
func NewInMemoryBroker(opts ...Option) *InMemoryBroker {
	o := resolveOptions(opts)
	b := &InMemoryBroker{
		isWorker: o.isWorker,
		state:    NewState(),
		deps:     o.deps,
		log:      o.logger,
		tracer:   o.tracer,
		metrics:  o.metrics,
		handlers: make(map[Event][]EventHandler),
		tasks:    make(map[string]TaskFunc),
	}
	if b.deps == nil {
		b.deps = di.NewRegistry()
	}
	if b.log == nil {
		b.log = logger.Get("worker")
	} else {
		b.log = b.log.WithComponent("worker")
	}
	if b.tracer == nil {
		b.tracer = observability.DefaultTracer()
	}
	return b
}

// AddEventHandler registers handler for event.
func (b *InMemoryBroker) AddEventHandler(event Event, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
	b.log.Debug("Event handler registered", logger.Fields(logger.FieldEvent, string(event)))
}

// IsWorkerProcess reports whether the broker runs as a worker.
func (b *InMemoryBroker) IsWorkerProcess() bool { return b.isWorker }

// Dependencies returns the dependency registry used by tasks.
func (b *InMemoryBroker) Dependencies() *di.Registry { return b.deps }

// State returns the process-wide state passed to event handlers.
func (b *InMemoryBroker) State() *State { return b.state }

func (b *InMemoryBroker) handlersFor(event Event) []EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]EventHandler(nil), b.handlers[event]...)
}

// Startup fires the worker or client startup event. Handlers run in
// registration order and the first error is returned unchanged.
func (b *InMemoryBroker) Startup(ctx context.Context) error {
	event := startupEvent(b.isWorker)
	handlers := b.handlersFor(event)
	b.log.Info("Broker starting", logger.Fields(logger.FieldEvent, string(event), logger.FieldCount, len(handlers)))

	for _, h := range handlers {
		if err := h(ctx, b.state); err != nil {
			b.log.Error("Startup handler failed", logger.Fields(logger.FieldEvent, string(event), logger.FieldError, err.Error()))
			return err
		}
	}
	return nil
}

// Shutdown fires the worker or client shutdown event. Every handler runs;
// the first error is returned unchanged and later ones are logged.
func (b *InMemoryBroker) Shutdown(ctx context.Context) error {
	event := shutdownEvent(b.isWorker)
	handlers := b.handlersFor(event)
	b.log.Info("Broker shutting down", logger.Fields(logger.FieldEvent, string(event), logger.FieldCount, len(handlers)))

	var first error
	for _, h := range handlers {
		if err := h(ctx, b.state); err != nil {
			b.log.Error("Shutdown handler failed", logger.Fields(logger.FieldEvent, string(event), logger.FieldError, err.Error()))
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Register adds a task under name, replacing any previous registration.
func (b *InMemoryBroker) Register(name string, fn TaskFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks[name] = fn
	b.log.Debug("Task registered", logger.Fields(logger.FieldTaskName, name))
}

// Tasks returns the registered task names in sorted order.
func (b *InMemoryBroker) Tasks() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.tasks))
	for name := range b.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes the named task synchronously and returns its result.
func (b *InMemoryBroker) Run(ctx context.Context, name string, args ...any) (any, error) {
	b.mu.RLock()
	fn, ok := b.tasks[name]
	b.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound("task", name)
	}

	tc := &TaskContext{
		ID:    uuid.NewString(),
		Name:  name,
		State: b.state,
		deps:  b.deps,
	}
	ctx = logger.ContextWithTaskID(ctx, tc.ID)
	ctx, span := b.tracer.Start(ctx, observability.SpanTask, trace.WithAttributes(
		attribute.String(observability.AttrTaskName, name),
		attribute.String(observability.AttrTaskID, tc.ID),
	))
	defer span.End()

	log := b.log.WithContext(ctx)
	log.Debug("Task started", logger.Fields(logger.FieldTaskName, name))

	start := time.Now()
	value, err := b.execute(ctx, fn, tc, args)
	duration := time.Since(start)

	status := observability.StatusOK
	if err != nil {
		status = observability.StatusError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("Task failed", logger.Fields(logger.FieldTaskName, name, logger.FieldError, err.Error()))
	} else {
		log.Debug("Task finished", logger.Fields(logger.FieldTaskName, name, logger.FieldDuration, duration.Milliseconds()))
	}
	if b.metrics != nil {
		b.metrics.RecordTask(ctx, name, status, duration)
	}
	return value, err
}

// execute runs fn and turns a panic into an internal error.
func (b *InMemoryBroker) execute(ctx context.Context, fn TaskFunc, tc *TaskContext, args []any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Internal(fmt.Errorf("task %s panicked: %v", tc.Name, r))
		}
	}()
	return fn(ctx, tc, args...)
}

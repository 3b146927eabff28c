package taskbridge

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/kbukum/taskbridge/di"
	"github.com/kbukum/taskbridge/errors"
)

// Resolver turns an AppRef into an Application. Resolution runs at most once;
// later calls return the memoized result, including a failure.
type Resolver struct {
	ref          AppRef
	registry     *Registry
	forceFactory bool

	once     sync.Once
	resolved atomic.Bool
	app      Application
	err      error
}

// NewResolver creates a resolver for ref. A nil registry means the
// process-wide registry. With forceFactory the referenced object is always
// called and must be a constructor.
func NewResolver(ref AppRef, registry *Registry, forceFactory bool) *Resolver {
	if registry == nil {
		registry = defaultRegistry
	}
	return &Resolver{ref: ref, registry: registry, forceFactory: forceFactory}
}

// Resolve returns the application, resolving it on first use. ctx reaches a
// context-taking factory on the first call only; later calls ignore it and
// return the memoized result.
func (r *Resolver) Resolve(ctx context.Context) (Application, error) {
	r.once.Do(func() {
		r.app, r.err = r.resolve(ctx)
		r.resolved.Store(true)
	})
	return r.app, r.err
}

// Resolved reports whether Resolve has run.
func (r *Resolver) Resolved() bool {
	return r.resolved.Load()
}

func (r *Resolver) resolve(ctx context.Context) (Application, error) {
	var obj any
	switch r.ref.kind {
	case RefInstance:
		obj = r.ref.instance
	case RefFactory:
		obj = r.ref.factory
	case RefPath:
		found, err := r.registry.Lookup(r.ref.path)
		if err != nil {
			return nil, errors.Configuration("application path %q is not registered", r.ref.path).WithCause(err)
		}
		obj = found
	default:
		return nil, errors.Configuration("empty application reference")
	}

	if _, isApp := obj.(Application); r.forceFactory || r.ref.kind == RefFactory || !isApp {
		if !di.IsConstructor(obj) {
			return nil, errors.Configuration("%q is %T, which is neither an application nor a constructor", r.ref.String(), obj)
		}
		built, err := di.Invoke(ctx, obj)
		if err != nil {
			return nil, err
		}
		obj = built
	}

	app, ok := obj.(Application)
	if !ok {
		return nil, errors.Configuration("%q is not an application (got %T)", r.ref.String(), obj)
	}
	if isNil(app) {
		return nil, errors.Configuration("%q produced a nil application (%T)", r.ref.String(), obj)
	}
	return app, nil
}

// isNil reports whether v is nil or a nil pointer, interface, map, func or
// channel held in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

package taskbridge

import (
	"context"

	"github.com/kbukum/taskbridge/webapp"
	"github.com/kbukum/taskbridge/worker"
)

// Application is what a worker runs: the startup and shutdown hooks of a
// web application.
type Application interface {
	Startup(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// LifespanProvider is implemented by applications that expose a lifespan.
// The bridge acquires it after Startup and releases it after Shutdown.
type LifespanProvider interface {
	Lifespan() webapp.Lifespan
}

var (
	_ Application      = (*webapp.App)(nil)
	_ LifespanProvider = (*webapp.App)(nil)
)

// Worker state keys written by the startup handler and cleared by the
// shutdown handler.
const (
	// StateKeyApp holds the started Application.
	StateKeyApp = "taskbridge.app"
	// StateKeyLifespan holds the acquired webapp.Lifespan.
	StateKeyLifespan = "taskbridge.lifespan"
	// StateKeyLifespanState holds the map[string]any yielded by Acquire.
	StateKeyLifespanState = "taskbridge.lifespan_state"
)

// AppFromState returns the application stored by a successful startup.
func AppFromState(state *worker.State) (Application, bool) {
	v, ok := state.Get(StateKeyApp)
	if !ok {
		return nil, false
	}
	app, ok := v.(Application)
	return app, ok
}

// LifespanStateFrom returns the lifespan state stored by startup, or nil.
func LifespanStateFrom(state *worker.State) map[string]any {
	v, _ := state.Get(StateKeyLifespanState)
	m, _ := v.(map[string]any)
	return m
}

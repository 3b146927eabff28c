package webapp

import (
	"context"
	"fmt"
)

// Hook is a startup or shutdown callback.
type Hook func(ctx context.Context) error

// LifespanFunc contributes entries to the lifespan state once components
// have started.
type LifespanFunc func(ctx context.Context) (map[string]any, error)

// OnStartup registers hooks run by Startup.
func (a *App) OnStartup(hooks ...Hook) {
	a.onStartup = append(a.onStartup, hooks...)
}

// OnShutdown registers hooks run by Shutdown.
func (a *App) OnShutdown(hooks ...Hook) {
	a.onShutdown = append(a.onShutdown, hooks...)
}

// OnLifespan registers state funcs run when the lifespan is acquired.
func (a *App) OnLifespan(fns ...LifespanFunc) {
	a.onLifespan = append(a.onLifespan, fns...)
}

// runHooks executes hooks sequentially, returning the first error.
func runHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("startup hook %d failed: %w", i, err)
		}
	}
	return nil
}

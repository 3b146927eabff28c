package webapp

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/taskbridge/errors"
	"github.com/kbukum/taskbridge/logger"
)

// Lifespan is an acquire/release scope over application resources. Acquire
// yields the state mapping visible to requests; Release undoes Acquire.
type Lifespan interface {
	Acquire(ctx context.Context) (map[string]any, error)
	Release(ctx context.Context) error
}

// Lifespan returns a lifespan that starts the registered components in
// order, merges their State and the OnLifespan funcs into one mapping, and
// stops the components in reverse order on release. Each call returns a new
// handle.
func (a *App) Lifespan() Lifespan {
	return &appLifespan{app: a}
}

type appLifespan struct {
	app *App

	mu       sync.Mutex
	acquired bool
}

func (l *appLifespan) Acquire(ctx context.Context) (map[string]any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.acquired {
		return nil, fmt.Errorf("lifespan of %s already acquired", l.app.Name)
	}

	log := l.app.Logger
	log.Info("Acquiring lifespan", logger.Fields(logger.FieldCount, len(l.app.Components.All())))

	if err := l.app.Components.StartAll(ctx); err != nil {
		if stopErr := l.app.Components.StopAll(ctx); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
		return nil, err
	}

	state := l.app.Components.State()
	for i, fn := range l.app.onLifespan {
		extra, err := fn(ctx)
		if err != nil {
			if stopErr := l.app.Components.StopAll(ctx); stopErr != nil {
				err = errors.Join(err, stopErr)
			}
			return nil, fmt.Errorf("lifespan func %d failed: %w", i, err)
		}
		for k, v := range extra {
			state[k] = v
		}
	}

	l.acquired = true
	log.Debug("Lifespan acquired", logger.Fields(logger.FieldCount, len(state)))
	return state, nil
}

func (l *appLifespan) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.acquired {
		return nil
	}
	l.acquired = false

	l.app.Logger.Info("Releasing lifespan")
	return l.app.Components.StopAll(ctx)
}

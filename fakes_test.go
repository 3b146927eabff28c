package taskbridge

import (
	"context"

	"github.com/kbukum/taskbridge/logger"
	"github.com/kbukum/taskbridge/webapp"
	"github.com/kbukum/taskbridge/worker"
)

// fakeApp implements Application and records hook calls.
type fakeApp struct {
	name          string
	startupCalls  int
	shutdownCalls int
	startupErr    error
	shutdownErr   error
}

func (a *fakeApp) Startup(ctx context.Context) error {
	a.startupCalls++
	return a.startupErr
}

func (a *fakeApp) Shutdown(ctx context.Context) error {
	a.shutdownCalls++
	return a.shutdownErr
}

// fakeLifespan implements webapp.Lifespan.
type fakeLifespan struct {
	state        map[string]any
	acquireErr   error
	releaseErr   error
	acquireCalls int
	releaseCalls int
}

func (l *fakeLifespan) Acquire(ctx context.Context) (map[string]any, error) {
	l.acquireCalls++
	if l.acquireErr != nil {
		return nil, l.acquireErr
	}
	return l.state, nil
}

func (l *fakeLifespan) Release(ctx context.Context) error {
	l.releaseCalls++
	return l.releaseErr
}

// lifespanApp is a fakeApp that also provides a lifespan.
type lifespanApp struct {
	fakeApp
	lifespan *fakeLifespan
}

func (a *lifespanApp) Lifespan() webapp.Lifespan { return a.lifespan }

func newLifespanApp(state map[string]any) *lifespanApp {
	return &lifespanApp{
		fakeApp:  fakeApp{name: "with-lifespan"},
		lifespan: &fakeLifespan{state: state},
	}
}

func newBroker(isWorker bool) *worker.InMemoryBroker {
	return worker.NewInMemoryBroker(
		worker.WithWorkerProcess(isWorker),
		worker.WithLogger(logger.Nop()),
	)
}

func quiet() Option { return WithLogger(logger.Nop()) }

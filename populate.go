package taskbridge

import (
	"github.com/kbukum/taskbridge/di"
	"github.com/kbukum/taskbridge/logger"
	"github.com/kbukum/taskbridge/webapp"
	"github.com/kbukum/taskbridge/worker"
)

// PopulateDependencyContext registers providers for webapp.CapabilityRequest
// and webapp.CapabilityConnection in the broker's dependency registry. Every
// lookup builds a fresh synthetic value bound to app and state. Calling it
// again replaces the previous providers.
//
// The bridge calls it during startup. Runtimes that never fire worker
// events, such as a producer-side InMemoryBroker in tests, can call it
// directly.
func PopulateDependencyContext(broker worker.Broker, app Application, state map[string]any) {
	populate(broker, app, state, nil)
}

func populate(broker worker.Broker, app Application, state map[string]any, extra map[di.Capability]any) {
	if state == nil {
		state = map[string]any{}
	}
	deps := broker.Dependencies()
	deps.Update(map[di.Capability]any{
		webapp.CapabilityRequest: di.Provider(func() (any, error) {
			return webapp.NewRequest(webapp.SyntheticScope(app, state)), nil
		}),
		webapp.CapabilityConnection: di.Provider(func() (any, error) {
			return webapp.NewConnection(webapp.SyntheticScope(app, state)), nil
		}),
	})
	if len(extra) > 0 {
		deps.Update(extra)
	}
	logger.Debug("Dependency context populated", logger.Fields(
		logger.FieldCount, 2+len(extra),
		logger.FieldApp, appName(app),
	))
}

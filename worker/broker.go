package worker

import "github.com/kbukum/taskbridge/di"

// Broker is the part of a worker runtime that lifecycle integrations need:
// event registration, the worker/producer distinction, and the dependency
// registry consulted when tasks declare dependencies.
type Broker interface {
	// AddEventHandler registers handler for event. Handlers run in
	// registration order.
	AddEventHandler(event Event, handler EventHandler)
	// IsWorkerProcess reports whether this process executes tasks.
	IsWorkerProcess() bool
	// Dependencies returns the registry tasks resolve dependencies from.
	Dependencies() *di.Registry
}

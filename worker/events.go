package worker

import "context"

// Event names a lifecycle point of the worker runtime.
type Event string

const (
	// EventWorkerStartup fires once when a worker process boots.
	EventWorkerStartup Event = "worker_startup"
	// EventWorkerShutdown fires once when a worker process stops.
	EventWorkerShutdown Event = "worker_shutdown"
	// EventClientStartup fires when a producer (non-worker) process connects.
	EventClientStartup Event = "client_startup"
	// EventClientShutdown fires when a producer process disconnects.
	EventClientShutdown Event = "client_shutdown"
)

// EventHandler is a lifecycle callback. It receives the process-wide state.
type EventHandler func(ctx context.Context, state *State) error

// startupEvent returns the startup event for the process kind.
func startupEvent(isWorker bool) Event {
	if isWorker {
		return EventWorkerStartup
	}
	return EventClientStartup
}

// shutdownEvent returns the shutdown event for the process kind.
func shutdownEvent(isWorker bool) Event {
	if isWorker {
		return EventWorkerShutdown
	}
	return EventClientShutdown
}

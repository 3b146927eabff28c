// Package worker defines the worker runtime contract used by lifecycle
// integrations and ships an in-memory implementation.
//
// A Broker exposes lifecycle events, whether the current process executes
// tasks, and the dependency registry tasks resolve from. InMemoryBroker runs
// tasks synchronously and is meant for tests, local tools and demos.
//
//	b := worker.NewInMemoryBroker(worker.WithWorkerProcess(true))
//	b.Register("send_invoice", func(ctx context.Context, tc *worker.TaskContext, args ...any) (any, error) {
//	    req, err := worker.Depends[*webapp.Request](tc, webapp.CapabilityRequest)
//	    ...
//	})
//	b.Startup(ctx)
//	defer b.Shutdown(ctx)
//	b.Run(ctx, "send_invoice", 42)
package worker

// Package taskbridge lets task workers reuse the lifecycle of a web
// application.
//
// Init registers two handlers on a worker.Broker. When a worker process
// starts, the application is resolved from its reference, its startup hooks
// run, its lifespan is acquired, and providers for synthetic request-like
// values are registered so tasks can depend on webapp.CapabilityRequest and
// webapp.CapabilityConnection. When the worker stops, the shutdown hooks run
// and the lifespan is released. Producer processes skip both handlers.
//
// An application is referenced by value, by a constructor, or by a path that
// the defining package registered with Provide:
//
//	// package web
//	func init() { taskbridge.MustProvide("example.com/shop/web.App", New) }
//
//	// worker main
//	broker := worker.NewInMemoryBroker(worker.WithWorkerProcess(true))
//	taskbridge.Init(broker, taskbridge.Path("example.com/shop/web.App"), taskbridge.WithFactory())
package taskbridge

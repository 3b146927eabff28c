// Package di provides the dependency context shared between a worker runtime
// and the task handlers it runs.
//
// A Registry maps a Capability to either a concrete value or a provider.
// Registering the same capability twice overwrites the first registration, so
// repeated population never accumulates stale entries.
//
// # Registration
//
//	deps := di.NewRegistry()
//	deps.Set("config", cfg)
//	deps.Provide(webapp.CapabilityRequest, func() (any, error) {
//	    return webapp.NewRequest(scope), nil
//	})
//
// # Resolution
//
//	req := di.MustResolve[*webapp.Request](deps, webapp.CapabilityRequest)
package di

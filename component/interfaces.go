package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a resource the application acquires at startup and releases
// at shutdown, such as a connection pool or a cache client.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string
	// Start acquires the resource.
	Start(ctx context.Context) error
	// Stop releases the resource.
	Stop(ctx context.Context) error
	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// StateProvider is optionally implemented by components that expose values
// to request handlers once started. The returned entries are merged into the
// lifespan state, which is what both HTTP requests and synthetic worker
// requests see as their state.
type StateProvider interface {
	State() map[string]any
}

package worker

import (
	"context"

	"github.com/kbukum/taskbridge/di"
)

// TaskFunc is a task body. Dependencies are resolved through tc.
type TaskFunc func(ctx context.Context, tc *TaskContext, args ...any) (any, error)

// TaskContext is passed to every task execution.
type TaskContext struct {
	ID    string
	Name  string
	State *State

	deps *di.Registry
}

// Depends resolves a declared dependency from the broker's registry.
// Providers registered with di.Registry.Provide run on every call.
func (tc *TaskContext) Depends(c di.Capability) (any, error) {
	return tc.deps.Resolve(c)
}

// Depends resolves a dependency and asserts its type.
//
//	req, err := worker.Depends[*webapp.Request](tc, webapp.CapabilityRequest)
func Depends[T any](tc *TaskContext, c di.Capability) (T, error) {
	return di.Resolve[T](tc.deps, c)
}

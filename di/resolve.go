package di

import (
	"fmt"

	"github.com/kbukum/taskbridge/errors"
)

// Resolve resolves a capability with type safety, returns error on failure.
//
// Example:
//
//	req, err := di.Resolve[*webapp.Request](deps, webapp.CapabilityRequest)
//	if err != nil {
//	    return fmt.Errorf("request context: %w", err)
//	}
func Resolve[T any](r *Registry, c Capability) (T, error) {
	var zero T
	instance, err := r.Resolve(c)
	if err != nil {
		return zero, fmt.Errorf("di: failed to resolve %s: %w", c, err)
	}
	result, ok := instance.(T)
	if !ok {
		return zero, errors.TypeMismatch(string(c), instance, zero)
	}
	return result, nil
}

// MustResolve resolves a capability with type safety, panics on error.
func MustResolve[T any](r *Registry, c Capability) T {
	result, err := Resolve[T](r, c)
	if err != nil {
		panic(err.Error())
	}
	return result
}

// TryResolve resolves a capability, returns zero value and false if it is
// missing, fails to build, or has another type.
func TryResolve[T any](r *Registry, c Capability) (T, bool) {
	result, err := Resolve[T](r, c)
	if err != nil {
		return result, false
	}
	return result, true
}

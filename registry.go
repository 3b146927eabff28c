package taskbridge

import (
	"sort"
	"sync"

	"github.com/kbukum/taskbridge/errors"
	"github.com/kbukum/taskbridge/validation"
)

// Registry maps import-style paths to application objects. Packages register
// their application (or its constructor) at init time so that workers can
// refer to it by path from configuration.
type Registry struct {
	mu      sync.RWMutex
	objects map[string]any
}

// NewRegistry creates an empty path registry.
func NewRegistry() *Registry {
	return &Registry{objects: make(map[string]any)}
}

// Provide registers obj under path, replacing any previous object.
func (r *Registry) Provide(path string, obj any) error {
	if !validation.IsAppPath(path) {
		return errors.Validation("invalid application path " + path).
			WithDetail("path", path)
	}
	if isNil(obj) {
		return errors.Validation("nil object for application path " + path)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[path] = obj
	return nil
}

// Lookup returns the object registered under path.
func (r *Registry) Lookup(path string) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.objects[path]
	if !ok {
		return nil, errors.NotFound("application path", path)
	}
	return obj, nil
}

// Paths returns the registered paths in sorted order.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	paths := make([]string, 0, len(r.objects))
	for p := range r.objects {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by Provide.
func DefaultRegistry() *Registry { return defaultRegistry }

// Provide registers obj under path in the process-wide registry.
//
//	func init() {
//	    taskbridge.MustProvide("example.com/shop/web.App", NewApp)
//	}
func Provide(path string, obj any) error {
	return defaultRegistry.Provide(path, obj)
}

// MustProvide is like Provide but panics on error.
func MustProvide(path string, obj any) {
	if err := Provide(path, obj); err != nil {
		panic(err)
	}
}

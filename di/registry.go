package di

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/taskbridge/errors"
	"github.com/kbukum/taskbridge/logger"
)

// Capability identifies something a task handler can ask for, such as
// "the current request". It is an explicit name rather than a Go type so the
// same key works across packages that never import each other.
type Capability string

// Provider builds a value on demand. Providers are called on every resolve.
type Provider func() (any, error)

// Mode determines how a registration is resolved.
type Mode int

const (
	ModeValue    Mode = iota // Pre-built value returned as-is
	ModeProvider             // Provider called on every resolve
	ModeLazy                 // Provider called once, result cached
)

func (m Mode) String() string {
	switch m {
	case ModeValue:
		return "value"
	case ModeProvider:
		return "provider"
	case ModeLazy:
		return "lazy"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// RegistrationInfo describes a registered capability for introspection.
type RegistrationInfo struct {
	Capability  Capability
	Mode        Mode
	Initialized bool
}

type registration struct {
	mode        Mode
	value       any
	provider    Provider
	once        sync.Once
	initialized bool
	err         error
}

// Registry maps capabilities to values or providers. It is the dependency
// context consulted when a task declares a dependency. Registering a
// capability again replaces the previous registration.
type Registry struct {
	mu      sync.RWMutex
	entries map[Capability]*registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Capability]*registration)}
}

// Set registers a concrete value.
func (r *Registry) Set(c Capability, value any) {
	r.put(c, &registration{mode: ModeValue, value: value, initialized: true})
}

// Provide registers a provider called on every resolve.
func (r *Registry) Provide(c Capability, p Provider) {
	r.put(c, &registration{mode: ModeProvider, provider: p})
}

// ProvideLazy registers a provider called on first resolve only.
func (r *Registry) ProvideLazy(c Capability, p Provider) {
	r.put(c, &registration{mode: ModeLazy, provider: p})
}

// RegisterConstructor registers a constructor function as a provider. See
// Invoke for the accepted signatures.
func (r *Registry) RegisterConstructor(c Capability, constructor any) error {
	if err := checkConstructor(constructor); err != nil {
		return fmt.Errorf("capability %s: %w", c, err)
	}
	r.Provide(c, func() (any, error) {
		return Invoke(nil, constructor)
	})
	return nil
}

// Update merges overrides into the registry. Provider values are registered
// as providers, anything else as a concrete value.
func (r *Registry) Update(overrides map[Capability]any) {
	for c, v := range overrides {
		switch p := v.(type) {
		case Provider:
			r.Provide(c, p)
		case func() (any, error):
			r.Provide(c, p)
		default:
			r.Set(c, v)
		}
	}
}

func (r *Registry) put(c Capability, reg *registration) {
	r.mu.Lock()
	_, replaced := r.entries[c]
	r.entries[c] = reg
	r.mu.Unlock()

	logger.Debug("Capability registered", map[string]interface{}{
		logger.FieldCapability: string(c),
		"mode":                 reg.mode.String(),
		"replaced":             replaced,
	})
}

// Resolve returns the value registered for c.
func (r *Registry) Resolve(c Capability) (any, error) {
	r.mu.RLock()
	reg, ok := r.entries[c]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound("capability", string(c))
	}

	switch reg.mode {
	case ModeValue:
		return reg.value, nil
	case ModeProvider:
		return reg.provider()
	case ModeLazy:
		reg.once.Do(func() {
			reg.value, reg.err = reg.provider()
			r.mu.Lock()
			reg.initialized = reg.err == nil
			r.mu.Unlock()
		})
		return reg.value, reg.err
	default:
		return nil, fmt.Errorf("unknown registration mode for capability: %s", c)
	}
}

// Has reports whether c is registered.
func (r *Registry) Has(c Capability) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[c]
	return ok
}

// Delete removes the registration for c, if any.
func (r *Registry) Delete(c Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, c)
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Capabilities returns the registered capabilities in sorted order.
func (r *Registry) Capabilities() []Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Capability, 0, len(r.entries))
	for c := range r.entries {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Registrations returns info about all registrations, sorted by capability.
func (r *Registry) Registrations() []RegistrationInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RegistrationInfo, 0, len(r.entries))
	for c, reg := range r.entries {
		out = append(out, RegistrationInfo{
			Capability:  c,
			Mode:        reg.mode,
			Initialized: reg.initialized,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Capability < out[j].Capability })
	return out
}

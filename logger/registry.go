package logger

import (
	"sync"
)

// Named loggers let an application give one component its own output or
// level, e.g. a quieter "worker" logger while "taskbridge" stays verbose.
var (
	namedMu sync.RWMutex
	named   = map[string]*Logger{}
)

// Register installs l as the logger returned by Get(component).
func Register(component string, l *Logger) {
	namedMu.Lock()
	defer namedMu.Unlock()
	named[component] = l
}

// Unregister removes a logger installed by Register.
func Unregister(component string) {
	namedMu.Lock()
	defer namedMu.Unlock()
	delete(named, component)
}

// Get returns the logger registered for component, or the current global
// logger tagged with the component name.
func Get(component string) *Logger {
	namedMu.RLock()
	l, ok := named[component]
	namedMu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(component)
}

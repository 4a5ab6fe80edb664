package fluid

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotRegistered is returned by Lookup for an unknown engine name.
var ErrNotRegistered = errors.New("fluid: engine not registered")

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Constructor)
)

// Register makes an engine constructor available by name. It panics if the
// name is empty, the constructor is nil, or the name is already taken.
func Register(name string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if name == "" {
		panic("fluid: Register with empty name")
	}
	if ctor == nil {
		panic("fluid: Register constructor is nil for " + name)
	}
	if _, dup := registry[name]; dup {
		panic("fluid: Register called twice for " + name)
	}
	registry[name] = ctor
}

// Lookup returns the constructor registered under name.
func Lookup(name string) (Constructor, error) {
	registryMu.RLock()
	ctor, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}
	return ctor, nil
}

// Engines lists the registered engine names in sorted order.
func Engines() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func unregisterAll() {
	registryMu.Lock()
	registry = make(map[string]Constructor)
	registryMu.Unlock()
}

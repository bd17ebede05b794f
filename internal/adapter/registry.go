package adapter

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a new adapter instance.
type Factory func() Adapter

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes an adapter factory available under the given type name.
// It is called from the init() function of each adapter implementation.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New creates an adapter for the given database type.
func New(dbType string) (Adapter, error) {
	registryMu.RLock()
	factory, ok := registry[dbType]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown database type %q (available: %v)", dbType, List())
	}
	return factory(), nil
}

// IsRegistered reports whether an adapter exists for the given type.
func IsRegistered(dbType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[dbType]
	return ok
}

// List returns the registered adapter type names, sorted.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

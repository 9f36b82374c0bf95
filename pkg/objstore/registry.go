package objstore

import (
	"fmt"
	"sort"
	"sync"
)

// Builder constructs a provider factory from its configuration.
type Builder func(cfg Config) (Factory, error)

var (
	registryMu sync.RWMutex
	builders   = make(map[string]Builder)
)

// Register makes a provider available under the given name. Providers call
// this from init(); the binary pulls them in with blank imports.
func Register(name string, builder Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	builders[name] = builder
}

// Open builds the named provider's factory. Unknown names list the
// registered providers in the error.
func Open(name string, cfg Config) (Factory, error) {
	registryMu.RLock()
	builder, ok := builders[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown object store provider %q (registered: %v)", name, Providers())
	}

	factory, err := builder(cfg)
	if err != nil {
		return nil, fmt.Errorf("configuring provider %s: %w", name, err)
	}
	return factory, nil
}

// Providers returns the registered provider names, sorted.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package embedding

import (
	"fmt"
	"sort"
	"sync"

	"github.com/codecontext/codecontext/internal/errs"
)

// Factory builds a Provider from its fully-resolved configuration map
// (provider-specific; httpprovider reads "endpoint"/"dimension"/
// "health_timeout_seconds", mockprovider reads "dimension").
type Factory func(settings map[string]any) (Provider, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds a provider factory under name. Called from each
// provider package's init(), so the registry is fully populated by the
// time any New call runs.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New builds the named provider, or a ProviderNotFound error listing
// what is actually registered.
func New(name string, settings map[string]any) (Provider, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errs.ProviderNotFoundError(name, registeredNames())
	}
	provider, err := factory(settings)
	if err != nil {
		return nil, errs.Wrap(errs.Embedding, fmt.Sprintf("constructing provider %q", name), err)
	}
	return provider, nil
}

func registeredNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

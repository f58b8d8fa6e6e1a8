package feed

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/otso2008/OddsBot/internal/pkg/config"
)

type Factory func(cfg *config.Config) Provider

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, f Factory) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		panic("feed: empty name in Register")
	}
	if f == nil {
		panic("feed: nil factory in Register for " + n)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[n]; exists {
		panic("feed: duplicate registration for " + n)
	}
	registry[n] = f
}

func FactoryByName(name string) (Factory, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[n]
	return f, ok
}

func AvailableNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SelectProviders builds the providers named in cfg.Feeds.Enabled. Unknown
// names are an error so a typo in the config fails fast instead of silently
// polling fewer books.
func SelectProviders(cfg *config.Config) ([]Provider, error) {
	names := cfg.Feeds.Enabled
	if len(names) == 0 {
		names = AvailableNames()
	}

	seen := make(map[string]bool, len(names))
	providers := make([]Provider, 0, len(names))
	for _, name := range names {
		n := strings.ToLower(strings.TrimSpace(name))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true

		f, ok := FactoryByName(n)
		if !ok {
			return nil, fmt.Errorf("unknown feed provider %q (available: %v)", name, AvailableNames())
		}
		providers = append(providers, f(cfg))
	}
	return providers, nil
}

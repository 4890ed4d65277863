package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Factory builds a provider. It is called at most once per name.
type Factory func(ctx context.Context) (*Provider, error)

// Registry memoizes providers by name. Concurrent first use of a name runs
// the factory once; failed builds are not cached.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	instances map[string]*Provider
	group     singleflight.Group
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		instances: make(map[string]*Provider),
	}
}

// Register adds or replaces the factory for name and drops any cached instance.
func (r *Registry) Register(name string, factory Factory) {
	name = normalizeName(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
	delete(r.instances, name)
}

// Names lists registered provider names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the provider for name, building it on first use.
func (r *Registry) Get(ctx context.Context, name string) (*Provider, error) {
	name = normalizeName(name)

	r.mu.RLock()
	if p, ok := r.instances[name]; ok {
		r.mu.RUnlock()
		return p, nil
	}
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported ai provider: %q (known: %s)", name, strings.Join(r.Names(), ", "))
	}

	v, err, _ := r.group.Do(name, func() (any, error) {
		r.mu.RLock()
		p, ok := r.instances[name]
		r.mu.RUnlock()
		if ok {
			return p, nil
		}

		p, err := factory(ctx)
		if err != nil {
			return nil, fmt.Errorf("building %s provider: %w", name, err)
		}
		if p.Name == "" {
			p.Name = name
		}

		r.mu.Lock()
		r.instances[name] = p
		r.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Provider), nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

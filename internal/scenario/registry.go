package scenario

import (
	"slices"
	"sync"
	"time"

	"github.com/couchcryptid/humidity-adviser/internal/domain"
)

// Window is the period a scenario is synthesized over.
type Window struct {
	Start             time.Time
	Days              int
	ResolutionMinutes int
}

// Factory synthesizes the humidity sources of a scenario over a window.
type Factory func(w Window) ([]domain.HumiditySource, error)

// Scenario is a registered, named factory.
type Scenario struct {
	Name        string
	DisplayName string
	Description string
	Factory     Factory
}

// Registry maps scenario names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	scenarios map[string]Scenario
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{scenarios: make(map[string]Scenario)}
}

// Default returns a registry holding the built-in scenarios.
func Default() *Registry {
	r := NewRegistry()
	r.Register(OneBedFlat())
	return r
}

// Register adds or replaces a scenario under s.Name.
func (r *Registry) Register(s Scenario) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scenarios[s.Name] = s
}

// Lookup finds a scenario by name. An unknown name is a NotFoundError.
func (r *Registry) Lookup(name string) (Scenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scenarios[name]
	if !ok {
		return Scenario{}, &domain.NotFoundError{Query: "scenario " + name}
	}
	return s, nil
}

// Names lists the registered scenario names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Synthesize builds the sources of the named scenario over w.
func (r *Registry) Synthesize(name string, w Window) ([]domain.HumiditySource, error) {
	s, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return s.Factory(w)
}

// FromSources builds a Factory that evaluates a static rule table.
func FromSources(sources ...Source) Factory {
	return func(w Window) ([]domain.HumiditySource, error) {
		samples, err := Index(w.Start, w.Days, w.ResolutionMinutes)
		if err != nil {
			return nil, err
		}
		out := make([]domain.HumiditySource, 0, len(sources))
		for _, s := range sources {
			out = append(out, s.Synthesize(samples))
		}
		return out, nil
	}
}

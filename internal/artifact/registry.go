package artifact

import (
	"fmt"
	"sync"

	language "github.com/hanpama/graphcache/internal/language"
)

// EagerResolver is a registered resolver function. It receives the
// already-read sub-object as data and the request variables as parameters.
type EagerResolver func(data map[string]any, parameters map[string]any) any

// Registry is the lookup table resolving artifact IDs and resolver names.
// Artifacts form a directed graph (entrypoints reference refetch artifacts,
// refetch artifacts point back into the same entrypoint family), so edges
// are IDs resolved here rather than ownership links.
type Registry struct {
	mu          sync.RWMutex
	entrypoints map[string]*Entrypoint
	refetches   map[string]*RefetchArtifact
	resolvers   map[string]EagerResolver
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entrypoints: make(map[string]*Entrypoint),
		refetches:   make(map[string]*RefetchArtifact),
		resolvers:   make(map[string]EagerResolver),
	}
}

// RegisterEntrypoint admits ep. The query text is parsed so that a corrupt
// artifact fails here instead of at the first network request.
func (r *Registry) RegisterEntrypoint(ep *Entrypoint) error {
	if ep == nil || ep.ID == "" {
		return fmt.Errorf("entrypoint must have an id")
	}
	if _, err := language.ParseQuery(ep.NetworkRequestInfo.QueryText); err != nil {
		return fmt.Errorf("entrypoint %q: invalid query text: %w", ep.ID, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entrypoints[ep.ID]; ok {
		return fmt.Errorf("entrypoint %q already registered", ep.ID)
	}
	r.entrypoints[ep.ID] = ep
	return nil
}

// RegisterRefetch admits a refetch artifact.
func (r *Registry) RegisterRefetch(a *RefetchArtifact) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("refetch artifact must have an id")
	}
	if _, err := language.ParseQuery(a.NetworkRequestInfo.QueryText); err != nil {
		return fmt.Errorf("refetch artifact %q: invalid query text: %w", a.ID, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.refetches[a.ID]; ok {
		return fmt.Errorf("refetch artifact %q already registered", a.ID)
	}
	r.refetches[a.ID] = a
	return nil
}

// RegisterResolver binds a resolver name to fn. Reader ASTs reference
// resolvers by name because artifacts arrive as data.
func (r *Registry) RegisterResolver(name string, fn EagerResolver) error {
	if name == "" || fn == nil {
		return fmt.Errorf("resolver registration requires a name and a function")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resolvers[name]; ok {
		return fmt.Errorf("resolver %q already registered", name)
	}
	r.resolvers[name] = fn
	return nil
}

// Entrypoint resolves an entrypoint by ID.
func (r *Registry) Entrypoint(id string) (*Entrypoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.entrypoints[id]
	if !ok {
		return nil, fmt.Errorf("unknown entrypoint %q", id)
	}
	return ep, nil
}

// Refetch resolves a refetch artifact by ID.
func (r *Registry) Refetch(id string) (*RefetchArtifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.refetches[id]
	if !ok {
		return nil, fmt.Errorf("unknown refetch artifact %q", id)
	}
	return a, nil
}

// Resolver resolves an eager resolver function by name.
func (r *Registry) Resolver(name string) (EagerResolver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.resolvers[name]
	if !ok {
		return nil, fmt.Errorf("unknown resolver %q", name)
	}
	return fn, nil
}

package reader

import (
	"sync"

	store "github.com/hanpama/graphcache/internal/store"
)

// Component is the rendering-layer handle produced by a component
// resolver. The rendering layer compares handles by identity to skip
// re-renders, so a handle must be constructed once per distinct
// (resolver, root, variables) key and returned identically afterwards.
type Component struct {
	Name      string
	Root      store.Link
	Variables map[string]any
}

type componentKey struct {
	name string
	root store.Link
	vars string
}

// ComponentCache memoizes component handles. Keys are derived from the
// resolver name, root link and canonicalized variables, never from the
// object identity of a fragment reference, which is reconstructed per
// traversal.
type ComponentCache struct {
	mu         sync.Mutex
	components map[componentKey]*Component
}

// NewComponentCache creates an empty ComponentCache.
func NewComponentCache() *ComponentCache {
	return &ComponentCache{components: make(map[componentKey]*Component)}
}

// GetOrCreate returns the stable handle for the key, minting it on first
// use.
func (c *ComponentCache) GetOrCreate(name string, root store.Link, variables map[string]any) *Component {
	key := componentKey{name: name, root: root, vars: store.CanonicalVariables(variables)}
	c.mu.Lock()
	defer c.mu.Unlock()
	if comp, ok := c.components[key]; ok {
		return comp
	}
	comp := &Component{Name: name, Root: root, Variables: variables}
	c.components[key] = comp
	return comp
}

// Len returns the number of cached handles.
func (c *ComponentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.components)
}

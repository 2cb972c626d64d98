// Package request orchestrates network round trips against the normalized
// store: the decide-to-fetch policy, the request lifecycle state machine,
// retention of successfully processed queries, and the disposers that
// release retention on view teardown.
package request

import (
	"sync"

	artifact "github.com/hanpama/graphcache/internal/artifact"
	promise "github.com/hanpama/graphcache/internal/promise"
	reader "github.com/hanpama/graphcache/internal/reader"
	retain "github.com/hanpama/graphcache/internal/retain"
	store "github.com/hanpama/graphcache/internal/store"
	transport "github.com/hanpama/graphcache/internal/transport"
)

// Environment is the per-runtime singleton owning the store, the
// retention ledger, the artifact registry and the component cache.
//
// All store and ledger mutation, and every traversal (check, read, GC
// mark), happens with mu held. That single mutual-exclusion domain is what
// makes normalization atomic from the perspective of every reader under
// goroutine parallelism. Promise settlement and caller callbacks run
// outside the lock.
type Environment struct {
	mu         sync.Mutex
	store      *store.Store
	ledger     *retain.Ledger
	registry   *artifact.Registry
	transport  transport.Func
	components *reader.ComponentCache
}

// NewEnvironment creates an Environment backed by the given registry and
// transport.
func NewEnvironment(reg *artifact.Registry, tf transport.Func) *Environment {
	return &Environment{
		store:      store.New(),
		ledger:     retain.NewLedger(),
		registry:   reg,
		transport:  tf,
		components: reader.NewComponentCache(),
	}
}

// Registry returns the artifact registry.
func (e *Environment) Registry() *artifact.Registry { return e.registry }

// Check runs a presence probe for the entrypoint's normalization AST. It
// fails for loader-based ASTs, which cannot be probed synchronously.
func (e *Environment) Check(ep *artifact.Entrypoint, variables map[string]any) (reader.CheckResult, error) {
	src := ep.NetworkRequestInfo.Normalization
	if src.IsLoader() {
		return reader.NotEnoughData, &UnsupportedConfigurationError{
			Reason: "cannot run a presence check against an asynchronously loaded normalization AST",
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return reader.Check(e.store, src.AST, variables, store.RootLink(ep.ConcreteType)), nil
}

// FragmentReference builds the view handle for an entrypoint and the
// network request that fetched (or skipped fetching) its data.
func (e *Environment) FragmentReference(ep *artifact.Entrypoint, variables map[string]any, request *promise.Promise) reader.FragmentReference {
	return reader.FragmentReference{
		Reader:    ep.ReaderWithRefetchQueries,
		Root:      store.RootLink(ep.ConcreteType),
		Variables: variables,
		Request:   request,
	}
}

// ReadFragment materializes the value tree for ref under the environment
// lock, so the read is atomic with respect to concurrent normalization.
func (e *Environment) ReadFragment(ref reader.FragmentReference) (map[string]any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return reader.ReadFragment(e.store, e.registry, e.components, ref)
}

// StoreSnapshot returns a deep copy of the store, for tests and
// diagnostics.
func (e *Environment) StoreSnapshot() map[store.Link]store.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Snapshot()
}

// RetainedCount returns the ledger length, for tests and diagnostics.
func (e *Environment) RetainedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Len()
}

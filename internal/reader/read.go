package reader

import (
	"fmt"

	artifact "github.com/hanpama/graphcache/internal/artifact"
	promise "github.com/hanpama/graphcache/internal/promise"
	store "github.com/hanpama/graphcache/internal/store"
)

// FragmentReference is the immutable handle a view holds: the reader
// artifact, the root to read from, the request variables, and the network
// request whose completion gates the read.
type FragmentReference struct {
	Reader    artifact.ReaderWithRefetchQueries
	Root      store.Link
	Variables map[string]any
	Request   *promise.Promise
}

// NotReadyError is the typed suspension result: the fragment's network
// request has not settled, so reading now would observe partial data. The
// caller waits on Pending and reads again.
type NotReadyError struct {
	Pending *promise.Promise
}

func (e *NotReadyError) Error() string { return "fragment data is not ready" }

// ReadFragment materializes the value tree for ref. It suspends (returns
// NotReadyError) while ref's network request is pending and propagates the
// request error if it was rejected.
//
// Reading a field key that is absent from the store is a contract
// violation: the caller's own presence check should have excluded it. It
// panics rather than silently returning a default.
func ReadFragment(s *store.Store, reg *artifact.Registry, cache *ComponentCache, ref FragmentReference) (map[string]any, error) {
	if ref.Request != nil {
		switch state, _, err := ref.Request.Poll(); state {
		case promise.Pending:
			return nil, &NotReadyError{Pending: ref.Request}
		case promise.Rejected:
			return nil, err
		}
	}
	if ref.Reader.Reader == nil {
		return nil, fmt.Errorf("read: fragment reference has no reader artifact")
	}
	return readSelections(s, reg, cache, ref.Reader.Reader.Selections, ref.Variables, ref.Root), nil
}

func readSelections(s *store.Store, reg *artifact.Registry, cache *ComponentCache, selections []artifact.ReaderNode, variables map[string]any, root store.Link) map[string]any {
	rec, ok := s.Get(root)
	if !ok {
		panic(fmt.Sprintf("read: record %v/%s is missing from the store; a presence check must gate reads", root.ID, root.Typename))
	}
	out := make(map[string]any, len(selections))
	for _, node := range selections {
		switch node.Kind {
		case artifact.ReaderScalar:
			key := store.FieldKey(node.Field, node.Args, variables)
			v, present := rec[key]
			if !present {
				panic(fmt.Sprintf("read: scalar %q is absent on %v/%s; a presence check must gate reads", key, root.ID, root.Typename))
			}
			out[node.OutputName()] = v

		case artifact.ReaderLinked:
			key := store.FieldKey(node.Field, node.Args, variables)
			v, present := rec[key]
			if !present {
				panic(fmt.Sprintf("read: linked field %q is absent on %v/%s; a presence check must gate reads", key, root.ID, root.Typename))
			}
			switch lv := v.(type) {
			case nil:
				out[node.OutputName()] = nil
			case store.Link:
				out[node.OutputName()] = readSelections(s, reg, cache, node.Selections, variables, lv)
			case store.LinkList:
				items := make([]any, len(lv))
				for i, l := range lv {
					if l == nil {
						continue
					}
					items[i] = readSelections(s, reg, cache, node.Selections, variables, *l)
				}
				out[node.OutputName()] = items
			default:
				panic(fmt.Sprintf("read: linked field %q on %v/%s holds a scalar", key, root.ID, root.Typename))
			}

		case artifact.ReaderResolver:
			if node.Resolver == nil {
				panic(fmt.Sprintf("read: resolver node without a resolver reference on %v/%s", root.ID, root.Typename))
			}
			switch node.Resolver.Variant {
			case artifact.ResolverComponent:
				out[node.OutputName()] = cache.GetOrCreate(node.Resolver.Name, root, variables)
			default:
				fn, err := reg.Resolver(node.Resolver.Name)
				if err != nil {
					panic(fmt.Sprintf("read: %v", err))
				}
				data := readSelections(s, reg, cache, node.Selections, variables, root)
				out[node.OutputName()] = fn(data, variables)
			}
		}
	}
	return out
}

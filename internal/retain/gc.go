package retain

import (
	artifact "github.com/hanpama/graphcache/internal/artifact"
	store "github.com/hanpama/graphcache/internal/store"
)

// GarbageCollect deletes every store record whose link is not reachable
// from any currently retained query and returns the number of records
// deleted. Reachability is computed as a full mark phase: each retained
// query's normalization AST is walked against the store from its root with
// its variables, the same shape as a presence check but collecting visited
// links. Root records are always reachable.
//
// The only unacceptable failure mode is deleting a reachable record;
// briefly keeping an unreachable one is fine. Callers run the collector
// only when a ledger entry reaches zero, never eagerly.
func GarbageCollect(s *store.Store, l *Ledger) int {
	reachable := make(map[store.Link]struct{})
	for _, q := range l.queries() {
		mark(s, q.AST, q.Variables, q.Root, reachable)
	}
	deleted := 0
	for _, link := range s.Links() {
		if link.ID == store.RootID {
			continue
		}
		if _, ok := reachable[link]; !ok {
			s.Delete(link)
			deleted++
		}
	}
	return deleted
}

// mark recurses per AST node, not per store link: the same link may be
// reachable from two queries with different selections, so marking must
// not short-circuit on links seen before. Recursion depth is bounded by
// the finite AST, never by the store graph.
func mark(s *store.Store, selections []artifact.NormalizationNode, variables map[string]any, root store.Link, reachable map[store.Link]struct{}) {
	reachable[root] = struct{}{}
	rec, ok := s.Get(root)
	if !ok {
		return
	}
	for _, node := range selections {
		if node.Kind != artifact.NormalizationLinked {
			continue
		}
		switch v := rec[store.FieldKey(node.Field, node.Args, variables)].(type) {
		case store.Link:
			mark(s, node.Selections, variables, v, reachable)
		case store.LinkList:
			for _, l := range v {
				if l != nil {
					mark(s, node.Selections, variables, *l, reachable)
				}
			}
		}
	}
}

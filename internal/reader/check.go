// Package reader implements the two read modes over compiled ASTs against
// the store: Check, a pure presence probe deciding whether a sub-graph can
// be read without a network round trip, and ReadFragment, which
// materializes the value tree a view renders from.
package reader

import (
	artifact "github.com/hanpama/graphcache/internal/artifact"
	store "github.com/hanpama/graphcache/internal/store"
)

// CheckResult reports whether a sub-graph is fully present in the store.
type CheckResult int

const (
	EnoughData CheckResult = iota
	NotEnoughData
)

func (r CheckResult) String() string {
	if r == EnoughData {
		return "EnoughData"
	}
	return "NotEnoughData"
}

// Check walks the normalization AST against the store from root and
// reports EnoughData only if every reachable scalar key is present and
// every linked record exists with its own sub-selection fully satisfied,
// including every element of list fields. It never mutates the store.
func Check(s *store.Store, selections []artifact.NormalizationNode, variables map[string]any, root store.Link) CheckResult {
	rec, ok := s.Get(root)
	if !ok {
		return NotEnoughData
	}
	for _, node := range selections {
		switch node.Kind {
		case artifact.NormalizationScalar:
			key := store.FieldKey(node.Field, node.Args, variables)
			if _, present := rec[key]; !present {
				return NotEnoughData
			}

		case artifact.NormalizationLinked:
			key := store.FieldKey(node.Field, node.Args, variables)
			v, present := rec[key]
			if !present {
				return NotEnoughData
			}
			switch lv := v.(type) {
			case nil:
				// Known to be empty.
			case store.Link:
				if Check(s, node.Selections, variables, lv) == NotEnoughData {
					return NotEnoughData
				}
			case store.LinkList:
				for _, l := range lv {
					if l == nil {
						continue
					}
					if Check(s, node.Selections, variables, *l) == NotEnoughData {
						return NotEnoughData
					}
				}
			default:
				// A scalar where a link is expected: the slot cannot
				// satisfy this selection.
				return NotEnoughData
			}

		case artifact.NormalizationRefetchReference:
			// Refetch references have no store slot of their own.
		}
	}
	return EnoughData
}

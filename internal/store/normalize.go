package store

import (
	"fmt"

	artifact "github.com/hanpama/graphcache/internal/artifact"
)

// Normalize merges a response payload into the store rooted at root,
// following the normalization AST. Merging is a shallow overwrite per
// field key: newer data wins field by field, fields absent from the
// payload are left untouched. Normalizing the same payload twice is a
// no-op the second time.
//
// A payload whose shape contradicts the AST (a scalar where a linked
// object is expected) means the artifact and the server disagree; that is
// reported as an error and the request is considered failed. The payload
// is validated against the AST in full before the first write, so a
// failed Normalize leaves the store exactly as it was.
func Normalize(s *Store, selections []artifact.NormalizationNode, data map[string]any, variables map[string]any, root Link) error {
	if data == nil {
		return nil
	}
	if err := validateShape(selections, data); err != nil {
		return err
	}
	writeRecord(s, selections, data, variables, root)
	return nil
}

// validateShape checks the whole payload against the AST without touching
// the store. Every error writeRecord could hit is caught here first.
func validateShape(selections []artifact.NormalizationNode, payload map[string]any) error {
	for _, node := range selections {
		switch node.Kind {
		case artifact.NormalizationScalar:

		case artifact.NormalizationLinked:
			v, ok := payload[node.Field]
			if !ok {
				continue
			}
			switch pv := v.(type) {
			case nil:
			case map[string]any:
				if err := validateShape(node.Selections, pv); err != nil {
					return err
				}
			case []any:
				for i, elem := range pv {
					if elem == nil {
						continue
					}
					m, ok := elem.(map[string]any)
					if !ok {
						return fmt.Errorf("normalize: linked field %q[%d]: unexpected payload type %T", node.Field, i, elem)
					}
					if err := validateShape(node.Selections, m); err != nil {
						return err
					}
				}
			default:
				return fmt.Errorf("normalize: linked field %q: unexpected payload type %T", node.Field, v)
			}

		case artifact.NormalizationRefetchReference:
			// No counterpart in the payload; refetch artifacts are resolved
			// through the registry by imperative flows.

		default:
			return fmt.Errorf("normalize: unknown node kind %q", node.Kind)
		}
	}
	return nil
}

// writeRecord performs the store writes for a payload that validateShape
// already accepted.
func writeRecord(s *Store, selections []artifact.NormalizationNode, payload map[string]any, variables map[string]any, parent Link) {
	rec := s.Ensure(parent)
	for _, node := range selections {
		switch node.Kind {
		case artifact.NormalizationScalar:
			v, ok := payload[node.Field]
			if !ok {
				continue
			}
			rec[FieldKey(node.Field, node.Args, variables)] = v

		case artifact.NormalizationLinked:
			v, ok := payload[node.Field]
			if !ok {
				continue
			}
			key := FieldKey(node.Field, node.Args, variables)
			switch pv := v.(type) {
			case nil:
				rec[key] = nil
			case map[string]any:
				link := childLink(node, pv, parent, key, -1)
				writeRecord(s, node.Selections, pv, variables, link)
				rec[key] = link
			case []any:
				list := make(LinkList, len(pv))
				for i, elem := range pv {
					if elem == nil {
						continue // positional null slot
					}
					m := elem.(map[string]any)
					link := childLink(node, m, parent, key, i)
					writeRecord(s, node.Selections, m, variables, link)
					l := link
					list[i] = &l
				}
				rec[key] = list
			}
		}
	}
}

// childLink resolves the identity of a linked payload: id field plus
// __typename, falling back to the AST's static concrete type for
// monomorphic fields. Payloads without an id get a synthetic id derived
// from the parent identity and field key, so identity stays deterministic.
// The parent typename is part of the synthetic id: servers commonly scope
// ids per type, and two parents sharing an id must not collide their
// id-less children.
func childLink(node artifact.NormalizationNode, payload map[string]any, parent Link, key string, idx int) Link {
	typename := node.ConcreteType
	if tn, ok := payload["__typename"].(string); ok && tn != "" {
		typename = tn
	}
	if raw, ok := payload["id"]; ok && raw != nil {
		switch t := raw.(type) {
		case string:
			return Link{ID: t, Typename: typename}
		default:
			return Link{ID: fmt.Sprintf("%v", t), Typename: typename}
		}
	}
	id := parent.Typename + ":" + parent.ID + "." + key
	if idx >= 0 {
		id = fmt.Sprintf("%s[%d]", id, idx)
	}
	return Link{ID: id, Typename: typename}
}

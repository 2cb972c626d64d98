// Package store holds the normalized in-memory representation of data
// fetched from the graph query service: a flat mapping from entity links
// to records, written by Normalize and traversed by the reader and the
// garbage collector.
//
// The store itself is not synchronized. All mutation and all traversal is
// serialized behind the owning environment's mutex, so readers never
// observe a partially normalized write.
package store

// RootID is the reserved id of the distinguished root record.
const RootID = "ROOT"

// Link is the opaque identity of a normalized entity. Two Links with equal
// fields denote the same entity.
type Link struct {
	ID       string
	Typename string
}

// RootLink returns the root Link for the given root type name.
func RootLink(typename string) Link {
	return Link{ID: RootID, Typename: typename}
}

// Record maps field keys to values. A value is a scalar, a Link, a
// LinkList, or nil for an explicit null. A missing key means the field was
// never fetched; nil means it is known to be empty. The two are distinct.
type Record map[string]any

// LinkList is an ordered list of links. Nil elements are positional null
// slots from the response.
type LinkList []*Link

// Store maps Links to Records.
type Store struct {
	records map[Link]Record
}

// New creates an empty Store.
func New() *Store {
	return &Store{records: make(map[Link]Record)}
}

// Get returns the record for l, if it exists.
func (s *Store) Get(l Link) (Record, bool) {
	r, ok := s.records[l]
	return r, ok
}

// Ensure returns the record for l, creating an empty one if needed.
func (s *Store) Ensure(l Link) Record {
	r, ok := s.records[l]
	if !ok {
		r = make(Record)
		s.records[l] = r
	}
	return r
}

// Delete removes the record for l.
func (s *Store) Delete(l Link) {
	delete(s.records, l)
}

// Links returns the links of all records currently in the store.
func (s *Store) Links() []Link {
	out := make([]Link, 0, len(s.records))
	for l := range s.records {
		out = append(out, l)
	}
	return out
}

// Len returns the number of records in the store.
func (s *Store) Len() int { return len(s.records) }

// Snapshot returns a deep copy of the store contents, for comparison in
// tests and diagnostics.
func (s *Store) Snapshot() map[Link]Record {
	out := make(map[Link]Record, len(s.records))
	for l, r := range s.records {
		cp := make(Record, len(r))
		for k, v := range r {
			if list, ok := v.(LinkList); ok {
				v = append(LinkList(nil), list...)
			}
			cp[k] = v
		}
		out[l] = cp
	}
	return out
}

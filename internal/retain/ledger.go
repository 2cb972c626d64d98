// Package retain reference-counts retained queries and drives the
// garbage collector that reclaims store records no retained query can
// reach.
package retain

import (
	artifact "github.com/hanpama/graphcache/internal/artifact"
	store "github.com/hanpama/graphcache/internal/store"
)

// RetainedQuery is the unit of reference counting: a normalization AST
// identified by its artifact id, deep-equal variables and an equal root.
// Equality is structural over that triple, not over the raw response.
type RetainedQuery struct {
	ArtifactID string
	AST        []artifact.NormalizationNode
	Variables  map[string]any
	Root       store.Link
}

func (q RetainedQuery) key() string {
	return q.ArtifactID + "\x00" + store.CanonicalVariables(q.Variables) + "\x00" + q.Root.Typename + "\x00" + q.Root.ID
}

type entry struct {
	query RetainedQuery
	count int
}

// Ledger maps retained-query keys to reference counts. Like the store it
// is unsynchronized; the owning environment serializes access.
type Ledger struct {
	entries map[string]*entry
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]*entry)}
}

// Retain increments the count for q, inserting at 1 if absent.
func (l *Ledger) Retain(q RetainedQuery) {
	k := q.key()
	if e, ok := l.entries[k]; ok {
		e.count++
		return
	}
	l.entries[k] = &entry{query: q, count: 1}
}

// Unretain decrements the count for q. When the count reaches 0 the entry
// is removed and Unretain reports true: the store may now hold records no
// retained query reaches, which is the signal to run the collector.
// Unretaining an unknown query reports false.
func (l *Ledger) Unretain(q RetainedQuery) bool {
	k := q.key()
	e, ok := l.entries[k]
	if !ok {
		return false
	}
	e.count--
	if e.count > 0 {
		return false
	}
	delete(l.entries, k)
	return true
}

// Count returns the current count for q.
func (l *Ledger) Count(q RetainedQuery) int {
	if e, ok := l.entries[q.key()]; ok {
		return e.count
	}
	return 0
}

// Len returns the number of live entries.
func (l *Ledger) Len() int { return len(l.entries) }

func (l *Ledger) queries() []RetainedQuery {
	out := make([]RetainedQuery, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.query)
	}
	return out
}

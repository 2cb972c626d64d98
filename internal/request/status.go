package request

import (
	retain "github.com/hanpama/graphcache/internal/retain"
)

// requestStatus is the network request lifecycle state machine:
//
//	undisposedIncomplete → undisposedComplete (successful response processed)
//	undisposedIncomplete → disposed           (torn down before completion)
//	undisposedComplete   → disposed           (torn down after completion)
//
// disposed is terminal. A request that fails stays incomplete forever.
// The closed set of implementations below is exhaustive.
type requestStatus interface {
	isRequestStatus()
}

type undisposedIncomplete struct{}

// undisposedComplete remembers the retained query so disposal can
// unretain exactly what completion retained.
type undisposedComplete struct {
	retained retain.RetainedQuery
}

type disposed struct{}

func (undisposedIncomplete) isRequestStatus() {}
func (undisposedComplete) isRequestStatus()   {}
func (disposed) isRequestStatus()             {}

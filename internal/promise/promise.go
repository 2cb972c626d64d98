// Package promise provides a memoized single-settlement async result with
// a synchronous status poll, so callers that must stay synchronous (the
// traversal engine) can observe pending work without blocking on it.
package promise

import (
	"context"
	"sync"
)

// State is the settlement state of a Promise.
type State int

const (
	Pending State = iota
	Resolved
	Rejected
)

// Promise is a single-assignment async result. The first settlement wins;
// later Resolve/Reject calls are no-ops. Settled values are cached, so
// repeated reads during re-render observe the same result without
// recomputation.
type Promise struct {
	mu    sync.Mutex
	done  chan struct{}
	state State
	value any
	err   error
}

// New creates a pending Promise.
func New() *Promise {
	return &Promise{done: make(chan struct{})}
}

// NewResolved creates an already-resolved Promise.
func NewResolved(v any) *Promise {
	p := New()
	p.Resolve(v)
	return p
}

// NewRejected creates an already-rejected Promise.
func NewRejected(err error) *Promise {
	p := New()
	p.Reject(err)
	return p
}

// Resolve settles the promise with v. No-op if already settled.
func (p *Promise) Resolve(v any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Pending {
		return
	}
	p.state = Resolved
	p.value = v
	close(p.done)
}

// Reject settles the promise with err. No-op if already settled.
func (p *Promise) Reject(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Pending {
		return
	}
	p.state = Rejected
	p.err = err
	close(p.done)
}

// Poll reports the current state without blocking.
func (p *Promise) Poll() (State, any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, p.value, p.err
}

// Done returns a channel closed on settlement.
func (p *Promise) Done() <-chan struct{} { return p.done }

// Wait blocks until settlement or ctx cancellation.
func (p *Promise) Wait(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		_, v, err := p.Poll()
		return v, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

package request

import (
	"context"
	"fmt"
	"time"

	artifact "github.com/hanpama/graphcache/internal/artifact"
	eventbus "github.com/hanpama/graphcache/internal/eventbus"
	events "github.com/hanpama/graphcache/internal/events"
	promise "github.com/hanpama/graphcache/internal/promise"
	reader "github.com/hanpama/graphcache/internal/reader"
	reqid "github.com/hanpama/graphcache/internal/reqid"
	retain "github.com/hanpama/graphcache/internal/retain"
	store "github.com/hanpama/graphcache/internal/store"
	transport "github.com/hanpama/graphcache/internal/transport"
)

// ShouldFetch is the decide-to-fetch policy, evaluated before any
// transport call. The zero value is IfNecessary.
type ShouldFetch int

const (
	// IfNecessary runs a presence check first and fetches only when the
	// store cannot satisfy the request.
	IfNecessary ShouldFetch = iota
	// Yes always fetches.
	Yes
	// No never fetches; the result is an already-resolved empty promise.
	No
)

// FetchOptions configures one network request.
type FetchOptions struct {
	ShouldFetch ShouldFetch

	// OnComplete receives the materialized read of the just-written data.
	// Panics inside the callback are swallowed so one observer's failure
	// cannot break the request.
	OnComplete func(data map[string]any)

	// OnError is invoked on transport or envelope failure. Panics inside
	// the callback are swallowed.
	OnError func()
}

// DisposeFunc releases a request's retention. The caller must invoke it
// exactly once on teardown; omitting it leaks retention and blocks garbage
// collection indefinitely. Calling it twice is a no-op the second time.
type DisposeFunc func()

// requestState is the mutable lifecycle cell of one network request,
// guarded by the environment mutex.
type requestState struct {
	status requestStatus
}

// requestSpec is what the fetch path needs regardless of whether the
// request came from an entrypoint or a refetch artifact.
type requestSpec struct {
	artifactID    string
	queryText     string
	normalization artifact.NormalizationSource
	root          store.Link
	variables     map[string]any

	// readBack, run under the environment lock after a successful write,
	// materializes the data handed to OnComplete and the promise. May be
	// nil (refetch artifacts have no reader).
	readBack func(envelopeData map[string]any) (map[string]any, error)
}

// MakeNetworkRequest ensures the data for an entrypoint is present,
// fetching it over the transport according to the fetch policy. It returns
// the wrapped async result and the disposer that releases the request's
// retention on view teardown.
func (e *Environment) MakeNetworkRequest(ctx context.Context, ep *artifact.Entrypoint, variables map[string]any, opts FetchOptions) (*promise.Promise, DisposeFunc, error) {
	root := store.RootLink(ep.ConcreteType)
	spec := requestSpec{
		artifactID:    ep.ID,
		queryText:     ep.NetworkRequestInfo.QueryText,
		normalization: ep.NetworkRequestInfo.Normalization,
		root:          root,
		variables:     variables,
		readBack: func(_ map[string]any) (data map[string]any, err error) {
			// The reader AST is a projection of the query that was just
			// normalized; a read panic here means the two artifacts disagree.
			// That contract violation is reported through the failure path,
			// never swallowed.
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("read after write for %q: %v", ep.ID, r)
				}
			}()
			ref := reader.FragmentReference{
				Reader:    ep.ReaderWithRefetchQueries,
				Root:      root,
				Variables: variables,
			}
			return reader.ReadFragment(e.store, e.registry, e.components, ref)
		},
	}
	return e.issue(ctx, spec, opts)
}

// MakeRefetchRequest issues an imperative refetch or mutation round trip
// rooted at an existing entity link. The response normalizes into the same
// store; completion observers receive the raw envelope data since refetch
// artifacts carry no reader.
func (e *Environment) MakeRefetchRequest(ctx context.Context, ra *artifact.RefetchArtifact, variables map[string]any, root store.Link, opts FetchOptions) (*promise.Promise, DisposeFunc, error) {
	spec := requestSpec{
		artifactID:    ra.ID,
		queryText:     ra.NetworkRequestInfo.QueryText,
		normalization: ra.NetworkRequestInfo.Normalization,
		root:          root,
		variables:     variables,
		readBack:      func(envelopeData map[string]any) (map[string]any, error) { return envelopeData, nil },
	}
	return e.issue(ctx, spec, opts)
}

func (e *Environment) issue(ctx context.Context, spec requestSpec, opts FetchOptions) (*promise.Promise, DisposeFunc, error) {
	if spec.variables == nil {
		spec.variables = map[string]any{}
	}
	st := &requestState{status: undisposedIncomplete{}}
	dispose := e.disposerFor(st)

	switch opts.ShouldFetch {
	case No:
		return promise.NewResolved(nil), dispose, nil
	case IfNecessary:
		if spec.normalization.IsLoader() {
			// Deferring the presence check until the loader resolves would
			// negate the latency benefit IfNecessary exists to provide.
			return nil, nil, &UnsupportedConfigurationError{
				Reason: "shouldFetch=IfNecessary requires a statically available normalization AST",
			}
		}
		e.mu.Lock()
		enough := reader.Check(e.store, spec.normalization.AST, spec.variables, spec.root) == reader.EnoughData
		e.mu.Unlock()
		if enough {
			// Data is already present: no transport call, no new retention.
			return promise.NewResolved(nil), dispose, nil
		}
	}

	p := promise.New()
	ctx, _ = reqid.NewContext(ctx)
	go e.fetch(ctx, spec, opts, st, p)
	return p, dispose, nil
}

func (e *Environment) fetch(ctx context.Context, spec requestSpec, opts FetchOptions, st *requestState, p *promise.Promise) {
	started := time.Now()
	eventbus.Publish(ctx, events.MakeNetworkRequest{
		ArtifactID: spec.artifactID,
		QueryText:  spec.queryText,
		Variables:  spec.variables,
	})

	fail := func(err error) {
		eventbus.Publish(ctx, events.ReceivedNetworkError{
			ArtifactID: spec.artifactID,
			Err:        err,
			Duration:   time.Since(started),
		})
		if opts.OnError != nil {
			safeCall(opts.OnError)
		}
		p.Reject(err)
	}

	// A loader-based AST resolves concurrently with the transport call;
	// both must complete before the response is processed.
	type loaded struct {
		ast []artifact.NormalizationNode
		err error
	}
	astCh := make(chan loaded, 1)
	if spec.normalization.IsLoader() {
		go func() {
			ast, err := spec.normalization.Loader(ctx)
			astCh <- loaded{ast: ast, err: err}
		}()
	} else {
		astCh <- loaded{ast: spec.normalization.AST}
	}

	envelope, terr := e.transport(ctx, spec.queryText, spec.variables)
	ld := <-astCh
	if terr != nil {
		fail(&transport.Error{Err: terr})
		return
	}
	if envelope == nil {
		fail(&transport.Error{Err: fmt.Errorf("transport returned no response envelope")})
		return
	}
	if ld.err != nil {
		fail(fmt.Errorf("load normalization ast for %q: %w", spec.artifactID, ld.err))
		return
	}
	if len(envelope.Errors) > 0 {
		fail(&GraphResponseError{Errors: envelope.Errors})
		return
	}

	// A successful response is processed only while still undisposed and
	// incomplete: a disposal that raced ahead must not write to the store
	// after teardown.
	var data map[string]any
	var readErr error
	e.mu.Lock()
	if _, live := st.status.(undisposedIncomplete); live {
		if err := store.Normalize(e.store, ld.ast, envelope.Data, spec.variables, spec.root); err != nil {
			e.mu.Unlock()
			fail(err)
			return
		}
		rq := retain.RetainedQuery{
			ArtifactID: spec.artifactID,
			AST:        ld.ast,
			Variables:  spec.variables,
			Root:       spec.root,
		}
		e.ledger.Retain(rq)
		st.status = undisposedComplete{retained: rq}
		if spec.readBack != nil {
			data, readErr = spec.readBack(envelope.Data)
		}
	}
	e.mu.Unlock()

	if readErr != nil {
		fail(readErr)
		return
	}

	eventbus.Publish(ctx, events.ReceivedNetworkResponse{
		ArtifactID: spec.artifactID,
		Duration:   time.Since(started),
	})
	if opts.OnComplete != nil {
		safeCall(func() { opts.OnComplete(data) })
	}
	p.Resolve(data)
}

// disposerFor builds the teardown function for one request. Disposal after
// completion unretains the stored query and, when that was the last
// holder, runs the garbage collector. Disposal before completion only
// marks the request disposed; the in-flight response will find the state
// changed and skip the store write.
func (e *Environment) disposerFor(st *requestState) DisposeFunc {
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if c, ok := st.status.(undisposedComplete); ok {
			if e.ledger.Unretain(c.retained) {
				retain.GarbageCollect(e.store, e.ledger)
			}
		}
		st.status = disposed{}
	}
}

// safeCall invokes an observer callback, discarding panics so a faulty
// observer cannot corrupt request state.
func safeCall(f func()) {
	defer func() { _ = recover() }()
	f()
}

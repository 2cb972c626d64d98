package promise_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	promise "github.com/hanpama/graphcache/internal/promise"
)

func TestPoll_PendingThenResolved(t *testing.T) {
	p := promise.New()

	state, v, err := p.Poll()
	if state != promise.Pending || v != nil || err != nil {
		t.Fatalf("fresh promise: got (%v, %v, %v)", state, v, err)
	}

	p.Resolve(42)
	state, v, err = p.Poll()
	if state != promise.Resolved || v != 42 || err != nil {
		t.Fatalf("after resolve: got (%v, %v, %v)", state, v, err)
	}
}

func TestFirstSettlementWins(t *testing.T) {
	p := promise.New()
	p.Resolve("first")
	p.Resolve("second")
	p.Reject(errors.New("late"))

	state, v, err := p.Poll()
	if state != promise.Resolved || v != "first" || err != nil {
		t.Fatalf("got (%v, %v, %v), want memoized first settlement", state, v, err)
	}
}

func TestReject(t *testing.T) {
	boom := errors.New("boom")
	p := promise.NewRejected(boom)

	state, _, err := p.Poll()
	if state != promise.Rejected || !errors.Is(err, boom) {
		t.Fatalf("got (%v, %v)", state, err)
	}
	if _, err := p.Wait(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Wait: got %v", err)
	}
}

func TestWait_BlocksUntilSettlement(t *testing.T) {
	p := promise.New()
	go func() {
		time.Sleep(10 * time.Millisecond)
		p.Resolve("done")
	}()

	v, err := p.Wait(context.Background())
	if err != nil || v != "done" {
		t.Fatalf("got (%v, %v)", v, err)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	p := promise.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}

	// The promise itself is still pending and settles normally afterwards.
	p.Resolve(1)
	if v, err := p.Wait(context.Background()); err != nil || v != 1 {
		t.Fatalf("got (%v, %v)", v, err)
	}
}

func TestConcurrentAwaitersSeeSameValue(t *testing.T) {
	p := promise.New()
	var wg sync.WaitGroup
	results := make([]any, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _ := p.Wait(context.Background())
			results[i] = v
		}()
	}
	p.Resolve("shared")
	wg.Wait()
	for i, v := range results {
		if v != "shared" {
			t.Fatalf("awaiter %d got %v", i, v)
		}
	}
}

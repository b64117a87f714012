package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// fakeResult implements Result
type fakeResult struct {
	err error
}

func (r *fakeResult) GetError() error {
	return r.err
}

// jobFunc adapts a function to the Job interface
type jobFunc func(ctx context.Context) Result

func (f jobFunc) Execute(ctx context.Context) Result {
	return f(ctx)
}

func TestNewPool_ClampsWorkers(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{5, 5},
		{1, 1},
		{0, 1},
		{-3, 1},
	}
	for _, tc := range cases {
		if p := NewPool(tc.in); p.workers != tc.want {
			t.Errorf("expected %d workers for input %d, got %d", tc.want, tc.in, p.workers)
		}
	}
}

func TestPool_RunsEveryJob(t *testing.T) {
	pool := NewPool(3)
	pool.Start()

	var executed int32
	count := 12

	for i := 0; i < count; i++ {
		pool.Submit(jobFunc(func(ctx context.Context) Result {
			atomic.AddInt32(&executed, 1)
			return &fakeResult{}
		}))
	}

	results := pool.Wait()

	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}
	if got := atomic.LoadInt32(&executed); got != int32(count) {
		t.Errorf("expected %d executions, got %d", count, got)
	}
}

func TestPool_CollectsErrors(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	pool.Submit(jobFunc(func(ctx context.Context) Result {
		return &fakeResult{err: errors.New("boom")}
	}))
	pool.Submit(jobFunc(func(ctx context.Context) Result {
		return &fakeResult{}
	}))
	pool.Submit(jobFunc(func(ctx context.Context) Result {
		return &fakeResult{}
	}))

	results := pool.Wait()
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	failed := 0
	for _, res := range results {
		if res.GetError() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failed result, got %d", failed)
	}
}

func TestPool_LimitsConcurrency(t *testing.T) {
	workers := 4
	pool := NewPool(workers)
	pool.Start()

	var current, peak int32

	for i := 0; i < 40; i++ {
		pool.Submit(jobFunc(func(ctx context.Context) Result {
			c := atomic.AddInt32(&current, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if c <= p || atomic.CompareAndSwapInt32(&peak, p, c) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			return &fakeResult{}
		}))
	}

	results := pool.Wait()
	if len(results) != 40 {
		t.Fatalf("expected 40 results, got %d", len(results))
	}

	if got := atomic.LoadInt32(&peak); got > int32(workers) {
		t.Errorf("peak concurrency %d exceeded %d workers", got, workers)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	pool.Shutdown()

	done := make(chan struct{})
	go func() {
		pool.Submit(jobFunc(func(ctx context.Context) Result {
			return &fakeResult{}
		}))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_ShutdownCancelsRunningJobs(t *testing.T) {
	pool := NewPool(1)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(jobFunc(func(ctx context.Context) Result {
		close(started)
		<-ctx.Done()
		return &fakeResult{err: ctx.Err()}
	}))

	<-started
	pool.Shutdown()

	// The results channel must be closed so readers do not hang
	done := make(chan struct{})
	go func() {
		for range pool.results {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("results channel was not closed after Shutdown")
	}
}

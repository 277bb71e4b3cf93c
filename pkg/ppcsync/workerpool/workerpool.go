// Package workerpool implements the shared worker pool described in §5: a
// bounded-concurrency fan-out helper built on golang.org/x/sync/errgroup
// and golang.org/x/sync/semaphore, used by CM2020's column construction
// (C10).
package workerpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Pool caps concurrent work at a fixed size, generalizing a
// single-goroutine-per-concern style to an arbitrary bounded fan-out.
type Pool struct {
	sem *semaphore.Weighted
	size int64
}

// New builds a Pool with the given concurrency cap; a size <= 0 defaults
// to runtime.GOMAXPROCS(0).
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: int64(size)}
}

// Size reports the pool's configured concurrency cap.
func (p *Pool) Size() int { return int(p.size) }

// Go runs fns concurrently, each gated by the pool's semaphore, and
// returns the first error encountered (if any), matching errgroup's
// fail-fast semantics.
func (p *Pool) Go(ctx context.Context, fns ...func() error) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		fn := fn
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer p.sem.Release(1)
			return fn()
		})
	}
	return g.Wait()
}

// ForEachIndex runs fn(i) for i in [0, n) across the pool, the Go analogue
// of the "parallel-for over index ranges" described in §5.
func (p *Pool) ForEachIndex(ctx context.Context, n int, fn func(i int) error) error {
	fns := make([]func() error, n)
	for i := 0; i < n; i++ {
		i := i
		fns[i] = func() error { return fn(i) }
	}
	return p.Go(ctx, fns...)
}

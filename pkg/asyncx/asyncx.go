// Package asyncx provides small helpers over goroutines: fire-and-forget
// launches and awaitable futures.
package asyncx

import (
	"context"
	"sync"
)

// result holds the outcome of an async computation.
type result[T any] struct {
	value T
	err   error
}

// Future represents a value that will be available asynchronously.
// Create one with Run and retrieve its value with Await.
type Future[T any] struct {
	ch  chan result[T]
	res *result[T]
	mu  sync.Mutex
}

// Run executes fn in a goroutine and returns a Future for its result.
// The goroutine starts immediately.
func Run[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{ch: make(chan result[T], 1)}
	go func() {
		v, err := fn()
		f.ch <- result[T]{value: v, err: err}
	}()
	return f
}

// Await blocks until the Future completes and returns its value and error.
// Safe to call multiple times — subsequent calls return the cached result.
func (f *Future[T]) Await() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.res == nil {
		r := <-f.ch
		f.res = &r
	}
	return f.res.value, f.res.err
}

// Do fires fn in a goroutine and forgets it (fire-and-forget).
func Do(fn func()) {
	go fn()
}

// DoCtx fires fn in a goroutine only if ctx is not already done.
func DoCtx(ctx context.Context, fn func(context.Context)) {
	go func() {
		select {
		case <-ctx.Done():
			return
		default:
			fn(ctx)
		}
	}()
}

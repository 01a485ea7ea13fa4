// Package promise implements a one-shot, observe-after-resolution result
// cell and a when-all combinator, grounded on original_source/wf/promise.c
// and the teacher's use of golang.org/x/sync/singleflight to collapse
// concurrent callers of the same underlying work into one execution
// (spec.md §4.8).
package promise

import (
	"sync"
)

// Promise holds a single eventual value or error. It may be resolved at
// most once; any Then registered before resolution is queued and run, in
// registration order, the moment Resolve or Reject is called. Then
// callbacks registered after resolution run immediately (synchronously,
// on the calling goroutine).
type Promise[T any] struct {
	mu       sync.Mutex
	resolved bool
	value    T
	err      error
	thens    []func(T, error)
}

// New returns an unresolved Promise.
func New[T any]() *Promise[T] {
	return &Promise[T]{}
}

// Resolved returns a Promise already carrying value.
func Resolved[T any](value T) *Promise[T] {
	p := New[T]()
	p.Resolve(value)
	return p
}

// Rejected returns a Promise already carrying err.
func Rejected[T any](err error) *Promise[T] {
	p := New[T]()
	p.Reject(err)
	return p
}

// Resolve completes p with value, invoking any pending Then callbacks.
// Calling Resolve or Reject more than once is a no-op.
func (p *Promise[T]) Resolve(value T) {
	p.settle(value, nil)
}

// Reject completes p with err.
func (p *Promise[T]) Reject(err error) {
	var zero T
	p.settle(zero, err)
}

func (p *Promise[T]) settle(value T, err error) {
	p.mu.Lock()
	if p.resolved {
		p.mu.Unlock()
		return
	}
	p.resolved = true
	p.value = value
	p.err = err
	thens := p.thens
	p.thens = nil
	p.mu.Unlock()

	for _, fn := range thens {
		fn(value, err)
	}
}

// Then registers fn to run with the eventual value/error. If p is
// already resolved, fn runs synchronously before Then returns.
func (p *Promise[T]) Then(fn func(value T, err error)) {
	p.mu.Lock()
	if p.resolved {
		value, err := p.value, p.err
		p.mu.Unlock()
		fn(value, err)
		return
	}
	p.thens = append(p.thens, fn)
	p.mu.Unlock()
}

// Peek returns the current value/error and whether p has resolved yet,
// without blocking or registering a callback.
func (p *Promise[T]) Peek() (value T, err error, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.err, p.resolved
}

// Wait blocks the calling goroutine until p resolves, returning its
// value/error. It is intended only for the module's explicit *_sync
// entry points (spec.md §5), never the normal paint/frame path.
func (p *Promise[T]) Wait() (T, error) {
	done := make(chan struct{})
	var value T
	var err error
	p.Then(func(v T, e error) {
		value, err = v, e
		close(done)
	})
	<-done
	return value, err
}

// WhenAll returns a Promise that resolves once every promise in ps has
// resolved, carrying their values in order. If any reject, WhenAll
// rejects with the first error encountered in completion order (not
// necessarily ps order); the other values are discarded.
func WhenAll[T any](ps ...*Promise[T]) *Promise[[]T] {
	out := New[[]T]()
	if len(ps) == 0 {
		out.Resolve(nil)
		return out
	}

	var mu sync.Mutex
	values := make([]T, len(ps))
	remaining := len(ps)
	var firstErr error

	for i, p := range ps {
		i := i
		p.Then(func(v T, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
			} else {
				values[i] = v
			}
			remaining--
			if remaining == 0 {
				if firstErr != nil {
					out.Reject(firstErr)
				} else {
					out.Resolve(values)
				}
			}
		})
	}
	return out
}

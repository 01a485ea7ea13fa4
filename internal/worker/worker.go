// Package worker implements a single background goroutine consuming a
// FIFO of jobs, each holding a weak reference to its owning object so
// that dropping the last strong reference automatically cancels any
// in-flight work for it. See spec.md §4.7, §5, §9 ("Reference counting
// with callbacks → single-owner + weak reference"), grounded on
// original_source/wf/worker.c. Go 1.24's weak package is the direct
// stdlib replacement for the C code's manual g_object_ref/unref pairs —
// no third-party library offers weak references, so this is the one
// place this module is stdlib-only by necessity, not by omission.
package worker

import (
	"sync"
	"weak"
)

// Job is one unit of background work bound to a weakly-held owner of
// type T (a *Waveform in this module's usage).
type Job[T any] struct {
	Ref  weak.Pointer[T]
	Work func()  // runs on the background goroutine unconditionally
	Done func(v *T) // runs via Pump only if Ref still resolves and the job was not cancelled
	Free func()     // runs via Pump after Done, always

	mu        sync.Mutex
	cancelled bool
}

// Cancel flips the per-job cancel flag; Work still runs to completion but
// Done is skipped (spec.md §4.7, §5).
func (j *Job[T]) Cancel() {
	j.mu.Lock()
	j.cancelled = true
	j.mu.Unlock()
}

func (j *Job[T]) isCancelled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancelled
}

// Worker runs one background goroutine draining a FIFO of Job[T]s and
// posts each finished job to a result channel for a "main thread" to
// Pump, per spec.md §5's single-writer discipline.
type Worker[T any] struct {
	queue   chan *Job[T]
	results chan *Job[T]

	mu       sync.Mutex
	inflight []*Job[T]

	closeOnce sync.Once
	done      chan struct{}
}

// New starts a Worker with the given queue depth.
func New[T any](queueDepth int) *Worker[T] {
	w := &Worker[T]{
		queue:   make(chan *Job[T], queueDepth),
		results: make(chan *Job[T], queueDepth),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Worker[T]) run() {
	for {
		select {
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			if job.Work != nil {
				job.Work()
			}
			w.results <- job
		case <-w.done:
			return
		}
	}
}

// Enqueue submits a job. The caller is responsible for the
// at-most-one-in-flight check (HasPending) before calling this, per
// spec.md §4.5 step 2.
func (w *Worker[T]) Enqueue(job *Job[T]) {
	w.mu.Lock()
	w.inflight = append(w.inflight, job)
	w.mu.Unlock()
	w.queue <- job
}

// HasPending reports whether a job matching pred is queued or running.
func (w *Worker[T]) HasPending(pred func(*Job[T]) bool) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, j := range w.inflight {
		if pred(j) {
			return true
		}
	}
	return false
}

// CancelJobs cancels every pending job whose weak reference currently
// resolves to owner.
func (w *Worker[T]) CancelJobs(owner *T) {
	target := weak.Make(owner)
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, j := range w.inflight {
		if j.Ref == target {
			j.Cancel()
		}
	}
}

// Pump drains all currently-finished jobs, invoking Done (unless
// cancelled, or the owner has been garbage collected) then Free, and
// removes each from the in-flight list. It never blocks.
func (w *Worker[T]) Pump() {
	for {
		select {
		case job := <-w.results:
			w.finish(job)
		default:
			return
		}
	}
}

// PumpUntilIdle blocks until every enqueued job has been finished. It is
// a *_sync-style entry point intended for tests and warmup, per
// spec.md §5 ("the main thread never blocks except in the explicit
// *_sync entry points").
func (w *Worker[T]) PumpUntilIdle() {
	for {
		w.mu.Lock()
		n := len(w.inflight)
		w.mu.Unlock()
		if n == 0 {
			return
		}
		job := <-w.results
		w.finish(job)
	}
}

func (w *Worker[T]) finish(job *Job[T]) {
	if !job.isCancelled() && job.Done != nil {
		if v := job.Ref.Value(); v != nil {
			job.Done(v)
		}
	}
	if job.Free != nil {
		job.Free()
	}
	w.mu.Lock()
	for i, j := range w.inflight {
		if j == job {
			w.inflight = append(w.inflight[:i], w.inflight[i+1:]...)
			break
		}
	}
	w.mu.Unlock()
}

// Close stops the background goroutine. Queued-but-unstarted jobs are
// dropped; their Free is never called, matching the worker's lifetime
// being scoped to the process.
func (w *Worker[T]) Close() {
	w.closeOnce.Do(func() { close(w.done) })
}

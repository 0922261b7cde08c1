// Package workerpool provides the C9 fixed-size worker pool used to fan
// SQL tuple-parsing work across cores when parallel mode is enabled. It
// wraps github.com/sourcegraph/conc/pool the way the teacher's
// ConcurrentTraverser wraps conc's pool.ContextPool for directory
// traversal fan-out.
package workerpool

import (
	"context"
	"errors"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

// ErrPoolStopped is returned by Submit after Close has been called.
// Submitting to a stopped pool is a programmer error per spec §7; callers
// are expected to treat it as fatal rather than retry.
var ErrPoolStopped = errors.New("workerpool: submit after pool stopped")

// Handle observes the result of one submitted task.
type Handle[T any] struct {
	result <-chan taskResult[T]
}

type taskResult[T any] struct {
	value T
	err   error
}

// Wait blocks until the task completes and returns its result.
func (h Handle[T]) Wait() (T, error) {
	r := <-h.result
	return r.value, r.err
}

// Pool is a fixed-size pool of workers drawing from conc's bounded
// goroutine pool. Each task's result is observable through the Handle
// returned by Submit.
type Pool struct {
	inner   *pool.ContextPool
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
	log     zerolog.Logger
}

// New creates a pool with the given worker count (0 selects
// runtime.NumCPU(), matching spec §6's `parallel_workers: 0 means all
// cores`).
func New(workers int, log zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		inner:  pool.New().WithMaxGoroutines(workers).WithContext(ctx),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
}

// Submit enqueues a nullary task and returns a handle for its result.
// Submitting after Close returns ErrPoolStopped instead of enqueuing. The
// task runs under a recover that logs and discards panics, matching
// spec §4.9's worker loop contract.
func Submit[T any](p *Pool, task func() (T, error)) (Handle[T], error) {
	if p.stopped {
		return Handle[T]{}, ErrPoolStopped
	}

	ch := make(chan taskResult[T], 1)
	p.inner.Go(func(context.Context) error {
		var res taskResult[T]
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.log.Error().Interface("panic", r).Msg("workerpool task panicked, discarding")
					res = taskResult[T]{}
				}
			}()
			res.value, res.err = task()
		}()
		ch <- res
		return nil
	})
	return Handle[T]{result: ch}, nil
}

// Close sets the stop flag and joins all workers. Safe to call once.
func (p *Pool) Close() error {
	p.stopped = true
	_ = p.inner.Wait()
	p.cancel()
	return nil
}

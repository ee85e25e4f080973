package async

import (
	"context"
	"sync"
	"time"
)

// Future represents the result of an asynchronous computation.
// A Future settles exactly once; every waiter observes the same value and error.
type Future[T any] struct {
	val  T
	err  error
	once sync.Once
	done chan struct{}
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// settle stores the outcome and wakes all waiters. Later calls are ignored.
func (f *Future[T]) settle(val T, err error) {
	f.once.Do(func() {
		f.val = val
		f.err = err
		close(f.done)
	})
}

// Resolved returns a future that is already complete with val.
func Resolved[T any](val T) *Future[T] {
	f := newFuture[T]()
	f.settle(val, nil)
	return f
}

// Rejected returns a future that is already complete with err.
func Rejected[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.settle(zero, err)
	return f
}

// Async executes fn in a new goroutine and returns a future for its result.
// If ctx is already canceled, fn is not invoked and the future carries ctx.Err().
func Async[P, T any](ctx context.Context, param P, fn func(context.Context, P) (T, error)) *Future[T] {
	f := newFuture[T]()

	go func() {
		// Early exit prevents running work for a caller that already gave up
		select {
		case <-ctx.Done():
			var zero T
			f.settle(zero, ctx.Err())
			return
		default:
		}

		f.settle(fn(ctx, param))
	}()

	return f
}

// Exec executes fn asynchronously when only the error matters.
func Exec[P any](ctx context.Context, param P, fn func(context.Context, P) error) *Future[struct{}] {
	return Async(ctx, param, func(ctx context.Context, p P) (struct{}, error) {
		return struct{}{}, fn(ctx, p)
	})
}

// FromChan adapts a single-value result channel into a future.
// The extract function splits a received message into value and error.
func FromChan[M, T any](ch <-chan M, extract func(M) (T, error)) *Future[T] {
	f := newFuture[T]()

	go func() {
		msg, ok := <-ch
		if !ok {
			var zero T
			f.settle(zero, ErrClosedChannel)
			return
		}
		f.settle(extract(msg))
	}()

	return f
}

// Await blocks until the future settles and returns its outcome.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.val, f.err
}

// AwaitContext blocks until the future settles or ctx is done.
// Abandoning the wait does not cancel the underlying computation.
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AwaitWithTimeout waits at most timeout for the future to settle.
// Returns ErrTimeout if it does not.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.val, f.err
	case <-timer.C:
		var zero T
		return zero, ErrTimeout
	}
}

// Done returns a channel closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// IsComplete reports whether the future has settled, without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// WaitAll waits for every future and returns their values in order.
// The first error encountered (in argument order) is returned.
func WaitAll[T any](futures ...*Future[T]) ([]T, error) {
	results := make([]T, len(futures))
	for i, f := range futures {
		v, err := f.Await()
		if err != nil {
			return nil, err
		}
		results[i] = v
	}
	return results, nil
}

// WaitAny returns the index and outcome of the first future to settle.
func WaitAny[T any](futures ...*Future[T]) (int, T, error) {
	var zero T
	if len(futures) == 0 {
		return -1, zero, ErrNoFutures
	}

	type result struct {
		index int
		val   T
		err   error
	}

	// Buffered so late finishers never block
	done := make(chan result, len(futures))
	for i, f := range futures {
		go func(index int, f *Future[T]) {
			v, err := f.Await()
			done <- result{index, v, err}
		}(i, f)
	}

	res := <-done
	return res.index, res.val, res.err
}

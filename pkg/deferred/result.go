package deferred

import (
	"context"
	"errors"
	"sync"
)

// ErrNilResult is returned by Then when its callback yields no Result.
var ErrNilResult = errors.New("deferred: Then callback returned a nil Result")

// Result is a single value or error that becomes available once an
// asynchronous operation completes. It is safe for concurrent use; any
// number of goroutines may Await the same Result.
type Result[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once

	val T
	err error
}

// Go runs fn in its own goroutine and returns immediately. fn receives a
// context derived from ctx that is cancelled when the Result is cancelled
// or fn returns.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Result[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)
	r := &Result[T]{done: make(chan struct{}), cancel: cancel}

	go func() {
		defer cancel()
		val, err := fn(runCtx)
		r.complete(val, err)
	}()
	return r
}

// Resolved returns an already completed successful Result.
func Resolved[T any](val T) *Result[T] {
	r := &Result[T]{done: make(chan struct{}), cancel: func() {}}
	r.complete(val, nil)
	return r
}

// Failed returns an already completed failed Result.
func Failed[T any](err error) *Result[T] {
	var zero T
	r := &Result[T]{done: make(chan struct{}), cancel: func() {}}
	r.complete(zero, err)
	return r
}

func (r *Result[T]) complete(val T, err error) {
	r.once.Do(func() {
		r.val = val
		r.err = err
		close(r.done)
	})
}

// Done is closed once the value or error is available.
func (r *Result[T]) Done() <-chan struct{} { return r.done }

// Cancel aborts the underlying operation. A Result that already completed
// keeps its outcome.
func (r *Result[T]) Cancel() { r.cancel() }

// Await blocks until the Result completes or ctx is done. Giving up on
// Await does not cancel the operation; use Cancel for that.
func (r *Result[T]) Await(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-r.done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Get blocks until the Result completes.
func (r *Result[T]) Get() (T, error) {
	<-r.done
	return r.val, r.err
}

// Map transforms a successful value. Errors pass through untouched.
func Map[T, U any](r *Result[T], fn func(T) (U, error)) *Result[U] {
	return chain(r, func(ctx context.Context, val T, err error) (U, error) {
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(val)
	})
}

// Then starts a dependent operation once r succeeds and completes with
// that operation's outcome. A nil Result from fn fails with ErrNilResult.
func Then[T, U any](r *Result[T], fn func(T) *Result[U]) *Result[U] {
	return chain(r, func(ctx context.Context, val T, err error) (U, error) {
		if err != nil {
			var zero U
			return zero, err
		}
		next := fn(val)
		if next == nil {
			var zero U
			return zero, ErrNilResult
		}
		out, nextErr := next.Await(ctx)
		if ctx.Err() != nil {
			next.Cancel()
		}
		return out, nextErr
	})
}

// Recover lets the caller replace a failure with a fallback value. fn may
// return an error to keep the Result failed.
func Recover[T any](r *Result[T], fn func(error) (T, error)) *Result[T] {
	return chain(r, func(ctx context.Context, val T, err error) (T, error) {
		if err != nil {
			return fn(err)
		}
		return val, nil
	})
}

// chain waits for r and applies step. Cancelling the chained Result also
// cancels r.
func chain[T, U any](r *Result[T], step func(ctx context.Context, val T, err error) (U, error)) *Result[U] {
	return Go(context.Background(), func(ctx context.Context) (U, error) {
		select {
		case <-r.done:
		case <-ctx.Done():
			r.Cancel()
			<-r.done
			var zero U
			return zero, ctx.Err()
		}
		return step(ctx, r.val, r.err)
	})
}

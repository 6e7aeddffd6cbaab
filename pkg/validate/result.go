package validate

import (
	"context"

	"github.com/goliatone/go-formstate/pkg/state"
)

// Func is a synchronous validator. An empty message means valid.
type Func func(ctx context.Context, value state.Value) (string, error)

// AsyncFunc is an on-blur validator that may answer now or later.
type AsyncFunc func(ctx context.Context, value state.Value) Result

// Result is the answer of an AsyncFunc: an immediate message, an immediate
// failure, or pending work that settles on its own goroutine.
type Result struct {
	message string
	err     error
	later   func(ctx context.Context) (string, error)
}

// Now is an immediate result.
func Now(message string) Result {
	return Result{message: message}
}

// Fail is an immediate execution failure.
func Fail(err error) Result {
	return Result{err: err}
}

// Later is a pending result; fn runs off the event loop.
func Later(fn func(ctx context.Context) (string, error)) Result {
	if fn == nil {
		return Result{}
	}
	return Result{later: fn}
}

// Pending reports whether the result has not settled yet.
func (r Result) Pending() bool {
	return r.later != nil
}

// Message wraps a plain predicate-style validator.
func Message(fn func(value state.Value) string) Func {
	if fn == nil {
		return nil
	}
	return func(_ context.Context, value state.Value) (string, error) {
		return fn(value), nil
	}
}

// Sync lets a synchronous validator serve as an on-blur validator.
func Sync(fn Func) AsyncFunc {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, value state.Value) Result {
		msg, err := fn(ctx, value)
		if err != nil {
			return Fail(err)
		}
		return Now(msg)
	}
}

// Async runs fn off the event loop every time.
func Async(fn Func) AsyncFunc {
	if fn == nil {
		return nil
	}
	return func(_ context.Context, value state.Value) Result {
		return Later(func(ctx context.Context) (string, error) {
			return fn(ctx, value)
		})
	}
}

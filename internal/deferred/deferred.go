// Package deferred provides a lazily-resolved value handle for response data
// that is streamed after the primary payload. A failed handle is contained to
// its consumer; it can never fail the page that started it.
package deferred

import (
	"context"
	"fmt"
)

// Value resolves exactly once, out of band of the response that started it.
type Value[T any] struct {
	done   chan struct{}
	result T
	err    error
}

// Start begins resolving fn in the background and returns the handle. A panic
// inside fn is converted into the handle's error.
func Start[T any](ctx context.Context, fn func(context.Context) (T, error)) *Value[T] {
	v := &Value[T]{done: make(chan struct{})}
	go func() {
		defer close(v.done)
		defer func() {
			if r := recover(); r != nil {
				v.err = fmt.Errorf("deferred: panic: %v", r)
			}
		}()
		v.result, v.err = fn(ctx)
	}()
	return v
}

// Resolved returns a handle already carrying a value. Test helper.
func Resolved[T any](result T, err error) *Value[T] {
	v := &Value[T]{done: make(chan struct{}), result: result, err: err}
	close(v.done)
	return v
}

// Wait blocks until the value resolves or ctx is done, whichever is first.
func (v *Value[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-v.done:
		return v.result, v.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed once the value has resolved.
func (v *Value[T]) Done() <-chan struct{} { return v.done }

package ai

import (
	"context"
	"sync"
)

// State is the lifecycle stage of an asynchronous Call.
type State int

const (
	Idle State = iota
	Pending
	Settled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// Call is a single asynchronous operation whose settled value is always usable.
type Call[T any] struct {
	mu    sync.Mutex
	state State
	value T
	done  chan struct{}

	onPanic func(recovered any)
}

// NewCall returns an idle Call.
func NewCall[T any]() *Call[T] {
	return &Call[T]{done: make(chan struct{})}
}

// OnPanic registers f to receive the value recovered when fn panics.
// It must be called before Start.
func (c *Call[T]) OnPanic(f func(recovered any)) *Call[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPanic = f
	return c
}

// Start runs fn in a new goroutine. If fn panics the call settles with
// fallback and the panic goes to the OnPanic hook; the fallback is only
// reported, nothing else observes it. Start reports false if the call was
// already started.
func (c *Call[T]) Start(fn func() T, fallback T) bool {
	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		return false
	}
	c.state = Pending
	onPanic := c.onPanic
	c.mu.Unlock()

	go func() {
		v := fallback
		defer func() {
			if r := recover(); r != nil && onPanic != nil {
				onPanic(r)
			}
			c.settle(v)
		}()
		v = fn()
	}()
	return true
}

func (c *Call[T]) settle(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	c.state = Settled
	close(c.done)
}

// State returns the current stage.
func (c *Call[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed once the call settles.
func (c *Call[T]) Done() <-chan struct{} {
	return c.done
}

// Value returns the settled value and whether the call has settled.
func (c *Call[T]) Value() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.state == Settled
}

// Wait blocks until the call settles or ctx is done. Abandoning the wait
// does not stop the call.
func (c *Call[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		v, _ := c.Value()
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

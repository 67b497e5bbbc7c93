package goglib

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrContextClosed is returned by MainContext.Call after Close.
var ErrContextClosed = errors.New("goglib: main context closed")

// Dispatcher hands a function to the goroutine that owns application state.
// Signals may be emitted from threads the runtime owns; a SignalHandler
// configured WithDispatcher never calls its receiver on those threads.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(fn func())

// Dispatch calls d(fn).
func (d DispatcherFunc) Dispatch(fn func()) {
	d(fn)
}

// MainContext runs queued functions one at a time, in order, on a single
// goroutine.
type MainContext struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	done chan struct{}
}

// NewMainContext starts a MainContext. Call Close to stop it.
func NewMainContext() *MainContext {
	c := &MainContext{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *MainContext) run() {
	defer close(c.done)
	for {
		c.mu.Lock()
		batch := c.queue
		c.queue = nil
		closed := c.closed
		c.mu.Unlock()

		for _, fn := range batch {
			c.invoke(fn)
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-c.wake
	}
}

func (c *MainContext) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("dispatched function panicked", zap.Any("panic", r))
		}
	}()
	fn()
}

func (c *MainContext) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Dispatch queues fn. Functions queued after Close are dropped.
func (c *MainContext) Dispatch(fn func()) {
	if !c.DispatchOr(fn, nil) {
		Logger().Debug("dropping function queued on a closed main context")
	}
}

// DispatchOr queues fn and reports whether it was accepted. If the context is
// closed, onFailure (when not nil) runs on the calling goroutine instead.
func (c *MainContext) DispatchOr(fn, onFailure func()) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		if onFailure != nil {
			onFailure()
		}
		return false
	}
	c.queue = append(c.queue, fn)
	c.mu.Unlock()
	c.signal()
	return true
}

// Call runs fn on the context and waits for it to return. It must not be
// called from a function the context is running.
func (c *MainContext) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !c.DispatchOr(func() {
		defer close(finished)
		fn()
	}, nil) {
		return ErrContextClosed
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting functions. Functions already queued still run.
// Close does not wait; use Done for that.
func (c *MainContext) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.signal()
}

// Done is closed once the context has run its last function.
func (c *MainContext) Done() <-chan struct{} {
	return c.done
}

package channel

import (
	"context"
	"errors"
	"sync"
)

// DefaultCapacity applies when a channel is created with a non-positive
// capacity.
const DefaultCapacity = 100

var (
	// ErrClosed is returned by Send on a closed channel and by Receive once
	// a closed channel has been drained. It is the end-of-channel signal and
	// plays the role io.EOF plays for readers.
	ErrClosed = errors.New("channel closed")

	// ErrFull is returned by TrySend when the channel is at capacity.
	ErrFull = errors.New("channel full")

	// ErrEmpty is returned by TryReceive when no item is immediately
	// available.
	ErrEmpty = errors.New("channel empty")
)

// Channel is a bounded FIFO queue for value exchange between concurrent
// tasks. The queued length never exceeds the configured capacity. Once
// closed a channel accepts no further items, but items enqueued before the
// close remain receivable in order until drained.
type Channel[T any] struct {
	items     chan T
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a channel bounded by capacity. Non-positive capacities fall
// back to DefaultCapacity.
func New[T any](capacity int) *Channel[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Channel[T]{
		items: make(chan T, capacity),
		done:  make(chan struct{}),
	}
}

// Send enqueues value, blocking while the channel is at capacity. It returns
// ErrClosed if the channel is closed before or while waiting, and ctx.Err()
// if the context is cancelled first.
func (c *Channel[T]) Send(ctx context.Context, value T) error {
	if c.IsClosed() {
		return ErrClosed
	}
	select {
	case c.items <- value:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend enqueues value without blocking. It returns ErrClosed on a closed
// channel and ErrFull when the channel is at capacity.
func (c *Channel[T]) TrySend(value T) error {
	if c.IsClosed() {
		return ErrClosed
	}
	select {
	case c.items <- value:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		return ErrFull
	}
}

// Receive dequeues the oldest item, blocking while the channel is empty and
// open. Once the channel is closed, remaining items are still delivered in
// FIFO order; after the drain Receive permanently returns ErrClosed. A
// cancelled context surfaces as ctx.Err().
func (c *Channel[T]) Receive(ctx context.Context) (T, error) {
	// Buffered items take priority over the closed flag so that a close
	// never discards deliverable values.
	select {
	case value := <-c.items:
		return value, nil
	default:
	}
	select {
	case value := <-c.items:
		return value, nil
	case <-c.done:
		select {
		case value := <-c.items:
			return value, nil
		default:
			var zero T
			return zero, ErrClosed
		}
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryReceive dequeues without blocking. It returns ErrEmpty when no item is
// available on an open channel and ErrClosed once a closed channel has been
// drained.
func (c *Channel[T]) TryReceive() (T, error) {
	select {
	case value := <-c.items:
		return value, nil
	default:
		var zero T
		if c.IsClosed() {
			return zero, ErrClosed
		}
		return zero, ErrEmpty
	}
}

// Close marks the channel closed and wakes all blocked senders and
// receivers. It is idempotent; the closed flag never reverts.
func (c *Channel[T]) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// IsClosed reports whether Close has been called.
func (c *Channel[T]) IsClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Len returns the number of queued items at the time of the call.
func (c *Channel[T]) Len() int { return len(c.items) }

// Cap returns the channel capacity.
func (c *Channel[T]) Cap() int { return cap(c.items) }

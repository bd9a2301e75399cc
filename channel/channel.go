package channel

import (
	"errors"
	"fmt"
	"sync"
)

// Unbounded is the capacity of a channel whose Send never blocks.
const Unbounded = -1

// ErrClosed is returned by Send and Close on a channel that is already closed.
var ErrClosed = errors.New("channel: closed")

// Status is the outcome of a TryReceive.
type Status int

const (
	// Received means a value was taken from the channel.
	Received Status = iota
	// WouldBlock means the channel is empty but still open.
	WouldBlock
	// Closed means the channel is empty and closed: end-of-stream.
	Closed
)

func (s Status) String() string {
	switch s {
	case Received:
		return "received"
	case WouldBlock:
		return "would-block"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Receiver is the consumer side of a channel.
type Receiver[T any] interface {
	// Receive returns the next value, blocking while the channel is empty and
	// open. It returns false once the channel is empty and closed.
	Receive() (T, bool)
	// TryReceive is the non-blocking form of Receive.
	TryReceive() (T, Status)
}

// Sender is the producer side of a channel.
type Sender[T any] interface {
	// Send enqueues v, blocking while the channel is full.
	Send(v T) error
	// Close marks the end of the stream.
	Close() error
}

// Channel is a FIFO queue of T with bounded, rendezvous or unbounded capacity.
type Channel[T any] struct {
	capacity int

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []T
	closed bool

	// sent and taken count values in and out of the queue. A rendezvous
	// sender waits until taken reaches its ticket.
	sent  uint64
	taken uint64
}

var (
	_ Receiver[any] = (*Channel[any])(nil)
	_ Sender[any]   = (*Channel[any])(nil)
)

// New creates an open channel. A capacity of 0 makes every Send wait until a
// receiver has taken the value; Unbounded makes Send never block. New panics
// on any other negative capacity, like make does.
func New[T any](capacity int) *Channel[T] {
	if capacity < Unbounded {
		panic(fmt.Sprintf("channel: invalid capacity %d", capacity))
	}
	c := &Channel[T]{
		capacity: capacity,
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Send enqueues v. It blocks while the channel is full and returns ErrClosed
// if the channel is, or becomes, closed before v could be enqueued.
func (c *Channel[T]) Send(v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for !c.closed && c.full() {
		c.cond.Wait()
	}
	if c.closed {
		return ErrClosed
	}

	c.queue = append(c.queue, v)
	c.sent++
	ticket := c.sent
	c.cond.Broadcast()

	if c.capacity == 0 {
		// a value sent before a close stays receivable, so only wait for the hand-off
		for c.taken < ticket && !c.closed {
			c.cond.Wait()
		}
	}
	return nil
}

// Receive returns the next value. It blocks while the channel is empty and
// open, and returns the zero value and false once it is empty and closed.
func (c *Channel[T]) Receive() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.queue) == 0 && !c.closed {
		c.cond.Wait()
	}
	if len(c.queue) == 0 {
		var zero T
		return zero, false
	}
	return c.pop(), true
}

// TryReceive returns the next value if one is queued, without blocking.
func (c *Channel[T]) TryReceive() (T, Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) > 0 {
		return c.pop(), Received
	}

	var zero T
	if c.closed {
		return zero, Closed
	}
	return zero, WouldBlock
}

// Close marks the channel closed. Values already queued remain receivable.
// Closing a closed channel returns ErrClosed.
func (c *Channel[T]) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.closed = true
	c.cond.Broadcast()
	return nil
}

// IsOpen reports whether Close has not been called yet.
func (c *Channel[T]) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return !c.closed
}

// Len returns the number of queued values.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.queue)
}

// Cap returns the capacity the channel was created with.
func (c *Channel[T]) Cap() int {
	return c.capacity
}

func (c *Channel[T]) full() bool {
	switch c.capacity {
	case Unbounded:
		return false
	case 0:
		return len(c.queue) > 0
	default:
		return len(c.queue) >= c.capacity
	}
}

// pop must be called with mu held and a non-empty queue.
func (c *Channel[T]) pop() T {
	v := c.queue[0]
	var zero T
	c.queue[0] = zero
	c.queue = c.queue[1:]
	c.taken++
	c.cond.Broadcast()
	return v
}

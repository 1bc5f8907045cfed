// Package pubsub broadcasts values to any number of subscribers over channels that are safe to close at any time.
package pubsub

import (
	"sync"
)

type Sender[T any] interface {
	Send(T) bool
	// Offer is like Send, but gives up instead of blocking when there is no room.
	Offer(T) bool
}

type Receiver[T any] interface {
	Receive() <-chan T
}

type Closer interface {
	Close()
}

type SenderCloser[T any] interface {
	Sender[T]
	Closer
}

type ReceiverCloser[T any] interface {
	Receiver[T]
	Closer
}

type Channel[T any] interface {
	Sender[T]
	Receiver[T]
	Closer
}

// channel is a chan that can be closed while senders are blocked on it: they give up instead of panicking.
type channel[T any] struct {
	mu      sync.RWMutex
	ch      chan T
	done    chan struct{}
	closed  bool
	sending sync.WaitGroup
}

func NewChannel[T any](bufSize int) Channel[T] {
	return &channel[T]{
		ch:   make(chan T, bufSize),
		done: make(chan struct{}),
	}
}

func (c *channel[T]) Receive() <-chan T {
	return c.ch
}

// Send blocks until msg is accepted, returning false if the channel is or becomes closed first.
func (c *channel[T]) Send(msg T) bool {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return false
	}
	c.sending.Add(1)
	defer c.sending.Done()
	c.mu.RUnlock()

	select {
	case c.ch <- msg:
		return true
	case <-c.done:
		return false
	}
}

// Offer accepts msg only if it can do so without blocking, returning false if the channel is full or closed.
func (c *channel[T]) Offer(msg T) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.ch <- msg:
		return true
	default:
		return false
	}
}

// Close is idempotent. Blocked senders are released before the receiving side sees the channel close.
func (c *channel[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	close(c.done)
	c.sending.Wait()
	close(c.ch)
	c.closed = true
}

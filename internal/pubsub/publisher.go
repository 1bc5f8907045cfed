package pubsub

import (
	"errors"
	"sync"

	"github.com/alanbriolat/video-resolver/generic"
	sync_ "github.com/alanbriolat/video-resolver/internal/sync"
)

const (
	DefaultPublisherBufSize  = 16
	DefaultSubscriberBufSize = 16
)

var ErrPublisherClosed = errors.New("publisher closed")

// Publisher delivers every value sent to it to all current subscribers, in order. Delivery never waits on a
// subscriber: one whose buffer is full is dropped and closed, so a stalled reader can't hold up the sender.
type Publisher[T any] struct {
	mu          sync.Mutex
	in          Channel[T]
	running     sync.WaitGroup
	subscribers *sync_.Mutexed[generic.Set[SenderCloser[T]]]
	closed      bool
}

func NewPublisher[T any]() *Publisher[T] {
	p := &Publisher[T]{
		in:          NewChannel[T](DefaultPublisherBufSize),
		subscribers: sync_.NewMutexed(generic.NewSet[SenderCloser[T]]()),
	}
	p.running.Add(1)
	go p.run()
	return p
}

func (p *Publisher[T]) run() {
	defer p.running.Done()
	for msg := range p.in.Receive() {
		// Copy the subscribers so that subscribing isn't blocked by a slow subscriber
		var subscribers []SenderCloser[T]
		_ = p.subscribers.Locked(func(s generic.Set[SenderCloser[T]]) error {
			subscribers = s.ToSlice()
			return nil
		})
		for _, s := range subscribers {
			if !s.Offer(msg) {
				p.unsubscribe(s)
				s.Close()
			}
		}
	}
}

// Send queues msg for all subscribers, returning false if the Publisher is closed.
func (p *Publisher[T]) Send(msg T) bool {
	return p.in.Send(msg)
}

func (p *Publisher[T]) Subscribe() (ReceiverCloser[T], error) {
	s := NewChannel[T](DefaultSubscriberBufSize)
	if err := p.AddSubscriber(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Publisher[T]) AddSubscriber(s SenderCloser[T]) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}
	return p.subscribers.Locked(func(subscribers generic.Set[SenderCloser[T]]) error {
		subscribers.Add(s)
		return nil
	})
}

func (p *Publisher[T]) unsubscribe(s SenderCloser[T]) {
	_ = p.subscribers.Locked(func(subscribers generic.Set[SenderCloser[T]]) error {
		subscribers.Remove(s)
		return nil
	})
}

// Close delivers everything already sent, then closes all subscribers. It is idempotent.
func (p *Publisher[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.in.Close()
	p.running.Wait()
	var subscribers []SenderCloser[T]
	_ = p.subscribers.Locked(func(s generic.Set[SenderCloser[T]]) error {
		subscribers = s.ToSlice()
		s.Clear()
		return nil
	})
	for _, s := range subscribers {
		s.Close()
	}
	p.closed = true
}

//Package broadcast provides a bounded multi-consumer channel. Every receiver sees every value sent after it
//subscribed, in order. Senders never block: a receiver that falls more than the channel's capacity behind loses
//the oldest values and is told how many it missed.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

//ErrClosed is returned by Recv once the channel has been closed and the receiver has drained every buffered value,
//and by Send after Close.
var ErrClosed = errors.New("broadcast channel closed")

//ErrNoReceivers is returned by Send when nobody is subscribed. The value is dropped.
var ErrNoReceivers = errors.New("broadcast channel has no receivers")

//LaggedError is returned by Recv when the receiver fell behind and values were overwritten before it could read
//them. The receiver has been moved forward to the oldest value still buffered and can keep receiving.
type LaggedError struct {
	Skipped uint64
}

func (e *LaggedError) Error() string {
	return fmt.Sprintf("receiver lagged behind, skipped %d values", e.Skipped)
}

//Sender is the sending half of a broadcast channel. It is safe for concurrent use.
type Sender[T any] struct {
	mu        sync.Mutex
	buf       []T
	head      uint64
	receivers int
	closed    bool
	//notify is closed and replaced whenever a value is sent or the channel is closed
	notify chan struct{}
}

//Receiver is the receiving half of a broadcast channel. A Receiver must only be used from a single goroutine.
type Receiver[T any] struct {
	sender *Sender[T]
	next   uint64
	closed bool
}

//New creates a broadcast channel which buffers up to capacity values per receiver
func New[T any](capacity int) *Sender[T] {
	if capacity < 1 {
		panic("broadcast: capacity must be at least 1")
	}
	return &Sender[T]{
		buf:    make([]T, capacity),
		notify: make(chan struct{}),
	}
}

//Subscribe creates a new receiver which will see every value sent from now on
func (s *Sender[T]) Subscribe() *Receiver[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receivers++
	return &Receiver[T]{
		sender: s,
		next:   s.head,
	}
}

//Send broadcasts v to every current receiver. It returns the number of receivers the value was sent to.
func (s *Sender[T]) Send(v T) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	if s.receivers == 0 {
		return 0, ErrNoReceivers
	}
	s.buf[s.head%uint64(len(s.buf))] = v
	s.head++
	close(s.notify)
	s.notify = make(chan struct{})
	return s.receivers, nil
}

//Close closes the channel. Receivers will still get every value buffered for them before seeing ErrClosed.
func (s *Sender[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.notify)
}

//ReceiverCount returns the number of active receivers
func (s *Sender[T]) ReceiverCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receivers
}

//Recv blocks until a value is available, the receiver has lagged, the channel is closed or ctx is done
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	s := r.sender
	for {
		s.mu.Lock()
		if r.closed {
			s.mu.Unlock()
			return zero, ErrClosed
		}
		if r.next < s.head {
			capacity := uint64(len(s.buf))
			if s.head-r.next > capacity {
				oldest := s.head - capacity
				skipped := oldest - r.next
				r.next = oldest
				s.mu.Unlock()
				return zero, &LaggedError{Skipped: skipped}
			}
			v := s.buf[r.next%capacity]
			r.next++
			s.mu.Unlock()
			return v, nil
		}
		if s.closed {
			s.mu.Unlock()
			return zero, ErrClosed
		}
		wait := s.notify
		s.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

//Close unsubscribes the receiver. Further calls to Recv return ErrClosed.
func (r *Receiver[T]) Close() {
	s := r.sender
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	s.receivers--
}

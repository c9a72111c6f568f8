// Package sink provides the bounded queue of outgoing route events the
// routing engine feeds and a session drains.
package sink

import (
	"context"
	"errors"
	"sync"
)

// DefaultSize is the queue capacity used for a size of zero or less
const DefaultSize = 1024

// ErrClosed is returned by Put and Next once the Sink is closed (and,
// for Next, drained).
var ErrClosed = errors.New("sink closed")

// Sink is a blocking FIFO of outgoing items. Put blocks while the queue
// is full, applying backpressure to the producer.
//
// Sink is safe for concurrent use.
type Sink struct {
	items     chan interface{}
	done      chan struct{}
	closeOnce sync.Once

	// held are items taken from items by a Next whose ctx ended first.
	// They are older than anything in items.
	mu   sync.Mutex
	held []interface{}
}

// New returns a new Sink holding up to size items
func New(size int) *Sink {
	if size <= 0 {
		size = DefaultSize
	}
	return &Sink{items: make(chan interface{}, size), done: make(chan struct{})}
}

// Put appends item, waiting for room if the queue is full
func (s *Sink) Put(ctx context.Context, item interface{}) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.items <- item:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next removes and returns the oldest item, waiting until one is
// available. Items queued before Close are still delivered. Once ctx is
// done Next returns its error and leaves every item queued.
func (s *Sink) Next(ctx context.Context) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if item, ok := s.TryNext(); ok {
		return item, nil
	}
	select {
	case item := <-s.items:
		if err := ctx.Err(); err != nil {
			s.unget(item)
			return nil, err
		}
		return item, nil
	case <-s.done:
		if item, ok := s.TryNext(); ok {
			return item, nil
		}
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryNext removes and returns the oldest item without waiting
func (s *Sink) TryNext() (interface{}, bool) {
	s.mu.Lock()
	if len(s.held) > 0 {
		item := s.held[0]
		s.held = s.held[1:]
		s.mu.Unlock()
		return item, true
	}
	s.mu.Unlock()
	select {
	case item := <-s.items:
		return item, true
	default:
		return nil, false
	}
}

func (s *Sink) unget(item interface{}) {
	s.mu.Lock()
	s.held = append(s.held, item)
	s.mu.Unlock()
}

// Len returns the number of queued items
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.held) + len(s.items)
}

// Close stops the Sink accepting items. It is safe to call more than once.
func (s *Sink) Close() { s.closeOnce.Do(func() { close(s.done) }) }

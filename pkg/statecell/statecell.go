// Package statecell provides a small observable value container with a
// single-writer discipline: one component owns and mutates the cell, any
// number of consumers read the current value or watch for updates over a
// channel they can unsubscribe from.
package statecell

import "sync"

// Reader is the consumer-facing view of a Cell. Owners hand out Readers so
// the single-writer discipline is visible in the types.
type Reader[T any] interface {
	Get() T
	Watch() (<-chan T, func())
}

// watchBuffer bounds how many undelivered updates a slow watcher may lag
// behind before the oldest update is dropped in favor of newer ones.
const watchBuffer = 16

// Cell holds a value of type T. Set replaces the value wholesale and fans the
// new value out to all watchers; it never blocks on a slow consumer.
type Cell[T any] struct {
	mu       sync.RWMutex
	value    T
	watchers map[int]chan T
	nextID   int
	closed   bool
}

func New[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value:    initial,
		watchers: make(map[int]chan T),
	}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set replaces the current value and notifies watchers. When a watcher's
// buffer is full the oldest pending update is discarded so the most recent
// value always gets through.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.value = v
	for _, ch := range c.watchers {
		for {
			select {
			case ch <- v:
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

// Watch registers a new watcher and returns its channel together with an
// unsubscribe function. The unsubscribe function is idempotent and closes the
// channel.
func (c *Cell[T]) Watch() (<-chan T, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan T, watchBuffer)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextID
	c.nextID++
	c.watchers[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.watchers[id]; ok {
			delete(c.watchers, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Close drops all watchers and closes their channels. Further Set calls are
// ignored; Get keeps returning the last value.
func (c *Cell[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, ch := range c.watchers {
		delete(c.watchers, id)
		close(ch)
	}
}

package livedata

import "sync"

// Cell is an observable value. The zero value is not usable; use NewCell.
type Cell[T any] struct {
	mu        sync.Mutex
	emit      sync.Mutex
	value     T
	observers map[int]func(T)
	next      int
}

func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial, observers: make(map[int]func(T))}
}

func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set stores v and notifies every observer before returning. Observers run
// in registration order and must not call Set on the same cell.
func (c *Cell[T]) Set(v T) {
	c.emit.Lock()
	defer c.emit.Unlock()

	c.mu.Lock()
	c.value = v
	fns := c.snapshot()
	c.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Observe registers fn and immediately delivers the current value to it.
// The returned func removes the observer.
func (c *Cell[T]) Observe(fn func(T)) (cancel func()) {
	c.emit.Lock()
	defer c.emit.Unlock()

	c.mu.Lock()
	id := c.next
	c.next++
	c.observers[id] = fn
	v := c.value
	c.mu.Unlock()

	fn(v)

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

func (c *Cell[T]) snapshot() []func(T) {
	fns := make([]func(T), 0, len(c.observers))
	for id := 0; id < c.next; id++ {
		if fn, ok := c.observers[id]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

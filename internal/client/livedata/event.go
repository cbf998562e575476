package livedata

import "sync"

// Event is a consume-once notification. It holds at most one pending value;
// a newer Emit replaces an unconsumed one.
type Event[T any] struct {
	mu      sync.Mutex
	pending *T
	handler func(T)
	gen     int
}

func NewEvent[T any]() *Event[T] {
	return &Event[T]{}
}

// Emit publishes v. With a handler attached, v is delivered to it right
// away and is never pending; otherwise it waits for Consume or Observe.
func (e *Event[T]) Emit(v T) {
	e.mu.Lock()
	h := e.handler
	if h == nil {
		e.pending = &v
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	h(v)
}

// Consume takes the pending value, if any.
func (e *Event[T]) Consume() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var zero T
	if e.pending == nil {
		return zero, false
	}
	v := *e.pending
	e.pending = nil
	return v, true
}

// Pending reports whether a value is waiting to be consumed.
func (e *Event[T]) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending != nil
}

// Observe attaches fn as the single handler, replacing any previous one. A
// pending value is delivered immediately. Cancelling detaches fn unless it
// has been replaced since.
func (e *Event[T]) Observe(fn func(T)) (cancel func()) {
	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.handler = fn
	p := e.pending
	e.pending = nil
	e.mu.Unlock()

	if p != nil {
		fn(*p)
	}

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.gen == gen {
			e.handler = nil
		}
	}
}

package livedata

import (
	"context"
	"sync"
)

// Scope is the lifetime of a view-model's pending work. Tasks launched in a
// scope receive its context, and state writes wrapped in Do are dropped once
// the scope is closed.
type Scope struct {
	mu     sync.RWMutex
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
	d      Dispatcher
}

func NewScope(parent context.Context, d Dispatcher) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel, d: d}
}

// Launch dispatches task unless the scope is closed.
func (s *Scope) Launch(task func(ctx context.Context)) {
	if !s.Active() {
		return
	}
	s.d.Dispatch(s.ctx, task)
}

// Do runs fn only while the scope is open and reports whether it ran.
// Close waits for a running fn to finish.
func (s *Scope) Do(fn func()) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	fn()
	return true
}

func (s *Scope) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed
}

func (s *Scope) Context() context.Context {
	return s.ctx
}

// Close cancels the scope context. It is safe to call more than once, but not
// from inside Do.
func (s *Scope) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

package livedata

import (
	"context"
	"sync"
)

// Dispatcher runs the asynchronous step of a view-model operation.
type Dispatcher interface {
	Dispatch(ctx context.Context, task func(ctx context.Context))
}

// GoDispatcher runs every task on its own goroutine.
type GoDispatcher struct {
	wg sync.WaitGroup
}

func NewGoDispatcher() *GoDispatcher {
	return &GoDispatcher{}
}

func (d *GoDispatcher) Dispatch(ctx context.Context, task func(ctx context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		task(ctx)
	}()
}

// Wait blocks until every dispatched task has returned.
func (d *GoDispatcher) Wait() {
	d.wg.Wait()
}

type queuedTask struct {
	ctx  context.Context
	task func(ctx context.Context)
}

// ManualDispatcher runs tasks inline on the caller's goroutine. While paused
// tasks are queued and run, in order, by Resume or RunPending.
type ManualDispatcher struct {
	mu     sync.Mutex
	paused bool
	queue  []queuedTask
}

func NewManualDispatcher() *ManualDispatcher {
	return &ManualDispatcher{}
}

func (d *ManualDispatcher) Dispatch(ctx context.Context, task func(ctx context.Context)) {
	d.mu.Lock()
	if d.paused {
		d.queue = append(d.queue, queuedTask{ctx: ctx, task: task})
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()
	task(ctx)
}

func (d *ManualDispatcher) Pause() {
	d.mu.Lock()
	d.paused = true
	d.mu.Unlock()
}

// Resume unpauses and runs the queued tasks.
func (d *ManualDispatcher) Resume() {
	d.mu.Lock()
	d.paused = false
	d.mu.Unlock()
	d.RunPending()
}

// RunPending runs the tasks queued so far without unpausing.
func (d *ManualDispatcher) RunPending() {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		next := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()

		next.task(next.ctx)
	}
}

// Pending returns the number of queued tasks.
func (d *ManualDispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

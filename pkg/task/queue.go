// Package task provides the in-process task queue backing with_task
// hooks: host task values are executed on a worker pool and their
// completion routes are delivered back to the engine driver.
package task

import (
	"sync"

	"github.com/provekit/widget/pkg/host"
	"github.com/provekit/widget/pkg/vdom"
	"github.com/provekit/widget/pkg/widget"
)

// DefaultWorkers is the worker count used when the config does not
// say otherwise.
const DefaultWorkers = 4

// handle is one submitted task.
type handle struct {
	spec host.Value

	mu       sync.Mutex
	done     bool
	result   host.Value
	err      error
	disposed bool
	routes   []vdom.Route // completion routes registered before the task finished
}

// Queue executes host task values on a fixed worker pool. It
// implements widget.TaskQueue.
//
// Completion routes are delivered through the notify callback on a
// worker goroutine; the callback must hand them off to the engine
// driver (for example a session event loop) rather than touch the
// tree itself.
type Queue struct {
	notify func(route vdom.Route)
	jobs   chan *handle

	closeOnce sync.Once
	closed    chan struct{}
	wg        sync.WaitGroup
}

var _ widget.TaskQueue = (*Queue)(nil)

// New starts a queue with the given worker count. notify receives the
// route of every completed, undisposed task that registered one.
func New(workers int, notify func(route vdom.Route)) *Queue {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	q := &Queue{
		notify: notify,
		jobs:   make(chan *handle, workers*4),
		closed: make(chan struct{}),
	}
	q.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go q.worker()
	}
	return q
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.closed:
			return
		case h := <-q.jobs:
			q.run(h)
		}
	}
}

func (q *Queue) run(h *handle) {
	result, err := h.spec.Invoke()

	h.mu.Lock()
	h.done = true
	h.result = result
	h.err = err
	routes := h.routes
	h.routes = nil
	fire := !h.disposed && err == nil
	h.mu.Unlock()

	if fire && q.notify != nil {
		for _, r := range routes {
			q.notify(r)
		}
	}
}

// Submit implements widget.TaskQueue.
func (q *Queue) Submit(spec host.Value) widget.Task {
	h := &handle{spec: spec}
	select {
	case q.jobs <- h:
	case <-q.closed:
		h.mu.Lock()
		h.disposed = true
		h.mu.Unlock()
	}
	return h
}

// Peek implements widget.TaskQueue. It never blocks.
func (q *Queue) Peek(t widget.Task) (host.Value, bool) {
	h, ok := t.(*handle)
	if !ok {
		return nil, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.done || h.disposed || h.err != nil {
		return nil, false
	}
	return h.result, true
}

// FailAndDispose implements widget.TaskQueue. A disposed task's
// completion, even if already computed, is never delivered.
func (q *Queue) FailAndDispose(t widget.Task) {
	h, ok := t.(*handle)
	if !ok {
		return
	}
	h.mu.Lock()
	h.disposed = true
	h.result = nil
	h.routes = nil
	h.mu.Unlock()
}

// NotifyOnCompletion implements widget.TaskQueue. Registering on an
// already-completed task fires immediately.
func (q *Queue) NotifyOnCompletion(t widget.Task, route vdom.Route) {
	h, ok := t.(*handle)
	if !ok {
		return
	}
	h.mu.Lock()
	if h.done {
		fire := !h.disposed && h.err == nil
		h.mu.Unlock()
		if fire && q.notify != nil {
			q.notify(route)
		}
		return
	}
	h.routes = append(h.routes, route)
	h.mu.Unlock()
}

// Close stops the workers. Queued but unstarted tasks are dropped.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.closed)
	})
	q.wg.Wait()
}

package widget

import (
	"sync"

	"github.com/provekit/widget/pkg/host"
	"github.com/provekit/widget/pkg/vdom"
)

// Task is an opaque handle to work submitted to the task queue.
type Task any

// TaskQueue executes host task values and reports their completion
// back to the engine driver. Peek never blocks. FailAndDispose
// cancels outstanding work; cancelling a task whose completion is
// already queued is tolerated, the stale completion resolves no
// instance and is discarded by the driver.
type TaskQueue interface {
	// Submit starts executing the host task value and returns its
	// handle.
	Submit(spec host.Value) Task

	// Peek returns the task's result if it has completed.
	Peek(t Task) (host.Value, bool)

	// FailAndDispose cancels and releases the task.
	FailAndDispose(t Task)

	// NotifyOnCompletion arranges for the route to be delivered to
	// the driver once the task completes.
	NotifyOnCompletion(t Task, route vdom.Route)
}

var (
	taskQueueMu sync.Mutex
	globalQueue TaskQueue
)

// SetTaskQueue installs the process task queue. Installing twice
// fails with ErrTaskQueueSet; call ResetTaskQueue on teardown first.
func SetTaskQueue(q TaskQueue) error {
	taskQueueMu.Lock()
	defer taskQueueMu.Unlock()
	if globalQueue != nil {
		return ErrTaskQueueSet
	}
	globalQueue = q
	return nil
}

// ResetTaskQueue removes the installed task queue.
func ResetTaskQueue() {
	taskQueueMu.Lock()
	defer taskQueueMu.Unlock()
	globalQueue = nil
}

func taskQueue() (TaskQueue, error) {
	taskQueueMu.Lock()
	defer taskQueueMu.Unlock()
	if globalQueue == nil {
		return nil, ErrTaskQueueNotSet
	}
	return globalQueue, nil
}

package js

import (
	"context"
	"sync"
	"time"
)

// maxTasks bounds a single drain so a task that keeps requeueing itself
// cannot hang the page.
const maxTasks = 100000

// eventLoop holds the microtask and task queues of a page.
type eventLoop struct {
	microtasks []func()
	macrotasks []func()
	mu         sync.Mutex
}

// newEventLoop creates a new event loop.
func newEventLoop() *eventLoop {
	return &eventLoop{}
}

// queueMicrotask adds a microtask. Microtasks run before the next task.
func (el *eventLoop) queueMicrotask(fn func()) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.microtasks = append(el.microtasks, fn)
}

// queueMacrotask adds a task.
func (el *eventLoop) queueMacrotask(fn func()) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.macrotasks = append(el.macrotasks, fn)
}

// drainMicrotasks runs microtasks until the queue is empty, including the
// ones queued while draining.
func (el *eventLoop) drainMicrotasks() {
	for {
		el.mu.Lock()
		if len(el.microtasks) == 0 {
			el.mu.Unlock()
			return
		}
		fn := el.microtasks[0]
		el.microtasks = el.microtasks[1:]
		el.mu.Unlock()
		fn()
	}
}

func (el *eventLoop) popMacrotask() func() {
	el.mu.Lock()
	defer el.mu.Unlock()
	if len(el.macrotasks) == 0 {
		return nil
	}
	fn := el.macrotasks[0]
	el.macrotasks = el.macrotasks[1:]
	return fn
}

// hasPending returns true if there are any pending tasks.
func (el *eventLoop) hasPending() bool {
	el.mu.Lock()
	defer el.mu.Unlock()
	return len(el.microtasks) > 0 || len(el.macrotasks) > 0
}

// clear removes all pending tasks.
func (el *eventLoop) clear() {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.microtasks = nil
	el.macrotasks = nil
}

// RunEventLoop runs queued tasks and due timers until nothing is left, the
// next timer lies beyond budget of virtual time from now, or ctx is done.
// It returns the number of tasks and timers run.
func (r *Runtime) RunEventLoop(ctx context.Context, budget time.Duration) int {
	release := r.InterruptOnDone(ctx)
	defer release()

	deadline := r.timers.now() + budget
	ran := 0
	for ran < maxTasks {
		if ctx.Err() != nil {
			break
		}
		r.eventLoop.drainMicrotasks()

		if task := r.eventLoop.popMacrotask(); task != nil {
			task()
			ran++
			continue
		}

		t := r.timers.next()
		if t == nil || t.dueTime > deadline {
			break
		}
		r.timers.fire(r, t)
		ran++
	}
	r.eventLoop.drainMicrotasks()
	return ran
}

// InterruptOnDone interrupts whatever script is running once ctx is done.
// The interrupted script fails with a *goja.InterruptedError that is
// reported like any other script error. The returned func stops watching
// ctx and clears a pending interrupt; call it before running unrelated code.
func (r *Runtime) InterruptOnDone(ctx context.Context) (release func()) {
	done := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(done)
		r.vm.Interrupt(ctx.Err())
	})
	return func() {
		if !stop() {
			<-done
		}
		r.vm.ClearInterrupt()
	}
}

// ClearPending drops every queued task and timer.
func (r *Runtime) ClearPending() {
	r.eventLoop.clear()
	r.timers.mu.Lock()
	r.timers.timers = make(map[int]*timer)
	r.timers.mu.Unlock()
}

package js

import (
	"sync"
	"time"

	"github.com/dop251/goja"
)

// timer represents a scheduled timer (setTimeout or setInterval).
type timer struct {
	id       int
	seq      int
	callback goja.Callable
	args     []goja.Value
	dueTime  time.Duration
	interval time.Duration // 0 for setTimeout, >0 for setInterval
}

// timerManager schedules timers on a virtual clock. The clock only moves
// when the event loop advances it to the next due timer.
type timerManager struct {
	timers  map[int]*timer
	nextID  int
	nextSeq int
	clock   time.Duration
	mu      sync.Mutex
}

// newTimerManager creates a new timer manager.
func newTimerManager() *timerManager {
	return &timerManager{
		timers: make(map[int]*timer),
		nextID: 1,
	}
}

func (tm *timerManager) add(callback goja.Callable, delay, interval time.Duration, args []goja.Value) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	id := tm.nextID
	tm.nextID++
	tm.nextSeq++
	tm.timers[id] = &timer{
		id:       id,
		seq:      tm.nextSeq,
		callback: callback,
		args:     args,
		dueTime:  tm.clock + delay,
		interval: interval,
	}
	return id
}

// setTimeout schedules a one-time callback.
func (tm *timerManager) setTimeout(callback goja.Callable, delay time.Duration, args []goja.Value) int {
	return tm.add(callback, delay, 0, args)
}

// setInterval schedules a recurring callback.
func (tm *timerManager) setInterval(callback goja.Callable, interval time.Duration, args []goja.Value) int {
	return tm.add(callback, interval, interval, args)
}

// clearTimer clears a timer by ID.
func (tm *timerManager) clearTimer(id int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	delete(tm.timers, id)
}

// next returns the timer that fires first, ties broken by scheduling order.
func (tm *timerManager) next() *timer {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	var first *timer
	for _, t := range tm.timers {
		if first == nil || t.dueTime < first.dueTime || (t.dueTime == first.dueTime && t.seq < first.seq) {
			first = t
		}
	}
	return first
}

// fire advances the clock to t and runs it. Interval timers are
// rescheduled unless the callback cleared them.
func (tm *timerManager) fire(r *Runtime, t *timer) {
	tm.mu.Lock()
	if t.dueTime > tm.clock {
		tm.clock = t.dueTime
	}
	if t.interval == 0 {
		delete(tm.timers, t.id)
	}
	tm.mu.Unlock()

	r.call(t.callback, goja.Undefined(), t.args...)

	tm.mu.Lock()
	if _, live := tm.timers[t.id]; live && t.interval > 0 {
		tm.nextSeq++
		t.seq = tm.nextSeq
		t.dueTime = tm.clock + t.interval
	}
	tm.mu.Unlock()
}

// hasPending returns true if there are any pending timers.
func (tm *timerManager) hasPending() bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.timers) > 0
}

func (tm *timerManager) now() time.Duration {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.clock
}

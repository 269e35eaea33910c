// Package tasks provides the single-threaded task loop that serializes all
// session-state mutation. Mutation handlers, settle delays and debounced
// work all land on one goroutine, so capture state needs no locking.
package tasks

import (
	"log"
	"runtime/debug"
	"sync"
	"time"
)

// Loop runs posted functions one at a time on a dedicated goroutine.
type Loop struct {
	jobs chan func()
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// NewLoop creates and starts a task loop.
func NewLoop() *Loop {
	l := &Loop{
		jobs: make(chan func(), 256), // Buffer absorbs mutation bursts
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

// run drains the job queue until the loop is stopped.
func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case fn := <-l.jobs:
			l.invoke(fn)
		case <-l.quit:
			// Drain anything already queued before exiting
			for {
				select {
				case fn := <-l.jobs:
					l.invoke(fn)
				default:
					return
				}
			}
		}
	}
}

// invoke runs a single job with panic recovery
func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Task loop: PANIC in task: %v\n%s", r, string(debug.Stack()))
		}
	}()
	fn()
}

// Post queues fn for execution on the loop. Posts after Stop are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.quit:
	case l.jobs <- fn:
	}
}

// Schedule runs fn on the loop after delay. The returned timer fires once
// and can be cancelled before it fires.
func (l *Loop) Schedule(delay time.Duration, fn func()) *Timer {
	return &Timer{timer: time.AfterFunc(delay, func() { l.Post(fn) })}
}

// Stop shuts the loop down after draining queued jobs.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.quit) })
	<-l.done
}

// Timer is a cancellable fire-once deferred task.
type Timer struct {
	timer *time.Timer
}

// Cancel stops the timer if it has not fired yet.
func (t *Timer) Cancel() {
	t.timer.Stop()
}

// Debouncer coalesces a burst of triggers into a single deferred run of fn
// on the loop, with cancel-and-replace semantics: each trigger discards any
// pending run and starts the delay over.
type Debouncer struct {
	loop  *Loop
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer that posts fn to loop after delay.
func NewDebouncer(loop *Loop, delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{loop: loop, delay: delay, fn: fn}
}

// Trigger resets the pending delay, replacing any not-yet-fired run.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.loop.Post(d.fn) })
}

// Cancel discards any pending run.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Package scheduler provides the single-threaded event loop that headless
// hosts use to drive the image-focus core. All tasks, including deferred
// timer callbacks, run one at a time on the loop goroutine, so state owned
// by the core is never touched concurrently.
package scheduler

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Task is a unit of work executed on the loop
type Task func()

// ErrorHandler handles panics raised by a task.
// Returns true to keep the loop running, false to stop it.
type ErrorHandler func(err interface{}) bool

// Timer is a pending deferred callback
type Timer interface {
	// Stop cancels the callback. It returns false if the callback already
	// ran or was already stopped.
	Stop() bool
}

// Clock schedules deferred callbacks and reports the current time
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Loop serializes tasks onto one goroutine
type Loop struct {
	tasks   chan Task
	quit    chan struct{}
	done    chan struct{}
	running atomic.Bool

	mu      sync.Mutex
	onError ErrorHandler
	onIdle  func()
}

// NewLoop creates a new, stopped loop
func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan Task, 1024), // buffered for performance
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// SetErrorHandler sets the handler for panicking tasks
func (l *Loop) SetErrorHandler(handler ErrorHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onError = handler
}

// SetIdleHook sets a function called after each batch of tasks has run.
// Interactive hosts use it to redraw.
func (l *Loop) SetIdleHook(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onIdle = fn
}

// Start begins the loop
func (l *Loop) Start() {
	if l.running.CompareAndSwap(false, true) {
		if debugLog != nil {
			debugLog("[Loop] Starting")
		}
		go l.run()
	}
}

// Stop stops the loop and waits for the current batch to finish.
// Pending tasks are dropped.
func (l *Loop) Stop() {
	if l.running.CompareAndSwap(true, false) {
		close(l.quit)
		<-l.done
	}
}

// IsRunning returns whether the loop is running
func (l *Loop) IsRunning() bool {
	return l.running.Load()
}

// Post queues a task. It returns false if the loop is not running.
func (l *Loop) Post(task Task) bool {
	if task == nil || !l.running.Load() {
		return false
	}
	select {
	case l.tasks <- task:
		return true
	case <-l.quit:
		return false
	}
}

// Do runs task on the loop and waits for it to finish. When the loop is not
// running the task runs inline. Do must not be called from a task on the
// same loop.
func (l *Loop) Do(task Task) {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		task()
	}) {
		task()
		return
	}
	select {
	case <-finished:
	case <-l.done:
	}
}

// Now returns the current time
func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules fn to run on the loop after d
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		l.Post(func() {
			if lt.stopped.Load() {
				return
			}
			lt.fired.Store(true)
			fn()
		})
	})
	return lt
}

type loopTimer struct {
	t       *time.Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

func (lt *loopTimer) Stop() bool {
	lt.t.Stop()
	if lt.fired.Load() {
		return false
	}
	return !lt.stopped.Swap(true)
}

// run is the main loop
func (l *Loop) run() {
	defer close(l.done)
	for {
		var task Task
		select {
		case task = <-l.tasks:
		case <-l.quit:
			return
		}

		// Collect everything already queued to process as one batch
		batch := []Task{task}
	drain:
		for {
			select {
			case t := <-l.tasks:
				batch = append(batch, t)
			default:
				break drain
			}
		}

		if debugLog != nil {
			debugLog("[Loop] Processing batch of", len(batch), "tasks")
		}
		for _, t := range batch {
			if !l.runTask(t) {
				l.running.Store(false)
				return
			}
		}

		l.mu.Lock()
		idle := l.onIdle
		l.mu.Unlock()
		if idle != nil {
			idle()
		}
	}
}

// runTask runs a single task with panic recovery
func (l *Loop) runTask(task Task) (keepRunning bool) {
	keepRunning = true
	defer func() {
		if r := recover(); r != nil {
			keepRunning = l.handleTaskError(r)
		}
	}()
	task()
	return keepRunning
}

// handleTaskError reports a panic during a task
func (l *Loop) handleTaskError(err interface{}) bool {
	msg := fmt.Sprintf("task panic: %v\n%s", err, debug.Stack())
	if debugLog != nil {
		debugLog("[Loop]", msg)
	}

	l.mu.Lock()
	handler := l.onError
	l.mu.Unlock()

	if handler == nil {
		return true
	}
	return handler(msg)
}

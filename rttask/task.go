// Package rttask implements the periodic task of spec.md §4.9: a single
// background worker that runs a user callable in a loop, waiting on a
// condition variable (indefinitely or with a configured interval) between
// iterations, until the callable signals "done" or the caller requests
// shutdown.
//
// Grounded in spec.md §4.9 and §5's concurrency model ("shutdown is
// signaled under mutex, then broadcast... join blocks until the worker
// exits... timeouts use a monotonic-clock wait_for"); golang.org/x/sys/unix
// supplies the optional host scheduling-priority call, matching the rest
// of this module's reach for golang.org/x/sys over reimplementing
// platform syscalls by hand.
package rttask

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Callback runs once per loop iteration; returning true ("done") ends the
// task.
type Callback func() bool

// ErrNotStarted names the condition of a Task that was never started. No
// function in this package returns it: Join on such a Task returns
// immediately.
var ErrNotStarted = errors.New("rttask: task was never started")

// Task owns exactly one worker goroutine per spec.md §5.
type Task struct {
	mu   sync.Mutex
	cond *sync.Cond
	cb   Callback

	interval time.Duration
	priority *int

	shutdown bool
	wake     bool

	schedErr   bool
	schedErrno error

	started bool
	wg      sync.WaitGroup
}

// Option configures a Task at construction.
type Option func(*Task)

// WithInterval bounds each inter-iteration wait by d; zero (the default)
// waits indefinitely until Notify or Shutdown.
func WithInterval(d time.Duration) Option {
	return func(t *Task) { t.interval = d }
}

// WithPriority requests niceness as the worker's host scheduling priority,
// set once before the first call to cb. A failure here reports via
// SchedulingError and causes the worker to exit without ever calling cb.
func WithPriority(niceness int) Option {
	return func(t *Task) { t.priority = &niceness }
}

// New constructs a Task around cb; call Start to launch the worker.
func New(cb Callback, opts ...Option) *Task {
	t := &Task{cb: cb}
	t.cond = sync.NewCond(&t.mu)
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start launches the worker goroutine. Must be called at most once.
func (t *Task) Start() {
	t.mu.Lock()
	t.started = true
	t.mu.Unlock()
	t.wg.Add(1)
	go t.run()
}

func (t *Task) run() {
	defer t.wg.Done()

	if t.priority != nil {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := unix.Setpriority(unix.PRIO_PROCESS, 0, *t.priority); err != nil {
			t.mu.Lock()
			t.schedErr = true
			t.schedErrno = err
			t.mu.Unlock()
			return
		}
	}

	for {
		if t.cb() {
			return
		}

		t.mu.Lock()
		if t.shutdown {
			t.mu.Unlock()
			return
		}
		if !t.wake {
			t.waitLocked()
		}
		shut := t.shutdown
		t.wake = false
		t.mu.Unlock()

		if shut {
			return
		}
	}
}

// waitLocked blocks on the condition variable until Notify, Shutdown, or
// (if an interval is configured) the interval elapses. Caller holds t.mu.
func (t *Task) waitLocked() {
	if t.interval <= 0 {
		for !t.wake && !t.shutdown {
			t.cond.Wait()
		}
		return
	}
	timer := time.AfterFunc(t.interval, func() {
		t.mu.Lock()
		t.cond.Broadcast()
		t.mu.Unlock()
	})
	defer timer.Stop()
	deadline := time.Now().Add(t.interval)
	for !t.wake && !t.shutdown && time.Now().Before(deadline) {
		t.cond.Wait()
	}
}

// Notify wakes the worker immediately, causing it to run another
// iteration without waiting out any remaining interval.
func (t *Task) Notify() {
	t.mu.Lock()
	t.wake = true
	t.cond.Broadcast()
	t.mu.Unlock()
}

// Shutdown requests that the worker exit after its current iteration,
// setting the shared flag under the mutex and broadcasting per spec.md
// §5. The callable must itself return true or rely on this flag; Shutdown
// does not interrupt a call to cb already in progress.
func (t *Task) Shutdown() {
	t.mu.Lock()
	t.shutdown = true
	t.cond.Broadcast()
	t.mu.Unlock()
}

// Join blocks until the worker exits.
func (t *Task) Join() {
	t.wg.Wait()
}

// SchedulingError reports whether the optional priority call failed, and
// if so the underlying error.
func (t *Task) SchedulingError() (error, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.schedErrno, t.schedErr
}

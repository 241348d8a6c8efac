package persist

import (
	"sync"
	"time"
)

// Debouncer runs a task after a quiet period, coalescing bursts of triggers
// into a single run. Only one task is ever pending, and at most one run is
// ever in flight; Flush and Stop wait for a run already in progress.
type Debouncer struct {
	mu    sync.Mutex
	runMu sync.Mutex
	delay time.Duration
	fn    func()
	timer *time.Timer
}

// NewDebouncer creates a debouncer that runs fn once per quiet period.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// run executes the task while holding runMu, serializing it against
// Flush and Stop.
func (d *Debouncer) run() {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	d.fn()
}

// Trigger schedules the task to run after the quiet period, cancelling any
// previously scheduled run.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.run)
}

// Flush runs a pending task immediately. If the timer has already fired,
// Flush waits for that run to finish before returning, so callers can
// safely tear down the task's resources afterwards.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	pending := d.timer != nil && d.timer.Stop()
	d.timer = nil
	d.mu.Unlock()

	d.runMu.Lock()
	defer d.runMu.Unlock()
	if pending {
		d.fn()
	}
}

// Stop cancels any pending task without running it, waiting for a run
// already in progress.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.runMu.Lock()
	defer d.runMu.Unlock()
}

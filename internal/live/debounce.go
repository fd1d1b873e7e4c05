package live

import (
	"sync"
	"time"
)

const defaultDebounce = 150 * time.Millisecond

// Debouncer coalesces rapid submissions so only the function for the latest
// one runs, after a quiet period. Earlier pending submissions are dropped,
// never executed, which keeps a burst of search keystrokes from publishing
// stale results out of order.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// NewDebouncer creates a Debouncer. delay <= 0 selects the default quiet
// window.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = defaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Submit schedules fn to run after the quiet window, replacing any pending
// submission.
func (d *Debouncer) Submit(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending submission.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

package utils

import (
	"sync"
	"time"
)

// DefaultDebounce is the delay applied when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces a burst of values into a single emission: each Set
// restarts the timer, and only the value that survives a quiet period is
// handed to the callback. Used for search-as-you-type so intermediate
// keystrokes never reach the backend.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	emit    func(T)
	stopped bool
}

// NewDebouncer constructs a debouncer that calls emit with the final value
// of each burst. A non-positive delay falls back to DefaultDebounce.
func NewDebouncer[T any](delay time.Duration, emit func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDebounce
	}

	return &Debouncer[T]{delay: delay, emit: emit}
}

// Set records a new value and restarts the quiet-period timer. The value
// set before the previous timer fired is discarded.
func (d *Debouncer[T]) Set(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()

		if !stopped {
			d.emit(value)
		}
	})
}

// Flush cancels the pending timer and emits the value immediately.
func (d *Debouncer[T]) Flush(value T) {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	stopped := d.stopped
	d.mu.Unlock()

	if !stopped {
		d.emit(value)
	}
}

// Stop cancels any pending emission. The debouncer cannot be reused.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

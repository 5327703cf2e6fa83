// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid triggers into one callback after a quiet
// interval. At most one callback is pending at any time: re-triggering
// cancels the previous one and restarts the interval.
type Debouncer struct {
	interval time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a Debouncer with the given quiet interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules fn to run after the quiet interval, replacing any
// previously scheduled callback. fn runs on a timer goroutine; a callback
// that raced a Stop must re-validate its inputs.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, fn)
}

// Stop cancels the pending callback, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

package aiengine

import (
	"sync"
	"time"
)

// Deadline is a single-use, single-shot timer used to bound how long one
// attempt may run. It never logs and never retries; the orchestrator races
// an attempt against Expired and must call Cancel on every exit path so the
// underlying timer is released.
type Deadline struct {
	timer *time.Timer
	once  sync.Once
}

// NewDeadline starts a deadline that fires after d.
func NewDeadline(d time.Duration) *Deadline {
	return &Deadline{timer: time.NewTimer(d)}
}

// Expired returns the channel that fires when the deadline is reached.
func (d *Deadline) Expired() <-chan time.Time {
	return d.timer.C
}

// Cancel releases the underlying timer. It is safe to call on every exit
// path, including after the deadline has already fired; only the first call
// stops the timer.
func (d *Deadline) Cancel() {
	d.once.Do(func() {
		d.timer.Stop()
	})
}

package aiengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestDeadlineExpires(t *testing.T) {
	d := NewDeadline(5 * time.Millisecond)
	defer d.Cancel()

	select {
	case <-d.Expired():
	case <-time.After(time.Second):
		t.Fatal("deadline never fired")
	}
}

func TestDeadlineCancelStopsTimer(t *testing.T) {
	d := NewDeadline(10 * time.Millisecond)
	d.Cancel()

	select {
	case <-d.Expired():
		t.Fatal("cancelled deadline fired")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDeadlineCancelIsIdempotent(t *testing.T) {
	d := NewDeadline(time.Hour)
	assert.NotPanics(t, func() {
		d.Cancel()
		d.Cancel()
		d.Cancel()
	})
}

// Sustained use must not accumulate pending timers: every deadline is
// released by Cancel whether or not it fired first.
func TestDeadlineNoLeakUnderSustainedUse(t *testing.T) {
	defer goleak.VerifyNone(t)

	for i := 0; i < 1000; i++ {
		d := NewDeadline(time.Hour)
		d.Cancel()
	}

	// Mix in deadlines that fire before they are cancelled.
	for i := 0; i < 100; i++ {
		d := NewDeadline(time.Nanosecond)
		<-d.Expired()
		d.Cancel()
	}
}

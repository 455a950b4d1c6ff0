package board

import (
	"sync"
	"time"

	utilclock "k8s.io/utils/clock"
)

// OneShot is a single one-shot timer.  Scheduling it again replaces any earlier schedule that has
// not fired yet.
type OneShot struct {
	clk utilclock.WithDelayedExecution

	mu    sync.Mutex
	timer utilclock.Timer // must hold mu to read or write.
}

// NewOneShot returns a timer that counts time on clk.
func NewOneShot(clk utilclock.WithDelayedExecution) *OneShot {
	return &OneShot{clk: clk}
}

// Schedule arranges for fire to be called once, d from now.
func (o *OneShot) Schedule(d time.Duration, fire func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.timer != nil {
		o.timer.Stop()
	}
	o.timer = o.clk.AfterFunc(d, fire)
}

// Stop cancels the pending schedule, if any.
func (o *OneShot) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

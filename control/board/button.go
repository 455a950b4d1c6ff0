// Package board adapts the GPIO pins and timers of the host board to the clock's tasks.
package board

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/net/trace"
	"periph.io/x/conn/v3/gpio"
)

// edgePoll bounds how long Watch sleeps in the GPIO driver before checking for cancellation.
const edgePoll = 250 * time.Millisecond

// Button is a normally-open push button between a GPIO pin and ground.  The pin's pull-up holds it
// high, so pressed reads low and a press starts with a falling edge.
type Button struct {
	pin     gpio.PinIn
	enabled atomic.Bool
}

// NewButton configures pin as the button input.  Edge delivery starts enabled.
func NewButton(pin gpio.PinIn) (*Button, error) {
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("configure button pin %s: %w", pin, err)
	}
	b := &Button{pin: pin}
	b.enabled.Store(true)
	return b, nil
}

// Pressed reads the button level.
func (b *Button) Pressed() bool {
	return b.pin.Read() == gpio.Low
}

// SetEdgeEnabled turns delivery of falling edges to Watch's callback on or off.  Edges that
// arrive while disabled are discarded, not queued.
func (b *Button) SetEdgeEnabled(on bool) {
	b.enabled.Store(on)
}

// Watch waits for falling edges and calls fire for each one that arrives while edges are enabled,
// until the context is cancelled.
func (b *Button) Watch(ctx context.Context, fire func() bool) error {
	l := trace.NewEventLog("gpio", b.pin.Name())
	defer l.Finish()
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("watch button: %w", err)
		}
		if !b.pin.WaitForEdge(edgePoll) {
			continue
		}
		if !b.enabled.Load() {
			l.Printf("edge while disabled; dropped")
			continue
		}
		if !fire() {
			l.Printf("edge while press already pending")
			continue
		}
		l.Printf("edge")
	}
}

package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// DistressPeriod is the on and off time of the LED blink that signals a fatal error.
const DistressPeriod = 50 * time.Millisecond

// LED is an LED on a GPIO pin, lit when the pin is high.
type LED struct {
	pin gpio.PinOut

	mu sync.Mutex
	on bool // must hold mu to read or write.
}

// NewLED configures pin as an output and turns the LED off.
func NewLED(pin gpio.PinOut) (*LED, error) {
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("configure led pin %s: %w", pin, err)
	}
	return &LED{pin: pin}, nil
}

// Set turns the LED on or off.
func (l *LED) Set(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.pin.Out(gpio.Level(on)); err != nil {
		return fmt.Errorf("set led %s: %w", l.pin, err)
	}
	l.on = on
	return nil
}

// Toggle inverts the LED.
func (l *LED) Toggle() error {
	l.mu.Lock()
	on := !l.on
	l.mu.Unlock()
	return l.Set(on)
}

// Distress blinks the LED rapidly until the context is cancelled.  It is how the clock says it
// cannot run.
func (l *LED) Distress(ctx context.Context) error {
	t := time.NewTicker(DistressPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := l.Set(false); err != nil {
				return fmt.Errorf("distress: turn off led after %v: %w", ctx.Err(), err)
			}
			return fmt.Errorf("distress: %w", ctx.Err())
		case <-t.C:
			if err := l.Toggle(); err != nil {
				return fmt.Errorf("distress: %w", err)
			}
		}
	}
}

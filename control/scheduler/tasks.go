package scheduler

import (
	"fmt"

	"github.com/jrockway/matrix-clock/control/button"
	"github.com/jrockway/matrix-clock/control/clock"
	"github.com/jrockway/matrix-clock/control/frame"
)

// setEdge records and applies the button's edge-enable flag.  Must be called inside the edge
// section.
func (s *Scheduler) setEdge(enabled *bool, on bool) {
	*enabled = on
	s.button.SetEdgeEnabled(on)
}

// repeatExpired is the repeat timer's interrupt.
func (s *Scheduler) repeatExpired() {
	s.Pend(ButtonRepeat)
}

// tick runs once a second.
func (s *Scheduler) tick() error {
	events := s.table[Tick].events
	if err := s.led.Toggle(); err != nil {
		events.Errorf("toggle liveness led: %v", err)
	}
	var now clock.State
	s.clock.Lock(func(c *clock.State) {
		c.Tick()
		now = *c
		s.Pend(DisplayUpdate)
	})
	events.Printf("tick: %v", now)
	return nil
}

// buttonEdge runs when the button is pushed down.
func (s *Scheduler) buttonEdge() error {
	events := s.table[ButtonEdge].events
	var (
		tr    button.Transition
		stale bool
		now   clock.State
	)
	s.clock.Lock(func(c *clock.State) {
		s.repeat.Lock(func(r *button.Repeat) {
			s.edge.Lock(func(enabled *bool) {
				if !*enabled {
					// Bounce that was pending when edges were turned off.
					stale = true
					return
				}
				tr = r.Press(c)
				now = *c
				s.apply(enabled, tr)
			})
		})
	})
	if stale {
		events.Printf("ignoring edge while %v", button.Held)
		return nil
	}
	events.Printf("press: %v -> %v, clock %v, repeat in %v", tr.From, tr.To, now, tr.Arm)
	return nil
}

// buttonRepeat runs when the repeat timer expires.
func (s *Scheduler) buttonRepeat() error {
	events := s.table[ButtonRepeat].events
	pressed := s.button.Pressed()
	var (
		tr  button.Transition
		now clock.State
	)
	s.clock.Lock(func(c *clock.State) {
		s.repeat.Lock(func(r *button.Repeat) {
			s.edge.Lock(func(enabled *bool) {
				tr = r.Expire(c, pressed)
				now = *c
				s.apply(enabled, tr)
			})
		})
	})
	if tr.To == button.Idle {
		events.Printf("release: %v -> %v, clock %v", tr.From, tr.To, now)
		return nil
	}
	events.Printf("repeat: clock %v, next in %v", now, tr.Arm)
	return nil
}

// apply carries out the side effects of a button transition.  Must be called inside the clock,
// repeat, and edge sections.
func (s *Scheduler) apply(enabled *bool, tr button.Transition) {
	if tr.EdgeEnabled != *enabled {
		s.setEdge(enabled, tr.EdgeEnabled)
	}
	if tr.Arm > 0 {
		s.alarm.Schedule(tr.Arm, s.repeatExpired)
	}
	switch {
	case tr.Arm > 0:
		repeatIntervalGauge.Set(tr.Arm.Seconds())
	case tr.To == button.Idle:
		repeatIntervalGauge.Set(0)
	}
	if tr.Advanced {
		minutesAdvancedCounter.Inc()
		s.Pend(DisplayUpdate)
	}
}

// displayUpdate draws the current time on the display.
func (s *Scheduler) displayUpdate() error {
	events := s.table[DisplayUpdate].events
	now := s.Snapshot()
	for d, rows := range frame.Compose(now) {
		if err := s.display.WriteDevice(d, rows); err != nil {
			displayWriteErrors.Inc()
			s.writeFailures++
			events.Errorf("write device %d: %v (%d failed refreshes in a row); skipping frame %v", d, err, s.writeFailures, now)
			if s.writeFailures >= MaxWriteFailures {
				return fmt.Errorf("display failed %d refreshes in a row: %w", s.writeFailures, err)
			}
			return nil
		}
	}
	s.writeFailures = 0
	events.Printf("displayed %v", now)
	return nil
}

// Package button turns presses of the clock's single button into minute advances, auto-repeating
// faster and faster while the button is held.
//
// A press is only noticed on its falling edge.  From then on the edge is ignored, so contact
// bounce cannot cause extra advances, and a one-shot timer polls the button level instead.  Each
// poll that finds the button still down advances the clock again and re-arms the timer for 80% of
// the previous interval, never going below 20ms.  The first poll that finds it released goes back
// to waiting for an edge.
package button

import (
	"fmt"
	"time"

	"github.com/jrockway/matrix-clock/control/clock"
)

const (
	// InitialInterval is the time between a press and the first repeat.
	InitialInterval = 500 * time.Millisecond
	// FloorInterval is the shortest time between repeats.
	FloorInterval = 20 * time.Millisecond
	// DecayPercent is how long each repeat interval is, relative to the one before it.
	DecayPercent = 80
)

// State is the state of the button.
type State int

const (
	Idle State = iota
	Held
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Held:
		return "held"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Transition describes the side effects the caller must carry out after an event.
type Transition struct {
	From, To State
	// Advanced is true if the clock was moved forward and needs to be redrawn.
	Advanced bool
	// Arm is the interval to arm the repeat timer for, or 0 to leave it disarmed.
	Arm time.Duration
	// EdgeEnabled is whether edge detection should be on after the transition.
	EdgeEnabled bool
}

// Repeat is the auto-repeat state machine.  The zero value is idle.
type Repeat struct {
	state    State
	interval time.Duration
}

// State returns the current state.
func (r *Repeat) State() State { return r.state }

// Interval returns the repeat interval currently armed, or 0 when idle.
func (r *Repeat) Interval() time.Duration {
	if r.state != Held {
		return 0
	}
	return r.interval
}

// Press handles a falling edge on the button.  It advances c by a minute and starts the repeat
// timer.  An edge that arrives while the button is already held (one that was in flight when edge
// detection was switched off) changes nothing.
func (r *Repeat) Press(c *clock.State) Transition {
	if r.state == Held {
		return Transition{From: Held, To: Held, Arm: 0, EdgeEnabled: false}
	}
	c.AddMinute()
	r.state = Held
	r.interval = InitialInterval
	return Transition{From: Idle, To: Held, Advanced: true, Arm: r.interval, EdgeEnabled: false}
}

// Expire handles the repeat timer going off.  pressed is the button level read just now.
func (r *Repeat) Expire(c *clock.State, pressed bool) Transition {
	if r.state != Held {
		// A timer that outlived its hold; nothing to do.
		return Transition{From: r.state, To: r.state, EdgeEnabled: true}
	}
	if !pressed {
		r.state = Idle
		r.interval = 0
		return Transition{From: Held, To: Idle, EdgeEnabled: true}
	}
	c.AddMinute()
	r.interval = NextInterval(r.interval)
	return Transition{From: Held, To: Held, Advanced: true, Arm: r.interval}
}

// NextInterval returns the repeat interval that follows d.
func NextInterval(d time.Duration) time.Duration {
	next := d * DecayPercent / 100
	if next < FloorInterval {
		return FloorInterval
	}
	return next
}

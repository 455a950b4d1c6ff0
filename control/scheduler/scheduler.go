// Package scheduler runs the clock's tasks.
//
// Each hardware event source (the 1Hz timer, the button's falling edge, the repeat timer) is
// bound to one task in a fixed dispatch table, and the display refresh is a fourth,
// software-triggered task.  Event sources never run task bodies themselves; they call Pend, which
// sets the task's pending flag.  A flag that is already set stays set, so any number of requests
// made before the task runs collapse into one run that sees the latest state.
//
// A single goroutine (Run) plays the part of the CPU: it always runs the highest priority pending
// task to completion, then looks again.  Tasks share the clock, the auto-repeat state, and the
// button's edge-enable flag only through Resource sections.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jrockway/matrix-clock/control/button"
	"github.com/jrockway/matrix-clock/control/clock"
	"github.com/jrockway/matrix-clock/control/frame"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/net/trace"
)

// Task identifies an entry in the dispatch table.
type Task int

const (
	DisplayUpdate Task = iota
	ButtonRepeat
	ButtonEdge
	Tick
	numTasks
)

var taskNames = [numTasks]string{
	DisplayUpdate: "display_update",
	ButtonRepeat:  "button_repeat",
	ButtonEdge:    "button_edge",
	Tick:          "tick",
}

// Priorities; higher runs first.  The refresh is lowest so that it always draws the result of
// everything else that was pending.
var taskPriorities = [numTasks]int{
	DisplayUpdate: 1,
	ButtonRepeat:  2,
	ButtonEdge:    2,
	Tick:          3,
}

func (t Task) String() string {
	if t < 0 || t >= numTasks {
		return fmt.Sprintf("Task(%d)", int(t))
	}
	return taskNames[t]
}

// MaxWriteFailures is the number of refreshes in a row that may fail to reach the display before
// the failure is treated as permanent.
const MaxWriteFailures = 10

var (
	taskRunsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "task_runs_total",
		Help: "number of times each task has run",
	}, []string{"task"})

	coalescedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "task_requests_coalesced_total",
		Help: "requests to run a task that arrived while it was already pending",
	}, []string{"task"})

	displayWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "display_write_errors_total",
		Help: "device writes that failed; the rest of that frame is skipped",
	})

	repeatIntervalGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "button_repeat_interval_seconds",
		Help: "interval the button repeat timer is armed for; 0 when the button is idle",
	})

	minutesAdvancedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clock_minutes_advanced_total",
		Help: "minutes added to the clock by the button",
	})
)

// Display commits one module's image to the hardware.
type Display interface {
	WriteDevice(device int, rows frame.DeviceBuffer) error
}

// Button is the clock's push button.
type Button interface {
	// Pressed reads the current button level.
	Pressed() bool
	// SetEdgeEnabled turns delivery of falling edges on or off.
	SetEdgeEnabled(on bool)
}

// Alarm is a one-shot timer.  Schedule calls fire once, d from now.
type Alarm interface {
	Schedule(d time.Duration, fire func())
}

// LED is the liveness indicator.
type LED interface {
	Toggle() error
}

type entry struct {
	name     string
	priority int
	run      func() error
	pending  atomic.Bool
	events   trace.EventLog
}

// Scheduler owns the clock state and runs the tasks that change and display it.
type Scheduler struct {
	display Display
	button  Button
	alarm   Alarm
	led     LED

	clock  Resource[clock.State]
	repeat Resource[button.Repeat]
	edge   Resource[bool]

	table [numTasks]entry
	wake  chan struct{}

	// Only touched by the display task.
	writeFailures int
}

// New returns a Scheduler showing clock.Initial, with the button idle and a refresh already
// pending.
func New(d Display, b Button, a Alarm, l LED) *Scheduler {
	s := &Scheduler{
		display: d,
		button:  b,
		alarm:   a,
		led:     l,
		wake:    make(chan struct{}, 1),
	}
	runs := [numTasks]func() error{
		DisplayUpdate: s.displayUpdate,
		ButtonRepeat:  s.buttonRepeat,
		ButtonEdge:    s.buttonEdge,
		Tick:          s.tick,
	}
	for t := Task(0); t < numTasks; t++ {
		e := &s.table[t]
		e.name = taskNames[t]
		e.priority = taskPriorities[t]
		e.run = runs[t]
		e.events = trace.NewEventLog("task", e.name)
	}
	s.clock.Lock(func(c *clock.State) { *c = clock.Initial() })
	s.edge.Lock(func(enabled *bool) { s.setEdge(enabled, true) })
	s.Pend(DisplayUpdate)
	return s
}

// Close releases the event logs.  The scheduler must not be running.
func (s *Scheduler) Close() {
	for i := range s.table {
		s.table[i].events.Finish()
	}
}

// Pend requests that a task run.  It never blocks and may be called from any goroutine.  It
// returns false if the task was already pending, in which case the two requests are served by a
// single run.
func (s *Scheduler) Pend(t Task) bool {
	e := &s.table[t]
	if !e.pending.CompareAndSwap(false, true) {
		coalescedCounter.WithLabelValues(e.name).Inc()
		return false
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// next claims the highest priority pending task, or returns nil if nothing is pending.
func (s *Scheduler) next() *entry {
	var best *entry
	for i := range s.table {
		e := &s.table[i]
		if e.pending.Load() && (best == nil || e.priority > best.priority) {
			best = e
		}
	}
	if best != nil {
		// Cleared before running, so a request made while the task runs gets another run.
		best.pending.Store(false)
	}
	return best
}

// RunPending runs tasks until none are pending.  Only one goroutine may call RunPending or Run.
func (s *Scheduler) RunPending() error {
	for {
		e := s.next()
		if e == nil {
			return nil
		}
		taskRunsCounter.WithLabelValues(e.name).Inc()
		if err := e.run(); err != nil {
			e.events.Errorf("fatal: %v", err)
			return fmt.Errorf("task %s: %w", e.name, err)
		}
	}
}

// Run dispatches tasks as they become pending until the context is cancelled or a task fails.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := s.RunPending(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for work: %w", ctx.Err())
		case <-s.wake:
		}
	}
}

// Snapshot returns the time currently on the clock.
func (s *Scheduler) Snapshot() clock.State {
	var result clock.State
	s.clock.Lock(func(c *clock.State) { result = *c })
	return result
}

// ButtonState returns the state of the auto-repeat state machine.
func (s *Scheduler) ButtonState() button.State {
	var result button.State
	s.repeat.Lock(func(r *button.Repeat) { result = r.State() })
	return result
}

package clock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	clocktesting "k8s.io/utils/clock/testing"
)

func TestTickSeconds(t *testing.T) {
	for secs := uint8(0); secs < 60; secs++ {
		s := State{Hours: 7, Mins: 15, Secs: secs}
		s.Tick()
		want := State{Hours: 7, Mins: 15, Secs: secs + 1}
		if secs == 59 {
			// Carrying out of the seconds is the same as one AddMinute.
			want = State{Hours: 7, Mins: 15, Secs: 0}
			want.AddMinute()
		}
		if got := s; got != want {
			t.Errorf("tick from %v:\n  got: %v\n want: %v", State{Hours: 7, Mins: 15, Secs: secs}, got, want)
		}
	}
}

func TestRollover(t *testing.T) {
	testData := []struct {
		name string
		in   State
		op   func(*State)
		want State
	}{
		{"second", State{12, 34, 56}, (*State).Tick, State{12, 34, 57}},
		{"minute carry", State{12, 34, 59}, (*State).Tick, State{12, 35, 0}},
		{"hour carry", State{12, 59, 59}, (*State).Tick, State{13, 0, 0}},
		{"midnight", State{23, 59, 59}, (*State).Tick, State{0, 0, 0}},
		{"add minute", State{12, 34, 56}, (*State).AddMinute, State{12, 35, 56}},
		{"add minute hour carry", State{9, 59, 30}, (*State).AddMinute, State{10, 0, 30}},
		{"add minute midnight", State{23, 59, 0}, (*State).AddMinute, State{0, 0, 0}},
	}
	for _, test := range testData {
		t.Run(test.name, func(t *testing.T) {
			s := test.in
			test.op(&s)
			if got, want := s, test.want; got != want {
				t.Errorf("rollover:\n  got: %v\n want: %v", got, want)
			}
		})
	}
}

func TestAddMinuteStaysInRange(t *testing.T) {
	s := Initial()
	for i := 0; i < 3*24*60; i++ {
		s.AddMinute()
		if s.Hours > 23 || s.Mins > 59 || s.Secs > 59 {
			t.Fatalf("out of range after %d minutes: %#v", i+1, s)
		}
	}
	if got, want := s, Initial(); got != want {
		t.Errorf("after three days of minutes:\n  got: %v\n want: %v", got, want)
	}
}

func TestString(t *testing.T) {
	if got, want := Initial().String(), "12:34:56"; got != want {
		t.Errorf("format:\n  got: %v\n want: %v", got, want)
	}
	if got, want := (State{Hours: 1, Mins: 2, Secs: 3}).String(), "01:02:03"; got != want {
		t.Errorf("format:\n  got: %v\n want: %v", got, want)
	}
}

// waitForWaiter blocks until the ticker goroutine is sleeping on the fake clock.
func waitForWaiter(t *testing.T, fc *clocktesting.FakeClock) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !fc.HasWaiters() {
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for ticker to sleep")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTick(t *testing.T) {
	ctx, c := context.WithCancel(context.Background())
	timeout := 1500 * time.Millisecond
	fc := clocktesting.NewFakeClock(time.Date(2026, 1, 1, 12, 34, 55, 500_000_000, time.UTC))

	tch := make(chan time.Time, 1)
	accept := make(chan bool, 1)
	errch := make(chan error)
	go func() {
		errch <- Tick(ctx, fc, func() bool {
			tch <- fc.Now()
			return <-accept
		})
		close(errch)
	}()

	// The first tick arrives on the second boundary, not a whole second after startup.
	waitForWaiter(t, fc)
	fc.Step(499 * time.Millisecond)
	select {
	case <-tch:
		t.Fatal("tick arrived before the second changed")
	case <-time.After(50 * time.Millisecond):
	}
	fc.Step(time.Millisecond)
	accept <- true
	select {
	case <-time.After(timeout):
		t.Fatal("timeout waiting for first tick")
	case err := <-errch:
		t.Fatalf("unexpected error waiting for first tick: %v", err)
	case got := <-tch:
		if want := time.Date(2026, 1, 1, 12, 34, 56, 0, time.UTC); !got.Equal(want) {
			t.Errorf("first tick:\n  got: %v\n want: %v", got, want)
		}
	}

	// Check that a tick the receiver refuses is counted as missed and does not stop the ticker.
	missed := testutil.ToFloat64(missedTicksCounter)
	waitForWaiter(t, fc)
	accept <- false
	fc.Step(time.Second)
	select {
	case <-time.After(timeout):
		t.Fatal("timeout waiting for second tick")
	case <-tch:
	}
	waitForWaiter(t, fc)
	if got, want := testutil.ToFloat64(missedTicksCounter)-missed, 1.0; got != want {
		t.Errorf("missed ticks:\n  got: %v\n want: %v", got, want)
	}

	// Check that cancelling the context stops the ticking.
	c()
	select {
	case <-time.After(timeout):
		t.Fatal("timeout waiting for cancel")
	case err := <-errch:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error after cancel: %v", err)
		}
	}
}

// Package clock keeps the time of day shown on the clock face and generates the once-per-second
// tick that advances it.
package clock

import "fmt"

// State is the time of day.  It is volatile: every power-on starts at Initial.
//
// Hours is always in [0, 24), Mins and Secs in [0, 60).  Tick and AddMinute are the only ways it
// changes, and neither ever leaves a field out of range.
type State struct {
	Hours uint8
	Mins  uint8
	Secs  uint8
}

// Initial returns the time the clock shows at startup.
func Initial() State {
	return State{Hours: 12, Mins: 34, Secs: 56}
}

// Tick advances the clock by one second, carrying into the minute.
func (s *State) Tick() {
	s.Secs++
	if s.Secs >= 60 {
		s.Secs = 0
		s.AddMinute()
	}
}

// AddMinute advances the clock by one minute, carrying into the hour.  Seconds are unchanged.
func (s *State) AddMinute() {
	s.Mins++
	if s.Mins >= 60 {
		s.Mins = 0
		s.Hours = (s.Hours + 1) % 24
	}
}

func (s State) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", s.Hours, s.Mins, s.Secs)
}

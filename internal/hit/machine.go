// Package hit turns per-frame detections into timed hits and scores them.
package hit

import "time"

// State is the tracking state of a Machine.
type State int

const (
	// Idle means no LED is currently being tracked.
	Idle State = iota
	// Tracking means the LED has been lit since Session.Start.
	Tracking
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Tracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// Edge classifies what a single step did.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeStarted
	EdgeContinued
	EdgeCompleted
)

func (e Edge) String() string {
	switch e {
	case EdgeNone:
		return "none"
	case EdgeStarted:
		return "started"
	case EdgeContinued:
		return "continued"
	case EdgeCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Session is the in-flight hit. A zero Start means nothing is tracked.
type Session struct {
	Active bool      `json:"active"`
	Start  time.Time `json:"start"`
}

// Live returns the duration tracked so far, or zero when inactive.
func (s Session) Live(now time.Time) time.Duration {
	if !s.Active {
		return 0
	}
	return now.Sub(s.Start)
}

// Transition is the result of feeding one detection into the machine.
type Transition struct {
	Edge     Edge
	Start    time.Time
	Duration time.Duration // set for EdgeCompleted, live duration for EdgeContinued
}

// Advance is the pure form of the state machine: it returns the next session and the
// transition caused by detected at now.
func Advance(s Session, detected bool, now time.Time) (Session, Transition) {
	switch {
	case !s.Active && detected:
		return Session{Active: true, Start: now}, Transition{Edge: EdgeStarted, Start: now}
	case s.Active && detected:
		return s, Transition{Edge: EdgeContinued, Start: s.Start, Duration: now.Sub(s.Start)}
	case s.Active && !detected:
		return Session{}, Transition{Edge: EdgeCompleted, Start: s.Start, Duration: now.Sub(s.Start)}
	default:
		return s, Transition{Edge: EdgeNone}
	}
}

// Machine holds a Session between ticks. It is owned by the detection loop and is
// not safe for concurrent use.
type Machine struct {
	session Session
}

// NewMachine returns a machine in the Idle state.
func NewMachine() *Machine {
	return &Machine{}
}

// Step feeds one frame's detection outcome.
func (m *Machine) Step(detected bool, now time.Time) Transition {
	var t Transition
	m.session, t = Advance(m.session, detected, now)
	return t
}

// Live returns the running duration of the current hit.
func (m *Machine) Live(now time.Time) time.Duration {
	return m.session.Live(now)
}

// Session returns a copy of the in-flight session.
func (m *Machine) Session() Session {
	return m.session
}

// State returns Idle or Tracking.
func (m *Machine) State() State {
	if m.session.Active {
		return Tracking
	}
	return Idle
}

// Reset returns to Idle and drops any in-flight hit without completing it.
func (m *Machine) Reset() {
	m.session = Session{}
}

package api

import (
	"fmt"

	apierrors "github.com/diogo/askchat/internal/errors"
)

// State is the lifecycle stage of one response channel
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == StateClosed || s == StateError
}

// allowed lists the legal transitions out of each state
var allowed = map[State][]State{
	StateIdle:       {StateConnecting},
	StateConnecting: {StateOpen, StateError},
	StateOpen:       {StateClosed, StateError},
}

// Tracker enforces the channel state machine for a single request.
// It is owned by the goroutine driving the request.
type Tracker struct {
	state    State
	onChange func(from, to State)
}

// NewTracker returns a tracker in the idle state.
// onChange, if non-nil, is called after every successful transition.
func NewTracker(onChange func(from, to State)) *Tracker {
	return &Tracker{state: StateIdle, onChange: onChange}
}

// State returns the current state
func (t *Tracker) State() State {
	return t.state
}

// Transition moves to the given state or returns ErrInvalidTransition
func (t *Tracker) Transition(to State) error {
	for _, next := range allowed[t.state] {
		if next == to {
			from := t.state
			t.state = to
			if t.onChange != nil {
				t.onChange(from, to)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", apierrors.ErrInvalidTransition, t.state, to)
}

package api

import (
	"errors"
	"testing"

	apierrors "github.com/diogo/askchat/internal/errors"
)

func TestTrackerTransitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []State
		wantErr bool
	}{
		{name: "happy path", path: []State{StateConnecting, StateOpen, StateClosed}},
		{name: "dial failure", path: []State{StateConnecting, StateError}},
		{name: "read failure", path: []State{StateConnecting, StateOpen, StateError}},
		{name: "skip connecting", path: []State{StateOpen}, wantErr: true},
		{name: "close before open", path: []State{StateConnecting, StateClosed}, wantErr: true},
		{name: "reopen after close", path: []State{StateConnecting, StateOpen, StateClosed, StateOpen}, wantErr: true},
		{name: "error after close", path: []State{StateConnecting, StateOpen, StateClosed, StateError}, wantErr: true},
		{name: "close after error", path: []State{StateConnecting, StateError, StateClosed}, wantErr: true},
		{name: "back to idle", path: []State{StateConnecting, StateIdle}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(nil)
			var err error
			for _, s := range tt.path {
				if err = tr.Transition(s); err != nil {
					break
				}
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("Transition() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apierrors.ErrInvalidTransition) {
				t.Errorf("Expected ErrInvalidTransition, got %v", err)
			}
		})
	}
}

func TestTrackerRejectedTransitionKeepsState(t *testing.T) {
	tr := NewTracker(nil)
	_ = tr.Transition(StateConnecting)
	_ = tr.Transition(StateOpen)
	_ = tr.Transition(StateClosed)

	if err := tr.Transition(StateOpen); err == nil {
		t.Fatal("Expected error leaving a terminal state")
	}
	if tr.State() != StateClosed {
		t.Errorf("State() = %s, want closed", tr.State())
	}
}

func TestTrackerOnChange(t *testing.T) {
	var seen []string
	tr := NewTracker(func(from, to State) {
		seen = append(seen, from.String()+">"+to.String())
	})
	_ = tr.Transition(StateConnecting)
	_ = tr.Transition(StateClosed)
	_ = tr.Transition(StateError)

	if len(seen) != 2 || seen[0] != "idle>connecting" || seen[1] != "connecting>error" {
		t.Errorf("onChange calls = %v", seen)
	}
}

func TestStateTerminal(t *testing.T) {
	for _, s := range []State{StateIdle, StateConnecting, StateOpen} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []State{StateClosed, StateError} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if State(42).String() != "state(42)" {
		t.Errorf("Unexpected name for unknown state: %s", State(42))
	}
}

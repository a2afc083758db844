package api

import (
	"testing"
	"time"
)

// collect drains ch, failing the test if it does not close in time
func collect(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("event channel not closed; got %d events so far", len(events))
			return nil
		}
	}
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func fragments(events []Event) []string {
	var out []string
	for _, ev := range events {
		if ev.Kind == EventFragment {
			out = append(out, ev.Text)
		}
	}
	return out
}

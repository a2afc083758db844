package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diogo/askchat/internal/models"
)

func TestSimulatedClientReplies(t *testing.T) {
	client := NewSimulatedClient(WithDelay(10 * time.Millisecond))

	events := collect(t, client.Open(context.Background(), "anything"))

	if len(events) != 3 {
		t.Fatalf("kinds = %v, want [open fragment closed]", kinds(events))
	}
	if events[1].Text != models.SimulatedReplyText {
		t.Errorf("fragment = %q, want %q", events[1].Text, models.SimulatedReplyText)
	}
	if events[2].Kind != EventClosed {
		t.Errorf("last kind = %s, want closed", events[2].Kind)
	}
}

func TestSimulatedClientCustomReplyAndError(t *testing.T) {
	reply := NewSimulatedClient(WithDelay(0), WithReply("custom"))
	if got := fragments(collect(t, reply.Open(context.Background(), "q"))); len(got) != 1 || got[0] != "custom" {
		t.Errorf("fragments = %v", got)
	}

	boom := errors.New("boom")
	failing := NewSimulatedClient(WithDelay(0), WithSimulatedError(boom))
	events := collect(t, failing.Open(context.Background(), "q"))
	last := events[len(events)-1]
	if last.Kind != EventError || !errors.Is(last.Err, boom) {
		t.Errorf("last event = %+v, want error boom", last)
	}
}

func TestSimulatedClientCancel(t *testing.T) {
	client := NewSimulatedClient(WithDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	ch := client.Open(ctx, "q")
	cancel()

	for _, ev := range collect(t, ch) {
		if ev.Terminal() {
			t.Errorf("unexpected terminal event %s after cancel", ev.Kind)
		}
	}
}

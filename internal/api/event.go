package api

import (
	"context"

	"github.com/rs/zerolog"
)

// EventKind classifies what happened on a response channel
type EventKind int

const (
	EventOpen EventKind = iota
	EventFragment
	EventClosed
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventFragment:
		return "fragment"
	case EventClosed:
		return "closed"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one item of the sequence a response channel yields.
// Text is set for fragments, Err for errors. State is the channel state
// after the event.
type Event struct {
	Kind  EventKind
	Text  string
	Err   error
	State State
}

// Terminal reports whether the event ends its sequence
func (e Event) Terminal() bool {
	return e.Kind == EventClosed || e.Kind == EventError
}

// Transport opens response channels to the assistant.
//
// Open returns immediately. The channel yields EventOpen, zero or more
// EventFragment, then exactly one EventClosed or EventError, and is then
// closed. Cancelling ctx releases the connection; the sequence may then end
// without a terminal event.
type Transport interface {
	Open(ctx context.Context, question string) <-chan Event
}

// eventBuffer bounds how far a transport may run ahead of its consumer
const eventBuffer = 16

// emitter publishes events for one request and keeps its tracker in step
type emitter struct {
	ctx       context.Context
	out       chan<- Event
	tracker   *Tracker
	log       zerolog.Logger
	fragments int
}

func newEmitter(ctx context.Context, out chan<- Event, log zerolog.Logger) *emitter {
	e := &emitter{ctx: ctx, out: out, log: log}
	e.tracker = NewTracker(func(from, to State) {
		e.log.Debug().Stringer("from", from).Stringer("to", to).Msg("channel state")
	})
	return e
}

func (e *emitter) send(ev Event) bool {
	ev.State = e.tracker.State()
	select {
	case e.out <- ev:
		return true
	case <-e.ctx.Done():
		return false
	}
}

func (e *emitter) move(to State) bool {
	if err := e.tracker.Transition(to); err != nil {
		e.log.Error().Err(err).Msg("channel state")
		return false
	}
	return true
}

func (e *emitter) connecting() {
	e.move(StateConnecting)
}

func (e *emitter) open() bool {
	if !e.move(StateOpen) {
		return false
	}
	return e.send(Event{Kind: EventOpen})
}

func (e *emitter) fragment(text string) bool {
	e.fragments++
	return e.send(Event{Kind: EventFragment, Text: text})
}

func (e *emitter) close() {
	if !e.move(StateClosed) {
		return
	}
	e.log.Info().Int("fragments", e.fragments).Msg("reply complete")
	e.send(Event{Kind: EventClosed})
}

func (e *emitter) fail(err error) {
	if !e.move(StateError) {
		return
	}
	e.log.Warn().Err(err).Int("fragments", e.fragments).Msg("reply failed")
	e.send(Event{Kind: EventError, Err: err})
}

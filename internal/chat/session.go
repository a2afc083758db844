package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diogo/askchat/internal/api"
	apierrors "github.com/diogo/askchat/internal/errors"
	"github.com/diogo/askchat/internal/models"
)

// BusyPolicy decides what a submission does while a reply is in flight
type BusyPolicy string

const (
	// BusyReject refuses the new submission with ErrBusy
	BusyReject BusyPolicy = "reject"
	// BusyCancel cancels the in-flight request and proceeds
	BusyCancel BusyPolicy = "cancel"
)

// ParseBusyPolicy returns the policy for name, and false when name is unknown
func ParseBusyPolicy(name string) (BusyPolicy, bool) {
	switch BusyPolicy(name) {
	case BusyReject, BusyCancel:
		return BusyPolicy(name), true
	}
	return "", false
}

// Request identifies one submitted question and carries its reply events
type Request struct {
	ID        uuid.UUID
	MessageID models.MessageID
	Events    <-chan api.Event
}

// inflight tracks the single request whose reply is still arriving
type inflight struct {
	id        uuid.UUID
	messageID models.MessageID
	received  bool
	fragments int
	cancel    context.CancelFunc
}

// Session drives one conversation: it appends the user's questions, opens a
// response channel for each, and folds the reply events into the store.
// At most one request is in flight at a time.
type Session struct {
	mu        sync.Mutex
	store     *Store
	transport api.Transport
	policy    BusyPolicy
	log       zerolog.Logger

	placeholder   string
	errorText     string
	emptyText     string
	cancelledText string

	current *inflight
	closed  bool
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithBusyPolicy sets what happens on a submission while busy
func WithBusyPolicy(policy BusyPolicy) SessionOption {
	return func(s *Session) {
		s.policy = policy
	}
}

// WithPlaceholder sets the text shown until the first fragment arrives
func WithPlaceholder(text string) SessionOption {
	return func(s *Session) {
		if text != "" {
			s.placeholder = text
		}
	}
}

// WithErrorText sets the text that replaces a failed reply
func WithErrorText(text string) SessionOption {
	return func(s *Session) {
		if text != "" {
			s.errorText = text
		}
	}
}

// WithSessionLogger sets the logger for request lifecycle events
func WithSessionLogger(log zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.log = log
	}
}

// WithStore makes the session write into an existing store, e.g. one
// seeded with a greeting
func WithStore(store *Store) SessionOption {
	return func(s *Session) {
		s.store = store
	}
}

// NewSession creates a session that sends questions over transport
func NewSession(transport api.Transport, opts ...SessionOption) *Session {
	s := &Session{
		transport:     transport,
		policy:        BusyReject,
		log:           zerolog.Nop(),
		placeholder:   models.PlaceholderText,
		errorText:     models.ErrorText,
		emptyText:     models.EmptyReplyText,
		cancelledText: models.CancelledText,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = NewStore()
	}
	return s
}

// Store returns the message store the session writes to
func (s *Session) Store() *Store {
	return s.store
}

// Policy returns the busy policy
func (s *Session) Policy() BusyPolicy {
	return s.policy
}

// Busy reports whether a reply is in flight
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// InFlight returns the ID of the request whose reply is arriving
func (s *Session) InFlight() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return uuid.Nil, false
	}
	return s.current.id, true
}

// Submit appends the question and a placeholder reply, then opens a
// response channel. The caller feeds every event of the returned request
// back through Apply, and calls Complete once the channel is closed.
func (s *Session) Submit(ctx context.Context, text string) (Request, error) {
	question := strings.TrimSpace(text)
	if question == "" {
		return Request{}, apierrors.ErrEmptyQuestion
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Request{}, apierrors.ErrClosed
	}
	if s.current != nil {
		if s.policy != BusyCancel {
			return Request{}, apierrors.ErrBusy
		}
		s.log.Info().Str("request_id", s.current.id.String()).Msg("cancelling request for new question")
		s.cancelLocked()
	}

	s.store.Append(models.OriginUser, question)
	placeholder := s.store.Append(models.OriginAssistant, s.placeholder)

	reqCtx, cancel := context.WithCancel(ctx)
	cur := &inflight{
		id:        uuid.New(),
		messageID: placeholder.ID,
		cancel:    cancel,
	}
	s.current = cur

	s.log.Info().
		Str("request_id", cur.id.String()).
		Stringer("message_id", cur.messageID).
		Int("question_len", len(question)).
		Msg("question submitted")

	return Request{
		ID:        cur.id,
		MessageID: cur.messageID,
		Events:    s.transport.Open(reqCtx, question),
	}, nil
}

// Apply folds one event into the in-flight reply. Events of a request that
// is no longer in flight are dropped. It reports whether the event was used.
func (s *Session) Apply(reqID uuid.UUID, ev api.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current
	if cur == nil || cur.id != reqID {
		s.log.Debug().Str("request_id", reqID.String()).Stringer("kind", ev.Kind).Msg("dropping stale event")
		return false
	}

	switch ev.Kind {
	case api.EventOpen:
		s.log.Debug().Str("request_id", reqID.String()).Msg("channel open")

	case api.EventFragment:
		first := !cur.received
		s.store.Patch(cur.messageID, func(old string) string {
			if first {
				return ev.Text
			}
			return old + ev.Text
		})
		cur.received = true
		cur.fragments++

	case api.EventClosed:
		if !cur.received {
			s.store.Patch(cur.messageID, func(string) string { return s.emptyText })
		}
		s.log.Info().Str("request_id", reqID.String()).Int("fragments", cur.fragments).Msg("reply complete")
		s.finishLocked()

	case api.EventError:
		s.store.Patch(cur.messageID, func(string) string { return s.errorText })
		s.log.Warn().Err(ev.Err).Str("request_id", reqID.String()).Int("fragments", cur.fragments).Msg("reply failed")
		s.finishLocked()
	}
	return true
}

// Complete is called once the event channel of reqID has been drained.
// A request still in flight at that point ended without a terminal event
// and is finalised as failed.
func (s *Session) Complete(reqID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.id != reqID {
		return
	}
	s.log.Warn().Str("request_id", reqID.String()).Msg("channel closed without a terminal event")
	s.store.Patch(s.current.messageID, func(string) string { return s.errorText })
	s.finishLocked()
}

// Cancel abandons the in-flight request, if any, and marks its reply as
// cancelled. It reports whether there was a request to cancel.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false
	}
	s.log.Info().Str("request_id", s.current.id.String()).Msg("request cancelled")
	s.cancelLocked()
	return true
}

// Close cancels any in-flight request and refuses further submissions.
// It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.cancelLocked()
	}
	s.closed = true
}

// cancelLocked finalises the current reply with the cancellation text.
// A partial reply keeps its text with the marker appended.
func (s *Session) cancelLocked() {
	cur := s.current
	s.store.Patch(cur.messageID, func(old string) string {
		if !cur.received {
			return s.cancelledText
		}
		return old + "\n\n" + s.cancelledText
	})
	s.finishLocked()
}

func (s *Session) finishLocked() {
	s.current.cancel()
	s.current = nil
}

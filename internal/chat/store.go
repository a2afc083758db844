// Package chat holds the conversation state of one chat: the ordered message
// store and the session that feeds assistant replies into it.
package chat

import (
	"sync"
	"time"

	"github.com/diogo/askchat/internal/models"
)

// Store is an ordered list of messages. Messages are only ever appended or
// have their text patched in place; they are never reordered or removed.
type Store struct {
	mu       sync.RWMutex
	messages []models.Message
	lastID   models.MessageID
	version  uint64
	now      func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Append adds a message at the end and returns it
func (s *Store) Append(origin models.Origin, text string) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	msg := models.Message{
		ID:        s.lastID,
		Origin:    origin,
		Text:      text,
		CreatedAt: s.now(),
	}
	s.messages = append(s.messages, msg)
	s.version++
	return msg
}

// PatchLast replaces the text of the most recently added message matching
// pred with update(old text). It reports whether a message was patched.
func (s *Store) PatchLast(pred func(models.Message) bool, update func(string) string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.messages) - 1; i >= 0; i-- {
		if pred(s.messages[i]) {
			s.messages[i].Text = update(s.messages[i].Text)
			s.version++
			return true
		}
	}
	return false
}

// Patch updates the message with the given ID
func (s *Store) Patch(id models.MessageID, update func(string) string) bool {
	return s.PatchLast(func(m models.Message) bool { return m.ID == id }, update)
}

// Get returns the message with the given ID
func (s *Store) Get(id models.MessageID) (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.messages {
		if m.ID == id {
			return m, true
		}
	}
	return models.Message{}, false
}

// LastFrom returns the most recent message from origin
func (s *Store) LastFrom(origin models.Origin) (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Origin == origin {
			return s.messages[i], true
		}
	}
	return models.Message{}, false
}

// Messages returns a copy of all messages in creation order
func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Version increases on every mutation. Views compare it to decide whether
// to re-render.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

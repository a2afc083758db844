package models

import (
	"fmt"
	"time"
)

// Origin tags who produced a message
type Origin string

const (
	OriginUser      Origin = "user"
	OriginAssistant Origin = "assistant"
)

// Label returns the speaker label shown above a message bubble
func (o Origin) Label() string {
	if o == OriginUser {
		return "ME"
	}
	return "OUR AI"
}

// MessageID identifies a message within one store. IDs grow monotonically,
// so comparing two IDs from the same store gives their creation order.
type MessageID uint64

func (id MessageID) String() string {
	return fmt.Sprintf("msg-%d", uint64(id))
}

// Message represents a chat message for display
type Message struct {
	ID        MessageID
	Origin    Origin
	Text      string
	CreatedAt time.Time
}

// IsUser reports whether the message was typed by the user
func (m Message) IsUser() bool {
	return m.Origin == OriginUser
}

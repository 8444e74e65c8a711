package models

import (
	"time"
)

// Message is a chat message as reported by the room API. Messages are
// immutable once received.
type Message struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id,omitempty"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// IsFrom reports whether the message was sent by the given display name.
func (m Message) IsFrom(sender string) bool {
	return sender != "" && m.Sender == sender
}

// Before orders messages by server timestamp, ties broken by id.
func (m Message) Before(other Message) bool {
	if !m.Timestamp.Equal(other.Timestamp) {
		return m.Timestamp.Before(other.Timestamp)
	}
	return m.ID < other.ID
}

package models

import (
	"time"
)

// TTLSample is one server-reported remaining lifetime of a room, stamped
// with the local time it was observed at.
type TTLSample struct {
	ObservedAt time.Time `json:"observed_at"`
	TTLSeconds int       `json:"ttl_seconds"`
}

// EventKind defines the kind of a realtime room event.
type EventKind string

const (
	EventKindNewMessage    EventKind = "chat.message"
	EventKindRoomDestroyed EventKind = "chat.destroy"
)

// AllEventKinds lists every event kind a room session listens for.
var AllEventKinds = []EventKind{EventKindNewMessage, EventKindRoomDestroyed}

// Valid reports whether k is a known event kind.
func (k EventKind) Valid() bool {
	switch k {
	case EventKindNewMessage, EventKindRoomDestroyed:
		return true
	default:
		return false
	}
}

// ChannelEvent is a realtime event scoped to exactly one room.
// A NewMessage event is only an invalidation hint; it never carries the
// authoritative message content.
type ChannelEvent struct {
	ID         string    `json:"id,omitempty"`
	RoomID     string    `json:"room_id"`
	Kind       EventKind `json:"kind"`
	ReceivedAt time.Time `json:"received_at"`
}

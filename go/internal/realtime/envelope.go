package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcdev12/vanish/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Envelope is the wire format of a realtime room event, shared by every transport.
type Envelope struct {
	ID        string          `json:"id,omitempty"`
	Channel   string          `json:"channel"`
	Event     string          `json:"event"`
	Timestamp int64           `json:"timestamp,omitempty"` // unix millis
	Data      json.RawMessage `json:"data,omitempty"`
}

// DecodeEvent parses an envelope. Envelopes without a channel are attributed
// to roomID, the room the transport subscription is scoped to.
func DecodeEvent(data []byte, roomID string) (models.ChannelEvent, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return models.ChannelEvent{}, fmt.Errorf("unmarshal event envelope: %w", err)
	}

	kind := models.EventKind(env.Event)
	if !kind.Valid() {
		return models.ChannelEvent{}, fmt.Errorf("unknown event type: %s", env.Event)
	}

	channel := env.Channel
	if channel == "" {
		channel = roomID
	}

	received := time.Now()
	if env.Timestamp > 0 {
		received = time.UnixMilli(env.Timestamp)
	}

	return models.ChannelEvent{
		ID:         env.ID,
		RoomID:     channel,
		Kind:       kind,
		ReceivedAt: received,
	}, nil
}

// EncodeEvent builds the wire form of an event. Publishers and tests use it.
func EncodeEvent(ev models.ChannelEvent) ([]byte, error) {
	env := Envelope{
		ID:      ev.ID,
		Channel: ev.RoomID,
		Event:   string(ev.Kind),
	}
	if !ev.ReceivedAt.IsZero() {
		env.Timestamp = ev.ReceivedAt.UnixMilli()
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal event envelope: %w", err)
	}
	return data, nil
}

// forward decodes raw payloads from in and hands the events to out until
// done is closed or in ends. It owns out and closes it on return.
func forward(in <-chan []byte, out chan<- models.ChannelEvent, done <-chan struct{}, roomID, transport string) {
	defer close(out)
	for {
		select {
		case <-done:
			return
		case data, ok := <-in:
			if !ok {
				return
			}
			ev, err := DecodeEvent(data, roomID)
			if err != nil {
				logDecodeError(err, roomID, transport)
				continue
			}
			select {
			case out <- ev:
			case <-done:
				return
			}
		}
	}
}

func logDecodeError(err error, roomID, transport string) {
	log.Warn().
		Err(err).
		Str("room_id", roomID).
		Str("transport", transport).
		Msg("dropping undecodable realtime event")
}

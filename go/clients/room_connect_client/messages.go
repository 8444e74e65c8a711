package room_connect_client

import (
	"time"

	"github.com/mcdev12/vanish/go/internal/models"
)

const (
	ServiceName = "room.v1.RoomService"

	GetTtlProcedure       = "/" + ServiceName + "/GetTtl"
	ListMessagesProcedure = "/" + ServiceName + "/ListMessages"
	PostMessageProcedure  = "/" + ServiceName + "/PostMessage"
	DeleteRoomProcedure   = "/" + ServiceName + "/DeleteRoom"
)

type GetTtlRequest struct {
	RoomID string `json:"roomId"`
}

type GetTtlResponse struct {
	Ttl int `json:"ttl"`
}

type ListMessagesRequest struct {
	RoomID string `json:"roomId"`
}

type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // unix millis
	RoomID    string `json:"roomId"`
}

type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
}

type PostMessageRequest struct {
	RoomID string `json:"roomId"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type PostMessageResponse struct{}

type DeleteRoomRequest struct {
	RoomID string `json:"roomId"`
}

type DeleteRoomResponse struct{}

func (m Message) toModel() models.Message {
	return models.Message{
		ID:        m.ID,
		RoomID:    m.RoomID,
		Sender:    m.Sender,
		Text:      m.Text,
		Timestamp: time.UnixMilli(m.Timestamp),
	}
}

package room_api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcdev12/vanish/go/internal/models"
)

// Message is the wire form of a chat message. Timestamp is unix millis.
type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	RoomID    string `json:"roomId"`
}

type MessagesResponse struct {
	Messages []Message `json:"messages"`
}

type PostMessageRequest struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

func (m Message) toModel() models.Message {
	return models.Message{
		ID:        m.ID,
		RoomID:    m.RoomID,
		Sender:    m.Sender,
		Text:      m.Text,
		Timestamp: time.UnixMilli(m.Timestamp),
	}
}

func (c *RoomApiClient) ListMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	body, err := c.Get(ctx, roomQuery(MessagesEndpoint, roomID))
	if err != nil {
		return nil, mapError("list messages", err)
	}

	var response MessagesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	messages := make([]models.Message, 0, len(response.Messages))
	for _, m := range response.Messages {
		messages = append(messages, m.toModel())
	}
	return messages, nil
}

func (c *RoomApiClient) PostMessage(ctx context.Context, roomID, sender, text string) error {
	payload, err := json.Marshal(PostMessageRequest{Sender: sender, Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if _, err := c.Post(ctx, roomQuery(MessagesEndpoint, roomID), bytes.NewReader(payload)); err != nil {
		return mapError("post message", err)
	}
	return nil
}

package room_api_client

import (
	"context"
	"encoding/json"
	"fmt"
)

type TTLResponse struct {
	TTL int `json:"ttl"`
}

func (c *RoomApiClient) GetTTL(ctx context.Context, roomID string) (int, error) {
	body, err := c.Get(ctx, roomQuery(RoomTTLEndpoint, roomID))
	if err != nil {
		return 0, mapError("get ttl", err)
	}

	var response TTLResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return 0, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	return response.TTL, nil
}

// DeleteRoom destroys the room. The API treats deleting a missing room as
// success; a 404 still maps to room.ErrRoomGone, which callers accept.
func (c *RoomApiClient) DeleteRoom(ctx context.Context, roomID string) error {
	if _, err := c.Delete(ctx, roomQuery(RoomEndpoint, roomID)); err != nil {
		return mapError("delete room", err)
	}
	return nil
}

package room_api_client

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mcdev12/vanish/go/clients"
	"github.com/mcdev12/vanish/go/internal/room"
)

// RoomApiClient is the REST implementation of room.Gateway.
type RoomApiClient struct {
	*clients.BaseClient
}

func NewRoomApiClient(baseURL, authToken string) *RoomApiClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := &RoomApiClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}

	client.SetHeader("Accept", "application/json")
	if authToken != "" {
		client.SetHeader(AuthTokenHeader, authToken)
	}

	return client
}

var _ room.Gateway = (*RoomApiClient)(nil)

func roomQuery(endpoint, roomID string) string {
	return fmt.Sprintf("%s?%s=%s", endpoint, RoomIDParam, url.QueryEscape(roomID))
}

// mapError translates transport failures into the room error taxonomy.
func mapError(op string, err error) error {
	var statusErr *clients.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusNotFound || statusErr.StatusCode == http.StatusGone:
			return fmt.Errorf("%s: %w", op, room.ErrRoomGone)
		case statusErr.StatusCode >= 500,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode == http.StatusRequestTimeout:
			return room.NewTransientError(op, err)
		default:
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	var reqErr *clients.RequestError
	if errors.As(err, &reqErr) {
		return room.NewTransientError(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

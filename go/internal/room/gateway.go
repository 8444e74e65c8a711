package room

import (
	"context"

	"github.com/mcdev12/vanish/go/internal/models"
)

// Gateway is what the room engine needs from the room API.
// Implementations map "room not found" to ErrRoomGone and connectivity
// failures to TransientError.
type Gateway interface {
	GetTTL(ctx context.Context, roomID string) (int, error)
	ListMessages(ctx context.Context, roomID string) ([]models.Message, error)
	PostMessage(ctx context.Context, roomID, sender, text string) error
	DeleteRoom(ctx context.Context, roomID string) error
}

// Subscription is a live realtime subscription for one room.
// Events is closed by the source when the stream ends for good.
type Subscription interface {
	Events() <-chan models.ChannelEvent
	Close() error
}

// Source opens room-scoped realtime subscriptions.
type Source interface {
	Subscribe(ctx context.Context, roomID string, kinds []models.EventKind) (Subscription, error)
}

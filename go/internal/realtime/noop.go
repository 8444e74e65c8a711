package realtime

import (
	"context"

	"github.com/mcdev12/vanish/go/internal/models"
	"github.com/mcdev12/vanish/go/internal/room"
)

// NoopSource never delivers events. Sessions using it close through TTL
// expiry or local destroy only.
type NoopSource struct{}

func (NoopSource) Subscribe(ctx context.Context, roomID string, kinds []models.EventKind) (room.Subscription, error) {
	return newSubscription(roomID, "noop", nil, 0), nil
}

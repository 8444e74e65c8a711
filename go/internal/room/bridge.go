package room

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcdev12/vanish/go/internal/models"
	"github.com/rs/zerolog/log"
)

// EventHandler receives realtime events, one at a time, in arrival order.
type EventHandler func(models.ChannelEvent)

// Bridge subscribes to the realtime events of one room and dispatches them
// to a handler. A dropped transport never surfaces as an error: the bridge
// just stops delivering.
type Bridge struct {
	source Source

	mu          sync.Mutex
	sub         Subscription
	subscribing bool
	stopped     chan struct{}
	once        sync.Once
}

// NewBridge creates a bridge over the given realtime source.
func NewBridge(source Source) *Bridge {
	return &Bridge{
		source:  source,
		stopped: make(chan struct{}),
	}
}

// Subscribe opens the room subscription and starts dispatching events of the
// requested kinds for roomID only. The transport is dialed without holding
// the bridge lock. A subscription that completes after Unsubscribe is
// closed right away.
func (b *Bridge) Subscribe(ctx context.Context, roomID string, kinds []models.EventKind, handle EventHandler) error {
	b.mu.Lock()
	select {
	case <-b.stopped:
		b.mu.Unlock()
		return ErrBridgeClosed
	default:
	}
	if b.subscribing || b.sub != nil {
		b.mu.Unlock()
		return fmt.Errorf("subscribe room %s: already subscribed", roomID)
	}
	b.subscribing = true
	b.mu.Unlock()

	sub, err := b.source.Subscribe(ctx, roomID, kinds)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribing = false

	if err != nil {
		return NewTransientError("subscribe", err)
	}

	select {
	case <-b.stopped:
		if err := sub.Close(); err != nil {
			log.Debug().Err(err).Str("room_id", roomID).Msg("close late realtime subscription")
		}
		return ErrBridgeClosed
	default:
	}
	b.sub = sub

	wanted := make(map[models.EventKind]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}

	go b.pump(sub, roomID, wanted, handle)

	log.Debug().
		Str("room_id", roomID).
		Int("kinds", len(kinds)).
		Msg("realtime subscription established")
	return nil
}

func (b *Bridge) pump(sub Subscription, roomID string, wanted map[models.EventKind]bool, handle EventHandler) {
	events := sub.Events()
	for {
		select {
		case <-b.stopped:
			return
		case ev, ok := <-events:
			if !ok {
				log.Debug().Str("room_id", roomID).Msg("realtime stream ended")
				return
			}
			if ev.RoomID != roomID || !wanted[ev.Kind] {
				continue
			}
			// Unsubscribe may have raced with the receive above.
			select {
			case <-b.stopped:
				return
			default:
			}
			handle(ev)
		}
	}
}

// Unsubscribe stops delivery and closes the underlying subscription.
// It is safe to call any number of times, before Subscribe, or after the
// transport already failed.
func (b *Bridge) Unsubscribe() {
	b.once.Do(func() {
		b.mu.Lock()
		close(b.stopped)
		sub := b.sub
		b.mu.Unlock()

		if sub == nil {
			return
		}
		if err := sub.Close(); err != nil {
			log.Debug().Err(err).Msg("close realtime subscription")
		}
	})
}

package realtime

import (
	"sync"

	"github.com/mcdev12/vanish/go/internal/models"
)

// subscription is the Subscription shared by every transport. The transport
// feeds raw payloads into raw; forward turns them into events.
type subscription struct {
	events chan models.ChannelEvent
	done   chan struct{}

	once    sync.Once
	closeFn func() error
	err     error
}

func newSubscription(roomID, transport string, raw <-chan []byte, buffer int) *subscription {
	s := &subscription{
		events: make(chan models.ChannelEvent, buffer),
		done:   make(chan struct{}),
	}
	go forward(raw, s.events, s.done, roomID, transport)
	return s
}

func (s *subscription) Events() <-chan models.ChannelEvent {
	return s.events
}

// Close stops delivery and releases the transport subscription. Repeated
// calls return the first result.
func (s *subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		if s.closeFn != nil {
			s.err = s.closeFn()
		}
	})
	return s.err
}

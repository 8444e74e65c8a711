package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/vanish/go/internal/models"
)

// newStreamServer serves a realtime stream that writes events, then waits
// for the client to hang up.
func newStreamServer(t *testing.T, query chan<- string, events ...models.ChannelEvent) string {
	t.Helper()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query <- r.URL.RawQuery

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, ev := range events {
			data, err := EncodeEvent(ev)
			if err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http") + "/api/realtime"
}

func TestWebSocketSourceDeliversEvents(t *testing.T) {
	query := make(chan string, 1)
	url := newStreamServer(t, query,
		models.ChannelEvent{ID: "1", RoomID: "room-1", Kind: models.EventKindNewMessage},
		models.ChannelEvent{ID: "2", RoomID: "room-1", Kind: models.EventKindRoomDestroyed},
	)

	cfg := DefaultWebSocketConfig()
	cfg.URL = url
	source := NewWebSocketSource(cfg)

	sub, err := source.Subscribe(context.Background(), "room-1", models.AllEventKinds)
	require.NoError(t, err)

	assert.Equal(t, "channel=room-1&events=chat.message%2Cchat.destroy", <-query)

	for _, want := range []string{"1", "2"} {
		select {
		case ev := <-sub.Events():
			assert.Equal(t, want, ev.ID)
			assert.Equal(t, "room-1", ev.RoomID)
		case <-time.After(time.Second):
			t.Fatalf("event %s not delivered", want)
		}
	}

	assert.NoError(t, sub.Close())
	assert.NoError(t, sub.Close())
}

func TestWebSocketSourceDialFailure(t *testing.T) {
	cfg := DefaultWebSocketConfig()
	cfg.URL = "ws://127.0.0.1:1/api/realtime"
	cfg.HandshakeTimeout = 100 * time.Millisecond

	_, err := NewWebSocketSource(cfg).Subscribe(context.Background(), "room-1", models.AllEventKinds)
	assert.ErrorContains(t, err, "dial realtime stream")
}

func TestSubjectAndChannelNames(t *testing.T) {
	nats := NewNATSSource(nil, DefaultNATSConfig())
	assert.Equal(t, "rooms.room-1", nats.Subject("room-1"))

	redis := NewRedisSource(nil, DefaultRedisConfig())
	assert.Equal(t, "room:room-1", redis.Channel("room-1"))
}

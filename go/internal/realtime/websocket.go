package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mcdev12/vanish/go/internal/models"
	"github.com/mcdev12/vanish/go/internal/room"
	"github.com/rs/zerolog/log"
)

// WebSocketConfig holds configuration for the realtime WebSocket gateway
type WebSocketConfig struct {
	URL              string // e.g. ws://localhost:3000/api/realtime
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReadBufferSize   int
	WriteBufferSize  int
	BufferSize       int
	Header           http.Header
}

// DefaultWebSocketConfig returns default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		URL:              "ws://localhost:3000/api/realtime",
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     time.Second,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		BufferSize:       64,
	}
}

// WebSocketSource delivers room events from a WebSocket stream, one
// connection per room subscription.
type WebSocketSource struct {
	dialer *websocket.Dialer
	config WebSocketConfig
}

// NewWebSocketSource creates a WebSocket source.
func NewWebSocketSource(config WebSocketConfig) *WebSocketSource {
	return &WebSocketSource{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: config.HandshakeTimeout,
			ReadBufferSize:   config.ReadBufferSize,
			WriteBufferSize:  config.WriteBufferSize,
		},
		config: config,
	}
}

// StreamURL returns the URL subscribing to roomID for the given kinds.
func (s *WebSocketSource) StreamURL(roomID string, kinds []models.EventKind) (string, error) {
	u, err := url.Parse(s.config.URL)
	if err != nil {
		return "", fmt.Errorf("parse realtime url: %w", err)
	}

	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}

	q := u.Query()
	q.Set("channel", roomID)
	q.Set("events", strings.Join(names, ","))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Subscribe dials the stream for roomID and starts the read pump.
func (s *WebSocketSource) Subscribe(ctx context.Context, roomID string, kinds []models.EventKind) (room.Subscription, error) {
	streamURL, err := s.StreamURL(roomID, kinds)
	if err != nil {
		return nil, err
	}

	conn, _, err := s.dialer.DialContext(ctx, streamURL, s.config.Header)
	if err != nil {
		return nil, fmt.Errorf("dial realtime stream: %w", err)
	}

	raw := make(chan []byte, s.config.BufferSize)
	sub := newSubscription(roomID, "websocket", raw, s.config.BufferSize)
	sub.closeFn = func() error {
		deadline := time.Now().Add(s.config.WriteTimeout)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
			log.Debug().Err(err).Str("room_id", roomID).Msg("failed to send close frame")
		}
		return conn.Close()
	}

	go readPump(conn, raw, sub.done, roomID)

	log.Debug().Str("room_id", roomID).Str("url", streamURL).Msg("realtime WebSocket connected")
	return sub, nil
}

// readPump reads frames until the connection fails or the subscription closes.
func readPump(conn *websocket.Conn, raw chan<- []byte, done <-chan struct{}, roomID string) {
	defer close(raw)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-done:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Debug().Err(err).Str("room_id", roomID).Msg("realtime WebSocket dropped")
				}
			}
			return
		}

		select {
		case raw <- data:
		case <-done:
			return
		}
	}
}

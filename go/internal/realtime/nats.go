package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mcdev12/vanish/go/internal/models"
	"github.com/mcdev12/vanish/go/internal/room"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NATSConfig holds configuration for NATS room subscriptions
type NATSConfig struct {
	URL           string
	SubjectPrefix string // room subject is <prefix>.<roomID>
	StreamName    string // JetStream stream holding room subjects
	MaxReconnects int
	ReconnectWait time.Duration
	BufferSize    int
}

// DefaultNATSConfig returns default NATS configuration
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "rooms",
		StreamName:    "ROOM_EVENTS",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
		BufferSize:    64,
	}
}

// ConnectNATS opens a NATS connection that logs disconnects instead of
// failing. An unreachable server at startup is retried in the background;
// only a malformed configuration is an error.
func ConnectNATS(cfg NATSConfig) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("vanish-room-client"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.ConnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS connected")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	if !nc.IsConnected() {
		log.Warn().Str("url", cfg.URL).Msg("NATS unreachable, retrying in background")
	}
	return nc, nil
}

// NATSSource delivers room events published on core NATS subjects.
type NATSSource struct {
	nc     *nats.Conn
	config NATSConfig
}

// NewNATSSource creates a source over an open connection.
func NewNATSSource(nc *nats.Conn, config NATSConfig) *NATSSource {
	return &NATSSource{nc: nc, config: config}
}

// Subject returns the subject carrying events of roomID.
func (s *NATSSource) Subject(roomID string) string {
	return roomSubject(s.config.SubjectPrefix, roomID)
}

// Subscribe subscribes to the room subject. Kinds are filtered by the caller.
func (s *NATSSource) Subscribe(ctx context.Context, roomID string, kinds []models.EventKind) (room.Subscription, error) {
	subject := s.Subject(roomID)
	raw := make(chan []byte, s.config.BufferSize)
	sub := newSubscription(roomID, "nats", raw, s.config.BufferSize)

	natsSub, err := s.nc.Subscribe(subject, func(msg *nats.Msg) {
		select {
		case raw <- msg.Data:
		case <-sub.done:
		}
	})
	if err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}

	sub.closeFn = func() error {
		err := natsSub.Unsubscribe()
		if errors.Is(err, nats.ErrConnectionClosed) || errors.Is(err, nats.ErrBadSubscription) {
			return nil
		}
		return err
	}

	log.Debug().Str("subject", subject).Msg("subscribed to NATS room subject")
	return sub, nil
}

func roomSubject(prefix, roomID string) string {
	if prefix == "" {
		return roomID
	}
	return prefix + "." + roomID
}

package realtime

import (
	"context"
	"fmt"

	"github.com/mcdev12/vanish/go/internal/models"
	"github.com/mcdev12/vanish/go/internal/room"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// JetStreamSource delivers room events from a JetStream stream through an
// ordered, ephemeral consumer per room. Only events published after the
// subscription are delivered; history comes from the message list pull.
type JetStreamSource struct {
	js     jetstream.JetStream
	config NATSConfig
}

// NewJetStreamSource creates a JetStream source over an open connection.
func NewJetStreamSource(nc *nats.Conn, config NATSConfig) (*JetStreamSource, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}
	return &JetStreamSource{js: js, config: config}, nil
}

// Subscribe creates an ordered consumer filtered to the room subject.
func (s *JetStreamSource) Subscribe(ctx context.Context, roomID string, kinds []models.EventKind) (room.Subscription, error) {
	subject := roomSubject(s.config.SubjectPrefix, roomID)

	consumer, err := s.js.OrderedConsumer(ctx, s.config.StreamName, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{subject},
		DeliverPolicy:  jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("create ordered consumer for %s: %w", subject, err)
	}

	raw := make(chan []byte, s.config.BufferSize)
	sub := newSubscription(roomID, "jetstream", raw, s.config.BufferSize)

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		select {
		case raw <- msg.Data():
		case <-sub.done:
		}
	})
	if err != nil {
		sub.Close()
		return nil, fmt.Errorf("start consumer for %s: %w", subject, err)
	}

	sub.closeFn = func() error {
		consumeCtx.Stop()
		return nil
	}

	log.Debug().
		Str("stream", s.config.StreamName).
		Str("subject", subject).
		Msg("created ordered JetStream consumer")
	return sub, nil
}

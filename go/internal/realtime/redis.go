package realtime

import (
	"context"
	"fmt"

	"github.com/mcdev12/vanish/go/internal/models"
	"github.com/mcdev12/vanish/go/internal/room"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisConfig holds configuration for Redis Pub/Sub room subscriptions
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	ChannelPrefix string // room channel is <prefix>:<roomID>
	BufferSize    int
}

// DefaultRedisConfig returns default Redis configuration
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:          "localhost:6379",
		ChannelPrefix: "room",
		BufferSize:    64,
	}
}

// NewRedisClient creates a Redis client for cfg.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisSource delivers room events published on Redis Pub/Sub channels.
type RedisSource struct {
	rdb    *redis.Client
	config RedisConfig
}

// NewRedisSource creates a source over a Redis client.
func NewRedisSource(rdb *redis.Client, config RedisConfig) *RedisSource {
	return &RedisSource{rdb: rdb, config: config}
}

// Channel returns the Pub/Sub channel carrying events of roomID.
func (s *RedisSource) Channel(roomID string) string {
	if s.config.ChannelPrefix == "" {
		return roomID
	}
	return s.config.ChannelPrefix + ":" + roomID
}

// Subscribe subscribes to the room channel and waits for the confirmation.
func (s *RedisSource) Subscribe(ctx context.Context, roomID string, kinds []models.EventKind) (room.Subscription, error) {
	channel := s.Channel(roomID)

	pubsub := s.rdb.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	raw := make(chan []byte, s.config.BufferSize)
	sub := newSubscription(roomID, "redis", raw, s.config.BufferSize)
	sub.closeFn = pubsub.Close

	go func() {
		defer close(raw)
		for msg := range pubsub.Channel() {
			select {
			case raw <- []byte(msg.Payload):
			case <-sub.done:
				return
			}
		}
	}()

	log.Debug().Str("channel", channel).Msg("subscribed to Redis room channel")
	return sub, nil
}

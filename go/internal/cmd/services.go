package main

import (
	"fmt"
	"net/http"

	"github.com/mcdev12/vanish/go/clients/room_api_client"
	"github.com/mcdev12/vanish/go/clients/room_connect_client"
	"github.com/mcdev12/vanish/go/internal/config"
	"github.com/mcdev12/vanish/go/internal/realtime"
	"github.com/mcdev12/vanish/go/internal/room"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Gateway room.Gateway
	Source  room.Source

	closers []func()
}

func setupServices(cfg *config.Config) (*Services, error) {
	// Wire up the two collaborators of a room session:
	// RPC gateway (request/response) and realtime source (push hints)
	services := &Services{
		Gateway: setupGateway(cfg),
	}

	source, closeSource, err := setupSource(cfg)
	if err != nil {
		return nil, err
	}
	services.Source = source
	if closeSource != nil {
		services.closers = append(services.closers, closeSource)
	}

	return services, nil
}

// Close releases the shared transport connections.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func setupGateway(cfg *config.Config) room.Gateway {
	switch cfg.API.Protocol {
	case config.ProtocolConnect:
		log.Info().Str("url", cfg.API.URL).Bool("h2c", cfg.API.H2C).Msg("using Connect room gateway")
		return room_connect_client.NewRoomConnectClient(room_connect_client.Config{
			BaseURL:   cfg.API.URL,
			AuthToken: cfg.API.Token,
			Timeout:   cfg.API.Timeout,
			H2C:       cfg.API.H2C,
		})
	default:
		log.Info().Str("url", cfg.API.URL).Msg("using REST room gateway")
		client := room_api_client.NewRoomApiClient(cfg.API.URL, cfg.API.Token)
		client.SetTimeout(cfg.API.Timeout)
		return client
	}
}

func setupSource(cfg *config.Config) (room.Source, func(), error) {
	rt := cfg.Realtime

	switch rt.Driver {
	case config.DriverNATS, config.DriverJetStream:
		natsCfg := realtime.DefaultNATSConfig()
		natsCfg.URL = rt.NATSURL
		natsCfg.SubjectPrefix = rt.NATSSubjectPrefix
		natsCfg.StreamName = rt.NATSStream

		nc, err := realtime.ConnectNATS(natsCfg)
		if err != nil {
			log.Warn().Err(err).Str("url", natsCfg.URL).Msg("NATS unavailable, room closes on ttl expiry only")
			return realtime.NoopSource{}, nil, nil
		}
		closeConn := func() { nc.Close() }

		if rt.Driver == config.DriverNATS {
			log.Info().Str("url", natsCfg.URL).Msg("using NATS realtime source")
			return realtime.NewNATSSource(nc, natsCfg), closeConn, nil
		}

		source, err := realtime.NewJetStreamSource(nc, natsCfg)
		if err != nil {
			nc.Close()
			log.Warn().Err(err).Msg("JetStream unavailable, room closes on ttl expiry only")
			return realtime.NoopSource{}, nil, nil
		}
		log.Info().Str("url", natsCfg.URL).Str("stream", natsCfg.StreamName).Msg("using JetStream realtime source")
		return source, closeConn, nil

	case config.DriverRedis:
		redisCfg := realtime.DefaultRedisConfig()
		redisCfg.Addr = rt.RedisAddr
		redisCfg.Password = rt.RedisPassword
		redisCfg.DB = rt.RedisDB
		redisCfg.ChannelPrefix = rt.RedisChannelPrefix

		rdb := realtime.NewRedisClient(redisCfg)
		log.Info().Str("addr", redisCfg.Addr).Msg("using Redis realtime source")
		return realtime.NewRedisSource(rdb, redisCfg), func() {
			if err := rdb.Close(); err != nil {
				log.Debug().Err(err).Msg("close redis client")
			}
		}, nil

	case config.DriverWebSocket:
		wsCfg := realtime.DefaultWebSocketConfig()
		wsCfg.URL = rt.WebSocketURL
		if cfg.API.Token != "" {
			wsCfg.Header = http.Header{}
			wsCfg.Header.Set("x-auth-token", cfg.API.Token)
		}
		log.Info().Str("url", wsCfg.URL).Msg("using WebSocket realtime source")
		return realtime.NewWebSocketSource(wsCfg), nil, nil

	case config.DriverNone:
		log.Warn().Msg("realtime disabled, room closes on ttl expiry only")
		return realtime.NoopSource{}, nil, nil
	}

	return nil, nil, fmt.Errorf("unsupported realtime driver %q", rt.Driver)
}

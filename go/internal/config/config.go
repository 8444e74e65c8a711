package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	ProtocolREST    = "rest"
	ProtocolConnect = "connect"

	DriverNATS      = "nats"
	DriverJetStream = "jetstream"
	DriverRedis     = "redis"
	DriverWebSocket = "websocket"
	DriverNone      = "none"
)

// Config is the terminal client configuration. Values come from defaults,
// then the optional YAML file, then the environment.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Session  SessionConfig  `yaml:"session"`

	UsernameFile string `yaml:"username_file"`
	LogLevel     string `yaml:"log_level"`
}

type APIConfig struct {
	URL      string        `yaml:"url"`
	Protocol string        `yaml:"protocol"`
	H2C      bool          `yaml:"h2c"`
	Token    string        `yaml:"token"`
	Timeout  time.Duration `yaml:"timeout"`
}

type RealtimeConfig struct {
	Driver             string `yaml:"driver"`
	NATSURL            string `yaml:"nats_url"`
	NATSSubjectPrefix  string `yaml:"nats_subject_prefix"`
	NATSStream         string `yaml:"nats_stream"`
	RedisAddr          string `yaml:"redis_addr"`
	RedisPassword      string `yaml:"redis_password"`
	RedisDB            int    `yaml:"redis_db"`
	RedisChannelPrefix string `yaml:"redis_channel_prefix"`
	WebSocketURL       string `yaml:"websocket_url"`
}

type SessionConfig struct {
	TTLResyncInterval time.Duration `yaml:"ttl_resync_interval"`
	RefreshAfterSend  bool          `yaml:"refresh_after_send"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		API: APIConfig{
			URL:      "http://localhost:3000",
			Protocol: ProtocolREST,
			Timeout:  10 * time.Second,
		},
		Realtime: RealtimeConfig{
			Driver:             DriverWebSocket,
			NATSURL:            "nats://127.0.0.1:4222",
			NATSSubjectPrefix:  "rooms",
			NATSStream:         "ROOM_EVENTS",
			RedisAddr:          "localhost:6379",
			RedisChannelPrefix: "room",
			WebSocketURL:       "ws://localhost:3000/api/realtime",
		},
		Session: SessionConfig{
			TTLResyncInterval: 30 * time.Second,
		},
		UsernameFile: defaultUsernameFile(),
		LogLevel:     "info",
	}
}

// Load reads .env, the YAML file named by CONFIG_FILE (if any) and the
// environment, in that order of increasing precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.API.URL = getEnv("ROOM_API_URL", c.API.URL)
	c.API.Protocol = getEnv("ROOM_API_PROTOCOL", c.API.Protocol)
	c.API.H2C = getEnvAsBool("ROOM_API_H2C", c.API.H2C)
	c.API.Token = getEnv("ROOM_API_TOKEN", c.API.Token)
	c.API.Timeout = getEnvAsDuration("ROOM_API_TIMEOUT", c.API.Timeout)

	c.Realtime.Driver = getEnv("REALTIME_DRIVER", c.Realtime.Driver)
	c.Realtime.NATSURL = getEnv("NATS_URL", c.Realtime.NATSURL)
	c.Realtime.NATSSubjectPrefix = getEnv("NATS_SUBJECT_PREFIX", c.Realtime.NATSSubjectPrefix)
	c.Realtime.NATSStream = getEnv("NATS_STREAM", c.Realtime.NATSStream)
	c.Realtime.RedisAddr = getEnv("REDIS_ADDR", c.Realtime.RedisAddr)
	c.Realtime.RedisPassword = getEnv("REDIS_PASSWORD", c.Realtime.RedisPassword)
	c.Realtime.RedisDB = getEnvAsInt("REDIS_DB", c.Realtime.RedisDB)
	c.Realtime.RedisChannelPrefix = getEnv("REDIS_CHANNEL_PREFIX", c.Realtime.RedisChannelPrefix)
	c.Realtime.WebSocketURL = getEnv("REALTIME_WS_URL", c.Realtime.WebSocketURL)

	c.Session.TTLResyncInterval = getEnvAsDuration("TTL_RESYNC_INTERVAL", c.Session.TTLResyncInterval)
	c.Session.RefreshAfterSend = getEnvAsBool("REFRESH_AFTER_SEND", c.Session.RefreshAfterSend)

	c.UsernameFile = getEnv("USERNAME_FILE", c.UsernameFile)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.API.Protocol {
	case ProtocolREST, ProtocolConnect:
	default:
		return fmt.Errorf("invalid api protocol %q: want %s or %s", c.API.Protocol, ProtocolREST, ProtocolConnect)
	}

	switch c.Realtime.Driver {
	case DriverNATS, DriverJetStream, DriverRedis, DriverWebSocket, DriverNone:
	default:
		return fmt.Errorf("invalid realtime driver %q", c.Realtime.Driver)
	}

	if c.API.URL == "" {
		return errors.New("room api url is required")
	}
	if c.Session.TTLResyncInterval < 0 {
		return fmt.Errorf("invalid ttl resync interval %s", c.Session.TTLResyncInterval)
	}
	return nil
}

func defaultUsernameFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".vanish_username.yaml"
	}
	return filepath.Join(dir, "vanish", "username.yaml")
}

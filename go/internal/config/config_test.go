package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ROOM_API_URL", "")
	t.Setenv("REALTIME_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", cfg.API.URL)
	assert.Equal(t, ProtocolREST, cfg.API.Protocol)
	assert.Equal(t, DriverWebSocket, cfg.Realtime.Driver)
	assert.Equal(t, 30*time.Second, cfg.Session.TTLResyncInterval)
	assert.False(t, cfg.Session.RefreshAfterSend)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vanish.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  url: http://rooms.internal:8080
  protocol: connect
  h2c: true
  timeout: 5s
realtime:
  driver: nats
  nats_subject_prefix: chat
session:
  ttl_resync_interval: 1m
log_level: debug
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("NATS_SUBJECT_PREFIX", "override")
	t.Setenv("REFRESH_AFTER_SEND", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://rooms.internal:8080", cfg.API.URL)
	assert.Equal(t, ProtocolConnect, cfg.API.Protocol)
	assert.True(t, cfg.API.H2C)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, DriverNATS, cfg.Realtime.Driver)
	assert.Equal(t, "override", cfg.Realtime.NATSSubjectPrefix)
	assert.Equal(t, "ROOM_EVENTS", cfg.Realtime.NATSStream)
	assert.Equal(t, time.Minute, cfg.Session.TTLResyncInterval)
	assert.True(t, cfg.Session.RefreshAfterSend)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("REALTIME_DRIVER", "carrier-pigeon")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid realtime driver")
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestEnvHelpersIgnoreGarbage(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	t.Setenv("ROOM_API_TIMEOUT", "soon")
	t.Setenv("ROOM_API_H2C", "maybe")

	assert.Equal(t, 3, getEnvAsInt("REDIS_DB", 3))
	assert.Equal(t, time.Second, getEnvAsDuration("ROOM_API_TIMEOUT", time.Second))
	assert.True(t, getEnvAsBool("ROOM_API_H2C", true))
}

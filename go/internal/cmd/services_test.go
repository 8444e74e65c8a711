package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/vanish/go/internal/config"
	"github.com/mcdev12/vanish/go/internal/models"
	"github.com/mcdev12/vanish/go/internal/realtime"
)

// Nothing listens on port 1.
const unreachableNATS = "nats://127.0.0.1:1"

func TestSetupServicesWithUnreachableNATS(t *testing.T) {
	cfg := config.Default()
	cfg.Realtime.Driver = config.DriverNATS
	cfg.Realtime.NATSURL = unreachableNATS

	services, err := setupServices(&cfg)
	require.NoError(t, err)
	defer services.Close()

	require.IsType(t, &realtime.NATSSource{}, services.Source)
	sub, err := services.Source.Subscribe(context.Background(), "room-1", models.AllEventKinds)
	require.NoError(t, err)
	assert.NoError(t, sub.Close())
}

func TestSetupServicesWithUnreachableJetStream(t *testing.T) {
	cfg := config.Default()
	cfg.Realtime.Driver = config.DriverJetStream
	cfg.Realtime.NATSURL = unreachableNATS

	services, err := setupServices(&cfg)
	require.NoError(t, err)
	defer services.Close()

	assert.IsType(t, &realtime.JetStreamSource{}, services.Source)
}

func TestSetupServicesFallsBackOnBadNATSURL(t *testing.T) {
	cfg := config.Default()
	cfg.Realtime.Driver = config.DriverNATS
	cfg.Realtime.NATSURL = "nats://[::1"

	services, err := setupServices(&cfg)
	require.NoError(t, err)
	defer services.Close()

	assert.Equal(t, realtime.NoopSource{}, services.Source)
}

func TestSetupServicesRejectsUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Realtime.Driver = "carrier-pigeon"

	_, err := setupServices(&cfg)
	assert.ErrorContains(t, err, "unsupported realtime driver")
}

func TestRunReturnsErrors(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	var out bytes.Buffer
	err := run("  ", strings.NewReader(""), &out)
	assert.EqualError(t, err, "room id is required")

	t.Setenv("REALTIME_DRIVER", "carrier-pigeon")
	err = run("room-1", strings.NewReader(""), &out)
	assert.ErrorContains(t, err, "load configuration")
	assert.Empty(t, out.String())
}

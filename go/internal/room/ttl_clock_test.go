package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/vanish/go/internal/models"
)

func sample(ttl int) models.TTLSample {
	return models.TTLSample{ObservedAt: time.Now(), TTLSeconds: ttl}
}

func TestTTLClockInertUntilSynced(t *testing.T) {
	fired := 0
	c := NewTTLClock(func() { fired++ })

	c.Tick()
	c.Tick()

	remaining, known := c.Remaining()
	assert.False(t, known)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, 0, fired)
}

func TestTTLClockExpiresExactlyOnce(t *testing.T) {
	fired := 0
	c := NewTTLClock(func() { fired++ })
	require.NoError(t, c.Sync(sample(3)))

	var seen []int
	for i := 0; i < 6; i++ {
		c.Tick()
		remaining, _ := c.Remaining()
		seen = append(seen, remaining)
	}

	assert.Equal(t, []int{2, 1, 0, 0, 0, 0}, seen)
	assert.Equal(t, 1, fired)
}

func TestTTLClockZeroSampleDoesNotFire(t *testing.T) {
	fired := 0
	c := NewTTLClock(func() { fired++ })
	require.NoError(t, c.Sync(sample(0)))

	c.Tick()

	remaining, known := c.Remaining()
	assert.True(t, known)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, 0, fired)
}

func TestTTLClockSyncReplacesCountdown(t *testing.T) {
	c := NewTTLClock(nil)
	require.NoError(t, c.Sync(sample(10)))
	c.Tick()
	c.Tick()

	require.NoError(t, c.Sync(sample(30)))
	remaining, _ := c.Remaining()
	assert.Equal(t, 30, remaining)

	s, ok := c.Sample()
	assert.True(t, ok)
	assert.Equal(t, 30, s.TTLSeconds)
}

func TestTTLClockRejectsNegativeSample(t *testing.T) {
	c := NewTTLClock(nil)
	require.NoError(t, c.Sync(sample(5)))

	err := c.Sync(sample(-2))
	assert.ErrorIs(t, err, ErrInvalidTTL)

	remaining, known := c.Remaining()
	assert.True(t, known)
	assert.Equal(t, 5, remaining)
}

package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "--:--", FormatCountdown(0, false))
	assert.Equal(t, "0:00", FormatCountdown(0, true))
	assert.Equal(t, "0:09", FormatCountdown(9, true))
	assert.Equal(t, "1:05", FormatCountdown(65, true))
	assert.Equal(t, "10:00", FormatCountdown(600, true))
}

func TestUrgent(t *testing.T) {
	assert.False(t, Urgent(10, false))
	assert.True(t, Urgent(59, true))
	assert.False(t, Urgent(60, true))
}

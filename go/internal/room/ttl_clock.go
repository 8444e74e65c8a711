package room

import (
	"fmt"
	"sync"

	"github.com/mcdev12/vanish/go/internal/models"
)

// TTLClock turns server-reported TTL samples into a locally ticking countdown.
//
// The server deadline is authoritative: Sync always replaces the countdown,
// it never averages against the previous value. Tick is driven by the caller
// once per second and is inert until the first sample arrives.
type TTLClock struct {
	mu        sync.Mutex
	sample    models.TTLSample
	remaining int
	known     bool
	fired     bool

	onExpire func()
}

// NewTTLClock creates a clock with no sample. onExpire may be nil.
func NewTTLClock(onExpire func()) *TTLClock {
	return &TTLClock{onExpire: onExpire}
}

// Sync installs a new baseline, discarding any countdown in progress.
func (c *TTLClock) Sync(sample models.TTLSample) error {
	if sample.TTLSeconds < 0 {
		return fmt.Errorf("sync ttl %d: %w", sample.TTLSeconds, ErrInvalidTTL)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sample = sample
	c.remaining = sample.TTLSeconds
	c.known = true
	return nil
}

// Tick decrements the countdown by one second, floored at zero. The expire
// callback runs exactly once, on the first 1 -> 0 transition.
func (c *TTLClock) Tick() {
	c.mu.Lock()
	if !c.known || c.remaining == 0 {
		c.mu.Unlock()
		return
	}

	c.remaining--
	fire := c.remaining == 0 && !c.fired
	if fire {
		c.fired = true
	}
	c.mu.Unlock()

	if fire && c.onExpire != nil {
		c.onExpire()
	}
}

// Remaining returns the seconds left and whether any sample has been seen.
func (c *TTLClock) Remaining() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining, c.known
}

// Sample returns the last installed sample.
func (c *TTLClock) Sample() (models.TTLSample, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sample, c.known
}

package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant handed out by a LogClock.
var Epoch = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

// LogClock hands out monotonically increasing log timestamps for tests.
//
// Each call to Next advances by the configured step, so fixture lines built
// from the same clock sort in construction order. Reset rewinds to Epoch,
// which lets a scenario be rebuilt with identical timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type LogClock struct {
	mu   sync.Mutex
	step time.Duration
	now  time.Time
}

// NewLogClock creates a clock positioned at Epoch. A non-positive step
// defaults to one second.
//
// The first call to Next() returns Epoch+step.
func NewLogClock(step time.Duration) *LogClock {
	if step <= 0 {
		step = time.Second
	}
	return &LogClock{step: step, now: Epoch}
}

// Next advances the clock by one step and returns the new instant.
func (c *LogClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

// Current returns the current instant without advancing.
func (c *LogClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d without returning an instant.
func (c *LogClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Reset rewinds the clock to Epoch.
func (c *LogClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = Epoch
}

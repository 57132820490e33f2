package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogClock_StartsAtEpoch(t *testing.T) {
	clock := NewLogClock(time.Second)
	assert.Equal(t, Epoch, clock.Current())
}

func TestLogClock_NextAdvancesByStep(t *testing.T) {
	clock := NewLogClock(time.Minute)

	assert.Equal(t, Epoch.Add(time.Minute), clock.Next())
	assert.Equal(t, Epoch.Add(2*time.Minute), clock.Next())
	assert.Equal(t, Epoch.Add(2*time.Minute), clock.Current())
}

func TestLogClock_DefaultStep(t *testing.T) {
	clock := NewLogClock(0)
	assert.Equal(t, Epoch.Add(time.Second), clock.Next())
}

func TestLogClock_AdvanceAndReset(t *testing.T) {
	clock := NewLogClock(time.Second)

	clock.Advance(time.Hour)
	assert.Equal(t, Epoch.Add(time.Hour), clock.Current())

	clock.Reset()
	assert.Equal(t, Epoch, clock.Current())
	assert.Equal(t, Epoch.Add(time.Second), clock.Next())
}

func TestLogClock_ThreadSafe(t *testing.T) {
	clock := NewLogClock(time.Millisecond)
	const numGoroutines = 50
	const callsPerGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	seen := make(chan time.Time, numGoroutines*callsPerGoroutine)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				seen <- clock.Next()
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[time.Time]bool)
	for ts := range seen {
		require.False(t, unique[ts], "duplicate instant %v", ts)
		unique[ts] = true
	}
	assert.Len(t, unique, numGoroutines*callsPerGoroutine)
	assert.Equal(t, Epoch.Add(numGoroutines*callsPerGoroutine*time.Millisecond), clock.Current())
}

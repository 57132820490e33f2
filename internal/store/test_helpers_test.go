package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ctlog/internal/calltarget"
	"github.com/roach88/ctlog/internal/correlate"
	"github.com/roach88/ctlog/internal/event"
	"github.com/roach88/ctlog/internal/parse"
	"github.com/roach88/ctlog/internal/testutil"
)

// createTestStore creates a new in-memory store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sampleTargets correlates testutil.SampleLog.
func sampleTargets(t *testing.T) []*calltarget.CallTarget {
	t.Helper()
	return correlateLines(t, testutil.SampleLog())
}

// correlateLines parses and correlates lines, skipping rejected ones.
func correlateLines(t *testing.T, lines []string) []*calltarget.CallTarget {
	t.Helper()
	p := parse.New(parse.Options{})
	var events []event.Event
	for _, line := range lines {
		if ev, err := p.ParseLine(line); err == nil && ev != nil {
			events = append(events, ev)
		}
	}
	res, err := correlate.Build(events)
	require.NoError(t, err)
	return res.Registry.Targets()
}

// createSampleStore indexes testutil.SampleLog.
func createSampleStore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	require.NoError(t, s.WriteTargets(context.Background(), sampleTargets(t)))
	return s
}

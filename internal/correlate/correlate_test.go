package correlate

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ctlog/internal/calltarget"
	"github.com/roach88/ctlog/internal/event"
	"github.com/roach88/ctlog/internal/parse"
	"github.com/roach88/ctlog/internal/testutil"
)

var t0 = testutil.Epoch

func hdr(id int64, name string, at time.Time) event.Header {
	return event.Header{
		Line:     fmt.Sprintf("line for %d", id),
		EngineID: 1,
		TargetID: id,
		Name:     name,
		Source:   name + ".js",
		At:       at,
	}
}

func done(id int64, name string, compID int64) *event.Done {
	return &event.Done{Header: hdr(id, name, t0), CompID: compID}
}

func TestBuild_EvictionJoin(t *testing.T) {
	events := []event.Event{
		done(1, "A", 101),
		done(2, "B", 202),
		&event.CacheFlushing{CompID: 202, At: t0.Add(time.Second)},
	}

	res, err := Build(events)
	require.NoError(t, err)

	a, ok := res.Registry.Get(1)
	require.True(t, ok)
	b, ok := res.Registry.Get(2)
	require.True(t, ok)

	assert.Empty(t, a.Evictions())
	require.Len(t, b.Evictions(), 1)
	assert.Equal(t, int64(202), b.Evictions()[0].CompID)
	assert.Equal(t, 1, res.Stats.EvictionsAttributed)
}

func TestBuild_EvictionMissIsDropped(t *testing.T) {
	events := []event.Event{
		done(1, "A", 101),
		&event.CacheFlushing{CompID: 999},
	}

	res, err := Build(events)
	require.NoError(t, err)

	a, _ := res.Registry.Get(1)
	assert.Empty(t, a.Evictions())
	assert.Equal(t, 1, res.Stats.EvictionsDropped)
}

func TestBuild_TransferNameMissLeavesTargetsUnchanged(t *testing.T) {
	events := []event.Event{
		done(1, "A", 101),
		done(2, "B", 202),
		&event.TransferToInterpreter{Name: "Nobody", Source: "x.js", At: t0},
	}

	res, err := Build(events)
	require.NoError(t, err)

	for _, ct := range res.Registry.Targets() {
		assert.Empty(t, ct.Transfers(), "target %d", ct.ID)
	}
	assert.Equal(t, 1, res.Stats.TransfersDropped)
}

func TestBuild_TransferNameHit(t *testing.T) {
	tti := &event.TransferToInterpreter{Name: "B", At: t0}
	res, err := Build([]event.Event{done(1, "A", 101), done(2, "B", 202), tti})
	require.NoError(t, err)

	b, _ := res.Registry.Get(2)
	assert.Equal(t, []*event.TransferToInterpreter{tti}, b.Transfers())
	assert.Equal(t, 1, res.Stats.TransfersAttributed)
}

func TestBuild_NameJoinIsNFCNormalized(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"

	res, err := Build([]event.Event{
		done(1, composed, 101),
		&event.TransferToInterpreter{Name: decomposed, At: t0},
	})
	require.NoError(t, err)

	a, _ := res.Registry.Get(1)
	assert.Len(t, a.Transfers(), 1)
}

func TestBuild_FirstEventSeedsIdentity(t *testing.T) {
	res, err := Build([]event.Event{
		&event.Enqueued{Header: hdr(1, "First", t0)},
		&event.Start{Header: hdr(1, "Renamed", t0.Add(time.Second))},
	})
	require.NoError(t, err)

	ct, _ := res.Registry.Get(1)
	assert.Equal(t, "First", ct.Name)
	assert.Equal(t, "First.js", ct.Source)
	assert.Len(t, ct.Enqueues(), 1)
	assert.Len(t, ct.Starts(), 1)
}

func TestBuild_DuplicateNamesLastIDWins(t *testing.T) {
	tti := &event.TransferToInterpreter{Name: "Shared", At: t0}
	res, err := Build([]event.Event{
		done(5, "Shared", 1),
		done(2, "Shared", 2),
		tti,
	})
	require.NoError(t, err)

	low, _ := res.Registry.Get(2)
	high, _ := res.Registry.Get(5)
	assert.Empty(t, low.Transfers())
	assert.Len(t, high.Transfers(), 1)
	assert.Equal(t, 1, res.Stats.NameCollisions)

	id, ok := res.Index.TargetForName("Shared")
	require.True(t, ok)
	assert.Equal(t, int64(5), id)
}

func TestBuild_RepeatedCompIDLastWriterWins(t *testing.T) {
	res, err := Build([]event.Event{
		done(1, "A", 300),
		done(2, "B", 300),
		&event.CacheFlushing{CompID: 300},
	})
	require.NoError(t, err)

	a, _ := res.Registry.Get(1)
	b, _ := res.Registry.Get(2)
	assert.Empty(t, a.Evictions())
	assert.Len(t, b.Evictions(), 1)
	assert.Equal(t, 1, res.Stats.CompIDCollisions)
	assert.Equal(t, 1, res.Index.CompIDs())
}

func TestBuild_RepeatedCompIDSameTargetIsNotACollision(t *testing.T) {
	res, err := Build([]event.Event{done(1, "A", 300), done(1, "A", 300)})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.CompIDCollisions)
}

func TestBucket_MissingTargetIsConsistencyError(t *testing.T) {
	reg := calltarget.NewRegistry()
	err := bucket(reg, []event.EngineEvent{done(7, "Ghost", 1)})

	require.Error(t, err)
	assert.True(t, IsConsistencyError(err))
	assert.Contains(t, err.Error(), ErrCodeInternalConsistency)

	var ce *ConsistencyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, int64(7), ce.TargetID)
}

func TestBuild_SampleLog(t *testing.T) {
	p := parse.New(parse.Options{})
	var events []event.Event
	for _, line := range testutil.SampleLog() {
		ev, err := p.ParseLine(line)
		if err != nil || ev == nil {
			continue
		}
		events = append(events, ev)
	}

	res, err := Build(events)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Registry.Len())
	assert.Equal(t, 2, res.Stats.EvictionsAttributed)
	assert.Equal(t, 1, res.Stats.EvictionsDropped)
	assert.Equal(t, 1, res.Stats.TransfersAttributed)
	assert.Equal(t, 1, res.Stats.TransfersDropped)

	foo, _ := res.Registry.Get(testutil.FooBar.ID)
	assert.Equal(t, 2, foo.Count(event.KindDone))
	assert.Equal(t, 1, foo.Count(event.KindCacheFlushing))
	assert.Equal(t, int64(3000), foo.ExecCount())
	assert.Len(t, foo.AllEventsSorted(), 10)
}

package report

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ctlog/internal/calltarget"
	"github.com/roach88/ctlog/internal/correlate"
	"github.com/roach88/ctlog/internal/event"
	"github.com/roach88/ctlog/internal/parse"
	"github.com/roach88/ctlog/internal/store"
	"github.com/roach88/ctlog/internal/testutil"
)

func sampleTargets(t *testing.T) []*calltarget.CallTarget {
	t.Helper()
	p := parse.New(parse.Options{})
	var events []event.Event
	for _, line := range testutil.SampleLog() {
		if ev, err := p.ParseLine(line); err == nil && ev != nil {
			events = append(events, ev)
		}
	}
	res, err := correlate.Build(events)
	require.NoError(t, err)
	return res.Registry.Targets()
}

func target(t *testing.T, targets []*calltarget.CallTarget, id int64) *calltarget.CallTarget {
	t.Helper()
	for _, ct := range targets {
		if ct.ID == id {
			return ct
		}
	}
	t.Fatalf("no target %d", id)
	return nil
}

// assertGolden renders with write and compares against
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/report -update
func assertGolden(t *testing.T, name string, write func(w *Writer)) {
	t.Helper()
	var buf bytes.Buffer
	write(NewWriter(&buf))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, buf.Bytes())
}

func TestGolden_Summary(t *testing.T) {
	s := Stats(sampleTargets(t))
	assertGolden(t, "summary", func(w *Writer) { w.WriteSummary(s) })
}

func TestGolden_Histogram(t *testing.T) {
	rows := Histogram(sampleTargets(t), 10)
	assertGolden(t, "histogram", func(w *Writer) { w.WriteRows(rows) })
}

func TestGolden_HotspotsTop2(t *testing.T) {
	rows := Hotspots(sampleTargets(t), 2)
	assertGolden(t, "hotspots_top2", func(w *Writer) { w.WriteRows(rows) })
}

func TestGolden_TargetDetails(t *testing.T) {
	d := TargetDetails(target(t, sampleTargets(t), testutil.FooBar.ID))
	assertGolden(t, "target_foo", func(w *Writer) { w.WriteDetails(d) })
}

func TestGolden_CompRateHour(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx)
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.WriteTargets(ctx, sampleTargets(t)))

	buckets, err := st.CompRate(ctx, store.Hour)
	require.NoError(t, err)
	assertGolden(t, "comp_rate_hour", func(w *Writer) { w.WriteCompRate(buckets) })
}

func TestGolden_Pareto(t *testing.T) {
	rows := Pareto(sampleTargets(t))
	assertGolden(t, "pareto", func(w *Writer) { w.WritePareto(rows) })
}

func TestStats_Totals(t *testing.T) {
	s := Stats(sampleTargets(t))

	assert.Equal(t, Summary{
		Targets:               3,
		Compilations:          3,
		Invalidations:         1,
		Deoptimizations:       1,
		Failures:              1,
		Evictions:             2,
		Transfers:             1,
		MaxCompilationTargets: 1,
		ThrashingTargets:      1,
		CodeBytes:             13312,
		CompileTimeMs:         400,
	}, s)
	assert.InDelta(t, 33.33, s.MaxCompilationPercent(), 0.01)
}

func TestStats_Empty(t *testing.T) {
	s := Stats(nil)
	assert.Equal(t, Summary{}, s)
	assert.Equal(t, 0.0, s.MaxCompilationPercent())
}

func TestThrashing(t *testing.T) {
	t0 := testutil.Epoch
	h := func(at time.Time) event.Header { return event.Header{TargetID: 1, At: at} }

	t.Run("no dones", func(t *testing.T) {
		ct := calltarget.New(1, "A", "a.js")
		ct.AppendEviction(&event.CacheFlushing{CompID: 1, At: t0})
		assert.False(t, Thrashing(ct))
	})

	t.Run("every install evicted", func(t *testing.T) {
		ct := calltarget.New(1, "A", "a.js")
		ct.AppendEngine(&event.Done{Header: h(t0), CompID: 1})
		ct.AppendEviction(&event.CacheFlushing{CompID: 1, At: t0.Add(time.Second)})
		ct.AppendEngine(&event.Done{Header: h(t0.Add(2 * time.Second)), CompID: 2})
		ct.AppendEviction(&event.CacheFlushing{CompID: 2, At: t0.Add(3 * time.Second)})
		assert.True(t, Thrashing(ct))
	})

	t.Run("evictions after other events", func(t *testing.T) {
		ct := calltarget.New(1, "A", "a.js")
		ct.AppendEngine(&event.Done{Header: h(t0), CompID: 1})
		ct.AppendEngine(&event.Deoptimization{Header: h(t0.Add(time.Second))})
		ct.AppendEviction(&event.CacheFlushing{CompID: 1, At: t0.Add(2 * time.Second)})
		assert.False(t, Thrashing(ct))
	})
}

func TestHistogram_TopAndTieBreak(t *testing.T) {
	a := calltarget.New(2, "A", "a.js")
	b := calltarget.New(1, "B", "b.js")

	rows := Histogram([]*calltarget.CallTarget{a, b}, 0)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].ID)

	rows = Histogram([]*calltarget.CallTarget{a, b}, 1)
	assert.Len(t, rows, 1)
}

func TestHotspots_FewerCompilationsFirstOnEqualCount(t *testing.T) {
	t0 := testutil.Epoch
	busy := calltarget.New(1, "Busy", "")
	busy.AppendEngine(&event.Enqueued{Header: event.Header{TargetID: 1, At: t0}, ExecCount: 10})
	busy.AppendEngine(&event.Done{Header: event.Header{TargetID: 1, At: t0}})
	idle := calltarget.New(2, "Idle", "")
	idle.AppendEngine(&event.Enqueued{Header: event.Header{TargetID: 2, At: t0}, ExecCount: 10})

	rows := Hotspots([]*calltarget.CallTarget{busy, idle}, 0)
	assert.Equal(t, []int64{2, 1}, []int64{rows[0].ID, rows[1].ID})
}

func TestTargetDetails_NeverCompiled(t *testing.T) {
	d := TargetDetails(target(t, sampleTargets(t), testutil.LonelyFn.ID))

	assert.Equal(t, 0, d.Compilations)
	assert.Equal(t, int64(0), d.CodeBytes)
	require.Len(t, d.Timeline, 2)
	assert.Equal(t, event.KindEnqueued, d.Timeline[0].Kind)
	assert.Equal(t, event.KindDequeued, d.Timeline[1].Kind)
	assert.Equal(t, "Target inlined", d.Timeline[1].Notes)
}

func TestTargetDetails_JSONOmitsAbsentFields(t *testing.T) {
	d := TargetDetails(target(t, sampleTargets(t), testutil.FooBar.ID))

	data, err := json.Marshal(d.Timeline[7])
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"Deoptimization","timestamp":"2024-01-01T10:02:00Z"}`, string(data))
}

func TestTargetDetails_SameInstantEnqueues(t *testing.T) {
	t0 := testutil.Epoch
	ct := calltarget.New(1, "A", "")
	ct.AppendEngine(&event.Enqueued{Header: event.Header{TargetID: 1, At: t0}, ExecCount: 1})
	ct.AppendEngine(&event.Enqueued{Header: event.Header{TargetID: 1, At: t0}, ExecCount: 5})

	d := TargetDetails(ct)
	assert.Equal(t, "execution rate 4/0.000s", d.Timeline[1].Notes)
}

func TestPareto_ClampsToLastBucket(t *testing.T) {
	ct := calltarget.New(1, "A", "")
	for i := 0; i < ParetoMaxFrequency+5; i++ {
		ct.AppendEngine(&event.Done{Header: event.Header{TargetID: 1}})
	}

	rows := Pareto([]*calltarget.CallTarget{ct})
	require.Len(t, rows, ParetoMaxFrequency)
	assert.Equal(t, 1, rows[ParetoMaxFrequency-1].Count)
	assert.InDelta(t, 100.0, rows[ParetoMaxFrequency-1].Accumulated, 1e-9)
}

func TestPareto_NoTargets(t *testing.T) {
	rows := Pareto(nil)
	require.Len(t, rows, ParetoMaxFrequency)
	assert.Equal(t, 0.0, rows[0].Percent)
}

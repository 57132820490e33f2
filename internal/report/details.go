package report

import (
	"fmt"
	"time"

	"github.com/roach88/ctlog/internal/calltarget"
	"github.com/roach88/ctlog/internal/event"
)

// TimelineEntry is one event of a target's timeline with the fields worth
// showing for its kind. Fields the kind does not carry are omitted.
type TimelineEntry struct {
	Kind      event.Kind `json:"kind"`
	At        time.Time  `json:"timestamp"`
	Tier      *int       `json:"tier,omitempty"`
	ExecCount *int64     `json:"exec_count,omitempty"`
	CompID    *int64     `json:"comp_id,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

// Details is the per-target report: totals plus the annotated timeline.
type Details struct {
	Row
	Timeline []TimelineEntry `json:"timeline"`
}

// TargetDetails builds the timeline of ct. Done events whose compilation
// was later evicted note the time to eviction; Enqueued events after the
// first note the execution rate since the previous enqueue.
func TargetDetails(ct *calltarget.CallTarget) Details {
	events := ct.AllEventsSorted()

	flushed := make(map[int64]*event.CacheFlushing)
	for _, e := range events {
		if f, ok := e.(*event.CacheFlushing); ok {
			flushed[f.CompID] = f
		}
	}

	d := Details{Row: RowOf(ct), Timeline: make([]TimelineEntry, 0, len(events))}
	var prevEnqueue *event.Enqueued
	for _, e := range events {
		entry := TimelineEntry{Kind: e.Kind(), At: e.Timestamp()}
		if v, ok := event.TierOf(e); ok {
			entry.Tier = &v
		}
		if v, ok := event.CompIDOf(e); ok {
			entry.CompID = &v
		}

		switch v := e.(type) {
		case *event.Enqueued:
			count := v.ExecCount
			entry.ExecCount = &count
			if prevEnqueue != nil {
				entry.Notes = executionRate(prevEnqueue, v)
			}
			prevEnqueue = v
		case *event.Done:
			if f, ok := flushed[v.CompID]; ok {
				entry.Notes = "evicted after " + Seconds(f.At.Sub(v.At).Milliseconds()) + "s"
			}
		default:
			if reason, ok := event.ReasonOf(e); ok {
				entry.Notes = reason
			}
		}
		d.Timeline = append(d.Timeline, entry)
	}
	return d
}

func executionRate(prev, cur *event.Enqueued) string {
	delta := cur.ExecCount - prev.ExecCount
	elapsed := cur.At.Sub(prev.At).Milliseconds()
	if elapsed <= 0 {
		return fmt.Sprintf("execution rate %d/%ss", delta, Seconds(elapsed))
	}
	return fmt.Sprintf("execution rate %d/%ss = %s/s", delta, Seconds(elapsed), PerSecond(delta, elapsed))
}

// Package calltarget holds the per-target aggregation of parsed events.
//
// A CallTarget is created once per engine target id and only grows: the
// correlate package appends events to the bucket of their kind. Readers get
// copies of the buckets, so reporting code cannot reorder or mutate a
// target's history.
package calltarget

import (
	"slices"
	"sort"

	"github.com/roach88/ctlog/internal/event"
)

// CallTarget is one logical unit of compiled code keyed by its engine
// target id.
type CallTarget struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Source string `json:"source"`

	starts    []*event.Start
	dones     []*event.Done
	deopts    []*event.Deoptimization
	invals    []*event.Invalidation
	enqueues  []*event.Enqueued
	dequeues  []*event.Dequeued
	failures  []*event.Failed
	ttis      []*event.TransferToInterpreter
	evictions []*event.CacheFlushing
}

// New creates an empty call target.
func New(id int64, name, source string) *CallTarget {
	return &CallTarget{ID: id, Name: name, Source: source}
}

// AppendEngine adds an engine-stream event to the bucket of its kind. It
// does not check that the event's target id matches.
func (ct *CallTarget) AppendEngine(e event.EngineEvent) {
	switch v := e.(type) {
	case *event.Start:
		ct.starts = append(ct.starts, v)
	case *event.Done:
		ct.dones = append(ct.dones, v)
	case *event.Deoptimization:
		ct.deopts = append(ct.deopts, v)
	case *event.Invalidation:
		ct.invals = append(ct.invals, v)
	case *event.Enqueued:
		ct.enqueues = append(ct.enqueues, v)
	case *event.Dequeued:
		ct.dequeues = append(ct.dequeues, v)
	case *event.Failed:
		ct.failures = append(ct.failures, v)
	}
}

// AppendEviction records a code-cache eviction of one of this target's
// compilations.
func (ct *CallTarget) AppendEviction(e *event.CacheFlushing) {
	ct.evictions = append(ct.evictions, e)
}

// AppendTransfer records an interpreter fallback attributed by name.
func (ct *CallTarget) AppendTransfer(e *event.TransferToInterpreter) {
	ct.ttis = append(ct.ttis, e)
}

// Bucket accessors return copies in append order.

func (ct *CallTarget) Starts() []*event.Start {
	return slices.Clone(ct.starts)
}

func (ct *CallTarget) Dones() []*event.Done {
	return slices.Clone(ct.dones)
}

func (ct *CallTarget) Deopts() []*event.Deoptimization {
	return slices.Clone(ct.deopts)
}

func (ct *CallTarget) Invals() []*event.Invalidation {
	return slices.Clone(ct.invals)
}

func (ct *CallTarget) Enqueues() []*event.Enqueued {
	return slices.Clone(ct.enqueues)
}

func (ct *CallTarget) Dequeues() []*event.Dequeued {
	return slices.Clone(ct.dequeues)
}

func (ct *CallTarget) Failures() []*event.Failed {
	return slices.Clone(ct.failures)
}

func (ct *CallTarget) Transfers() []*event.TransferToInterpreter {
	return slices.Clone(ct.ttis)
}

func (ct *CallTarget) Evictions() []*event.CacheFlushing {
	return slices.Clone(ct.evictions)
}

// Count returns the number of events of kind k.
func (ct *CallTarget) Count(k event.Kind) int {
	switch k {
	case event.KindStart:
		return len(ct.starts)
	case event.KindDone:
		return len(ct.dones)
	case event.KindDeoptimization:
		return len(ct.deopts)
	case event.KindInvalidation:
		return len(ct.invals)
	case event.KindEnqueued:
		return len(ct.enqueues)
	case event.KindDequeued:
		return len(ct.dequeues)
	case event.KindFailed:
		return len(ct.failures)
	case event.KindTransferToInterpreter:
		return len(ct.ttis)
	case event.KindCacheFlushing:
		return len(ct.evictions)
	}
	return 0
}

// ExecCount returns the execution count of the latest Enqueued event, or 0
// when the target was never enqueued. On equal timestamps the earlier
// appended event wins.
func (ct *CallTarget) ExecCount() int64 {
	var latest *event.Enqueued
	for _, e := range ct.enqueues {
		if latest == nil || e.At.After(latest.At) {
			latest = e
		}
	}
	if latest == nil {
		return 0
	}
	return latest.ExecCount
}

// TotalCompileTimeMs sums the compile time of all Done events.
func (ct *CallTarget) TotalCompileTimeMs() int64 {
	var total int64
	for _, d := range ct.dones {
		total += d.CompileTimeMs
	}
	return total
}

// TotalCodeSize sums the produced code size of all Done events.
func (ct *CallTarget) TotalCodeSize() int64 {
	var total int64
	for _, d := range ct.dones {
		total += d.CodeSize
	}
	return total
}

// tieRank orders events that share a timestamp: the log's clock is coarser
// than the lifecycle, and a compilation is always enqueued, then started,
// then done.
func tieRank(k event.Kind) int {
	switch k {
	case event.KindEnqueued:
		return 0
	case event.KindStart:
		return 1
	case event.KindDone:
		return 2
	default:
		return 3
	}
}

// AllEventsSorted returns every event of the target ordered by timestamp.
// Ties are broken by Enqueued < Start < Done < others; remaining ties keep
// bucket order (starts, dones, deopts, invals, transfers, failures,
// evictions, enqueues, dequeues), then append order.
func (ct *CallTarget) AllEventsSorted() []event.Event {
	all := make([]event.Event, 0, ct.Len())
	for _, e := range ct.starts {
		all = append(all, e)
	}
	for _, e := range ct.dones {
		all = append(all, e)
	}
	for _, e := range ct.deopts {
		all = append(all, e)
	}
	for _, e := range ct.invals {
		all = append(all, e)
	}
	for _, e := range ct.ttis {
		all = append(all, e)
	}
	for _, e := range ct.failures {
		all = append(all, e)
	}
	for _, e := range ct.evictions {
		all = append(all, e)
	}
	for _, e := range ct.enqueues {
		all = append(all, e)
	}
	for _, e := range ct.dequeues {
		all = append(all, e)
	}

	sort.SliceStable(all, func(i, j int) bool {
		ti, tj := all[i].Timestamp(), all[j].Timestamp()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return tieRank(all[i].Kind()) < tieRank(all[j].Kind())
	})
	return all
}

// Len returns the total number of events attributed to the target.
func (ct *CallTarget) Len() int {
	return len(ct.starts) + len(ct.dones) + len(ct.deopts) + len(ct.invals) +
		len(ct.enqueues) + len(ct.dequeues) + len(ct.failures) + len(ct.ttis) +
		len(ct.evictions)
}

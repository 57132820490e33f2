// Package correlate groups parsed events into call targets.
//
// Build runs four phases over the complete event list:
//
//  1. entity construction: the first engine event for a target id creates
//     the call target with that event's name and source
//  2. bucketing: every engine event is appended to its call target
//  3. compilation-id join: code-cache evictions are attributed through the
//     compilation ids of Done events
//  4. name join: interpreter fallbacks are attributed by call target name
//
// Joins that find no owner drop the event; rolling logs routinely
// reference compilations outside the captured window. Drops are counted in
// Stats.
package correlate

import (
	"github.com/roach88/ctlog/internal/calltarget"
	"github.com/roach88/ctlog/internal/event"
)

// Stats counts what the joins could not attribute unambiguously.
type Stats struct {
	Targets int `json:"targets"`

	// CompIDCollisions counts Done events whose compilation id was already
	// owned by a different target.
	CompIDCollisions int `json:"comp_id_collisions"`

	// NameCollisions counts call targets sharing a name with a target of
	// lower id.
	NameCollisions int `json:"name_collisions"`

	EvictionsAttributed int `json:"evictions_attributed"`
	EvictionsDropped    int `json:"evictions_dropped"`
	TransfersAttributed int `json:"transfers_attributed"`
	TransfersDropped    int `json:"transfers_dropped"`
}

// Result is the output of Build.
type Result struct {
	Registry *calltarget.Registry
	Index    *Index
	Stats    Stats
}

// Build correlates events. The only error it returns is a
// *ConsistencyError.
func Build(events []event.Event) (*Result, error) {
	var (
		engine    []event.EngineEvent
		flushes   []*event.CacheFlushing
		transfers []*event.TransferToInterpreter
	)
	for _, e := range events {
		switch v := e.(type) {
		case event.EngineEvent:
			engine = append(engine, v)
		case *event.CacheFlushing:
			flushes = append(flushes, v)
		case *event.TransferToInterpreter:
			transfers = append(transfers, v)
		}
	}

	res := &Result{Registry: calltarget.NewRegistry(), Index: newIndex()}

	construct(res.Registry, engine)
	if err := bucket(res.Registry, engine); err != nil {
		return nil, err
	}
	res.joinEvictions(engine, flushes)
	res.joinTransfers(transfers)

	res.Stats.Targets = res.Registry.Len()
	return res, nil
}

func construct(reg *calltarget.Registry, engine []event.EngineEvent) {
	for _, e := range engine {
		h := e.EngineHeader()
		reg.Ensure(h.TargetID, h.Name, h.Source)
	}
}

func bucket(reg *calltarget.Registry, engine []event.EngineEvent) error {
	for _, e := range engine {
		h := e.EngineHeader()
		ct, ok := reg.Get(h.TargetID)
		if !ok {
			return &ConsistencyError{TargetID: h.TargetID, Line: h.Line}
		}
		ct.AppendEngine(e)
	}
	return nil
}

func (r *Result) joinEvictions(engine []event.EngineEvent, flushes []*event.CacheFlushing) {
	for _, e := range engine {
		if d, ok := e.(*event.Done); ok && r.Index.addDone(d) {
			r.Stats.CompIDCollisions++
		}
	}
	for _, f := range flushes {
		id, ok := r.Index.TargetForCompID(f.CompID)
		if !ok {
			r.Stats.EvictionsDropped++
			continue
		}
		ct, _ := r.Registry.Get(id)
		ct.AppendEviction(f)
		r.Stats.EvictionsAttributed++
	}
}

func (r *Result) joinTransfers(transfers []*event.TransferToInterpreter) {
	for _, ct := range r.Registry.Targets() {
		if r.Index.addTarget(ct) {
			r.Stats.NameCollisions++
		}
	}
	for _, t := range transfers {
		id, ok := r.Index.TargetForName(t.Name)
		if !ok {
			r.Stats.TransfersDropped++
			continue
		}
		ct, _ := r.Registry.Get(id)
		ct.AppendTransfer(t)
		r.Stats.TransfersAttributed++
	}
}

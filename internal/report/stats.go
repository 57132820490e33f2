package report

import (
	"strings"

	"github.com/roach88/ctlog/internal/calltarget"
	"github.com/roach88/ctlog/internal/event"
)

// maxCompilationReason marks failures caused by the engine's per-target
// compilation limit.
const maxCompilationReason = "Maximum compilation"

// thrashingRatio is the share of a target's compilations that must be
// evicted right after being installed (or after another eviction) for the
// target to count as thrashing the code cache.
const thrashingRatio = 0.9

// Summary holds whole-log totals.
type Summary struct {
	Targets         int `json:"targets"`
	Compilations    int `json:"compilations"`
	Invalidations   int `json:"invalidations"`
	Deoptimizations int `json:"deoptimizations"`
	Failures        int `json:"failures"`
	Evictions       int `json:"evictions"`
	Transfers       int `json:"transfers"`

	// MaxCompilationTargets counts targets with at least one failure due to
	// the compilation limit.
	MaxCompilationTargets int `json:"max_compilation_targets"`

	// ThrashingTargets counts MaxCompilationTargets whose evictions follow
	// installs for at least 90% of their compilations.
	ThrashingTargets int `json:"thrashing_targets"`

	CodeBytes     int64 `json:"code_bytes"`
	CompileTimeMs int64 `json:"compile_time_ms"`
}

// MaxCompilationPercent returns MaxCompilationTargets as a percentage of
// all targets.
func (s Summary) MaxCompilationPercent() float64 {
	if s.Targets == 0 {
		return 0
	}
	return float64(s.MaxCompilationTargets) / float64(s.Targets) * 100
}

// Stats totals targets.
func Stats(targets []*calltarget.CallTarget) Summary {
	var s Summary
	s.Targets = len(targets)
	for _, ct := range targets {
		s.Compilations += ct.Count(event.KindDone)
		s.Invalidations += ct.Count(event.KindInvalidation)
		s.Deoptimizations += ct.Count(event.KindDeoptimization)
		s.Failures += ct.Count(event.KindFailed)
		s.Evictions += ct.Count(event.KindCacheFlushing)
		s.Transfers += ct.Count(event.KindTransferToInterpreter)
		s.CodeBytes += ct.TotalCodeSize()
		s.CompileTimeMs += ct.TotalCompileTimeMs()

		if !reachedMaxCompilation(ct) {
			continue
		}
		s.MaxCompilationTargets++
		if Thrashing(ct) {
			s.ThrashingTargets++
		}
	}
	return s
}

func reachedMaxCompilation(ct *calltarget.CallTarget) bool {
	for _, f := range ct.Failures() {
		if strings.Contains(f.Reason, maxCompilationReason) {
			return true
		}
	}
	return false
}

// Thrashing reports whether the evictions of ct that directly follow a
// Done or another eviction in its timeline amount to at least 90% of its
// compilations. A target without compilations never thrashes; rolling
// logs can hold its evictions without the matching installs.
func Thrashing(ct *calltarget.CallTarget) bool {
	dones := ct.Count(event.KindDone)
	if dones == 0 {
		return false
	}

	flushes := 0
	var prev event.Kind
	for _, e := range ct.AllEventsSorted() {
		k := e.Kind()
		if k == event.KindCacheFlushing && (prev == event.KindDone || prev == event.KindCacheFlushing) {
			flushes++
		}
		prev = k
	}
	return float64(flushes)/float64(dones) >= thrashingRatio
}

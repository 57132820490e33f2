// Package report derives summaries from correlated call targets.
//
// Every report is computed into plain structs first, so the CLI can print
// them as text (Writer) or encode them as JSON. Reports never modify the
// targets they read.
package report

import (
	"sort"

	"github.com/roach88/ctlog/internal/calltarget"
	"github.com/roach88/ctlog/internal/event"
)

// Row summarizes one call target in the histogram and hotspot tables.
type Row struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Source          string `json:"source"`
	Compilations    int    `json:"compilations"`
	CompileTimeMs   int64  `json:"compile_time_ms"`
	CodeBytes       int64  `json:"code_bytes"`
	Invalidations   int    `json:"invalidations"`
	Deoptimizations int    `json:"deoptimizations"`
	Evictions       int    `json:"evictions"`
	Failures        int    `json:"failures"`
	Transfers       int    `json:"transfers"`
	ExecCount       int64  `json:"exec_count"`
}

// RowOf summarizes ct. A target without Done events reports zero
// compilations, compile time and code.
func RowOf(ct *calltarget.CallTarget) Row {
	return Row{
		ID:              ct.ID,
		Name:            ct.Name,
		Source:          ct.Source,
		Compilations:    ct.Count(event.KindDone),
		CompileTimeMs:   ct.TotalCompileTimeMs(),
		CodeBytes:       ct.TotalCodeSize(),
		Invalidations:   ct.Count(event.KindInvalidation),
		Deoptimizations: ct.Count(event.KindDeoptimization),
		Evictions:       ct.Count(event.KindCacheFlushing),
		Failures:        ct.Count(event.KindFailed),
		Transfers:       ct.Count(event.KindTransferToInterpreter),
		ExecCount:       ct.ExecCount(),
	}
}

func rowsOf(targets []*calltarget.CallTarget) []Row {
	rows := make([]Row, len(targets))
	for i, ct := range targets {
		rows[i] = RowOf(ct)
	}
	return rows
}

// top sorts rows with less, breaking ties by ascending id, and keeps the
// first n. n <= 0 keeps all rows.
func top(rows []Row, n int, less func(a, b Row) (bool, bool)) []Row {
	sort.SliceStable(rows, func(i, j int) bool {
		if lt, decided := less(rows[i], rows[j]); decided {
			return lt
		}
		return rows[i].ID < rows[j].ID
	})
	if n > 0 && n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

// Histogram ranks targets by compilation count, then total compile time,
// both descending.
func Histogram(targets []*calltarget.CallTarget, n int) []Row {
	return top(rowsOf(targets), n, func(a, b Row) (bool, bool) {
		if a.Compilations != b.Compilations {
			return a.Compilations > b.Compilations, true
		}
		if a.CompileTimeMs != b.CompileTimeMs {
			return a.CompileTimeMs > b.CompileTimeMs, true
		}
		return false, false
	})
}

// Hotspots ranks targets by current execution count descending, then by
// compilation count ascending.
func Hotspots(targets []*calltarget.CallTarget, n int) []Row {
	return top(rowsOf(targets), n, func(a, b Row) (bool, bool) {
		if a.ExecCount != b.ExecCount {
			return a.ExecCount > b.ExecCount, true
		}
		if a.Compilations != b.Compilations {
			return a.Compilations < b.Compilations, true
		}
		return false, false
	})
}

package report

import (
	"github.com/roach88/ctlog/internal/calltarget"
	"github.com/roach88/ctlog/internal/event"
)

// ParetoMaxFrequency is the last compilation-count bucket. Targets
// compiled more often are counted in it.
const ParetoMaxFrequency = 100

// ParetoRow is the share of targets compiled exactly Frequency times.
type ParetoRow struct {
	Frequency   int     `json:"frequency"`
	Count       int     `json:"count"`
	Percent     float64 `json:"percent"`
	Accumulated float64 `json:"accumulated"`
}

// Pareto distributes targets over compilation counts 1 through
// ParetoMaxFrequency. Targets never compiled appear in no row, so the
// accumulated percentage stops short of 100 when some exist.
func Pareto(targets []*calltarget.CallTarget) []ParetoRow {
	counts := make([]int, ParetoMaxFrequency+1)
	for _, ct := range targets {
		n := ct.Count(event.KindDone)
		if n > ParetoMaxFrequency {
			n = ParetoMaxFrequency
		}
		counts[n]++
	}

	rows := make([]ParetoRow, 0, ParetoMaxFrequency)
	var acc float64
	for freq := 1; freq <= ParetoMaxFrequency; freq++ {
		var pct float64
		if len(targets) > 0 {
			pct = float64(counts[freq]) / float64(len(targets)) * 100
		}
		acc += pct
		rows = append(rows, ParetoRow{
			Frequency:   freq,
			Count:       counts[freq],
			Percent:     pct,
			Accumulated: acc,
		})
	}
	return rows
}

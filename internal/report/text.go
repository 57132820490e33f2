package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/ctlog/internal/store"
)

// TimestampLayout is how timeline instants are printed.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Writer prints reports as plain-text tables. Counts are printed with
// English digit grouping.
type Writer struct {
	w io.Writer
	p *message.Printer
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, p: message.NewPrinter(language.English)}
}

func (w *Writer) num(n int64) string {
	return w.p.Sprintf("%d", n)
}

func (w *Writer) line(format string, args ...any) {
	fmt.Fprintf(w.w, format+"\n", args...)
}

func (w *Writer) field(label, value string) {
	w.line("%-32s %s", label+":", value)
}

func (w *Writer) rule(header string) {
	w.line("%s", header)
	w.line("%s", strings.Repeat("-", len(header)))
}

// WriteSummary prints whole-log totals.
func (w *Writer) WriteSummary(s Summary) {
	w.field("Call targets", w.num(int64(s.Targets)))
	w.field("Compilations", w.num(int64(s.Compilations)))
	w.field("Invalidations", w.num(int64(s.Invalidations)))
	w.field("Deoptimizations", w.num(int64(s.Deoptimizations)))
	w.field("Failures", w.num(int64(s.Failures)))
	w.field("Evictions", w.num(int64(s.Evictions)))
	w.field("Interpreter transfers", w.num(int64(s.Transfers)))
	w.field("Targets at maximum compilation",
		fmt.Sprintf("%s (%.2f%%)", w.num(int64(s.MaxCompilationTargets)), s.MaxCompilationPercent()))
	w.field("Cache thrashing targets", w.num(int64(s.ThrashingTargets)))
	w.field("Produced code (MB)", Megabytes(s.CodeBytes))
	w.field("Compile time (s)", Seconds(s.CompileTimeMs))
}

const rowFormat = "%6s | %12s | %8s | %6s | %6s | %9s | %8s | %9s | %10s | %6s | %s"

// WriteRows prints a histogram or hotspot table.
func (w *Writer) WriteRows(rows []Row) {
	w.rule(fmt.Sprintf(rowFormat,
		"Comps", "CompTime(ms)", "Code(KB)", "Invals", "Deopts", "Evictions",
		"Failures", "Transfers", "ExecCount", "ID", "Target"))
	for _, r := range rows {
		w.line(rowFormat,
			w.num(int64(r.Compilations)),
			w.num(r.CompileTimeMs),
			Kilobytes(r.CodeBytes),
			w.num(int64(r.Invalidations)),
			w.num(int64(r.Deoptimizations)),
			w.num(int64(r.Evictions)),
			w.num(int64(r.Failures)),
			w.num(int64(r.Transfers)),
			w.num(r.ExecCount),
			fmt.Sprint(r.ID),
			r.Name+" ("+r.Source+")")
	}
}

const timelineFormat = "%-21s | %4s | %10s | %8s | %s"

// WriteDetails prints one target's totals and annotated timeline.
func (w *Writer) WriteDetails(d Details) {
	w.line("Target %d: %s (%s)", d.ID, d.Name, d.Source)
	w.field("Compilations", w.num(int64(d.Compilations)))
	w.field("Invalidations", w.num(int64(d.Invalidations)))
	w.field("Deoptimizations", w.num(int64(d.Deoptimizations)))
	w.field("Failures", w.num(int64(d.Failures)))
	w.field("Evictions", w.num(int64(d.Evictions)))
	w.field("Interpreter transfers", w.num(int64(d.Transfers)))
	w.field("Execution count", w.num(d.ExecCount))
	w.field("Produced code (MB)", Megabytes(d.CodeBytes))
	w.field("Compile time (s)", Seconds(d.CompileTimeMs))
	w.line("")
	w.rule(fmt.Sprintf(timelineFormat, "Event", "Tier", "ExecCount", "CompId", "Timestamp"))
	for _, e := range d.Timeline {
		var tier, exec, compID string
		if e.Tier != nil {
			tier = fmt.Sprint(*e.Tier)
		}
		if e.ExecCount != nil {
			exec = w.num(*e.ExecCount)
		}
		if e.CompID != nil {
			compID = fmt.Sprint(*e.CompID)
		}
		row := fmt.Sprintf(timelineFormat, e.Kind, tier, exec, compID, e.At.Format(TimestampLayout))
		if e.Notes != "" {
			row += " | " + e.Notes
		}
		w.line("%s", row)
	}
	w.line("")
	w.line("Execution rates are derived from enqueue events; the actual rate may be higher.")
}

const rateFormat = "%-16s | %6s | %8s | %8s | %7s | %7s | %7s | %11s | %9s"

// WriteCompRate prints compile-rate buckets.
func (w *Writer) WriteCompRate(buckets []store.RateBucket) {
	if len(buckets) == 0 {
		w.line("No compilations.")
		return
	}
	w.rule(fmt.Sprintf(rateFormat,
		"Bucket", "Comps", "Code(MB)", "Time(s)", "Targets", "Sources", "CumTgts", "Largest(MB)", "Evictions"))
	for _, b := range buckets {
		w.line(rateFormat,
			b.Key,
			w.num(b.Compilations),
			Megabytes(b.CodeBytes),
			Seconds(b.CompileTimeMs),
			w.num(b.Targets),
			w.num(b.Sources),
			w.num(b.CumulativeTargets),
			Megabytes(b.LargestBytes),
			w.num(b.Evictions))
	}
}

// WritePareto prints the compilation-count distribution.
func (w *Writer) WritePareto(rows []ParetoRow) {
	w.rule(fmt.Sprintf("%5s | %6s | %8s | %8s", "Freq", "Count", "Curr%", "Acc%"))
	for _, r := range rows {
		w.line("%5d | %6s | %7.2f%% | %7.2f%%", r.Frequency, w.num(int64(r.Count)), r.Percent, r.Accumulated)
	}
}

// WriteQuery prints an ad-hoc query result, one row per line with columns
// separated by " | ". NULL values print as NULL.
func (w *Writer) WriteQuery(res *store.QueryResult) {
	w.rule(strings.Join(res.Columns, " | "))
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = fmt.Sprint(v)
		}
		w.line("%s", strings.Join(cells, " | "))
	}
	w.line("(%s rows)", w.num(int64(len(res.Rows))))
}

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Target is the identity printed at the head of every engine line.
type Target struct {
	Engine int64
	ID     int64
	Name   string
	Source string
}

func (tg Target) head(keyword string) string {
	return fmt.Sprintf("[engine] opt %s engine=%d id=%d %s", keyword, tg.Engine, tg.ID, tg.Name)
}

// Stamp formats t the way the engine prints UTC segments.
func Stamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000-07:00")
}

// CacheStamp formats t the way the code cache prints its bracketed prefix
// (no colon in the offset).
func CacheStamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000-0700")
}

func join(segs ...string) string {
	return strings.Join(segs, " | ")
}

// EnqueuedLine builds an "opt queued" line.
func EnqueuedLine(tg Target, tier int, count, threshold int64, at time.Time) string {
	return join(
		tg.head("queued"),
		fmt.Sprintf("Tier %d", tier),
		fmt.Sprintf("Count/Thres %d/ %d", count, threshold),
		"Queue: Size 1 Change +1 Load 0.10 Time 0us",
		"UTC "+Stamp(at),
		tg.Source,
	)
}

// StartLine builds an "opt start" line.
func StartLine(tg Target, tier int, at time.Time) string {
	return join(
		tg.head("start"),
		fmt.Sprintf("Tier %d", tier),
		"Priority 1",
		"Rate 1.000000",
		"Queue: Size 0 Change -1 Load 0.00 Time 10us",
		"UTC "+Stamp(at),
		tg.Source,
	)
}

// DoneLine builds an "opt done" line.
func DoneLine(tg Target, tier int, timeMs, codeSize, compID int64, at time.Time) string {
	return join(
		tg.head("done"),
		fmt.Sprintf("Tier %d", tier),
		fmt.Sprintf("Time %d( %d+0 )ms", timeMs, timeMs),
		"AST 10",
		"Inlined 0Y 0N",
		"IR 20/ 18",
		fmt.Sprintf("CodeSize %d", codeSize),
		"Addr 0x7f0000001000",
		fmt.Sprintf("CompId %d", compID),
		"UTC "+Stamp(at),
		tg.Source,
	)
}

// DeoptLine builds an "opt deopt" line.
func DeoptLine(tg Target, at time.Time) string {
	return join(tg.head("deopt"), "UTC "+Stamp(at), tg.Source, "")
}

// InvalLine builds an "opt inval." line.
func InvalLine(tg Target, reason string, at time.Time) string {
	return join(tg.head("inval."), "UTC "+Stamp(at), tg.Source, reason)
}

// DequeuedLine builds an "opt unque." line.
func DequeuedLine(tg Target, tier int, count, threshold int64, reason string, at time.Time) string {
	return join(
		tg.head("unque."),
		fmt.Sprintf("Tier %d", tier),
		fmt.Sprintf("Count/Thres %d/ %d", count, threshold),
		"Queue: Size 0 Change -1 Load 0.00 Time 0us",
		"UTC "+Stamp(at),
		tg.Source,
		reason,
	)
}

// FailedLine builds an "opt failed" line.
func FailedLine(tg Target, tier int, timeMs int64, reason string, at time.Time) string {
	return join(
		tg.head("failed"),
		fmt.Sprintf("Tier %d", tier),
		fmt.Sprintf("Time %d( %d+0 )ms", timeMs, timeMs),
		reason,
		"UTC "+Stamp(at),
		tg.Source,
	)
}

// FlushLine builds a code-cache eviction line for compID.
func FlushLine(compID int64, at time.Time) string {
	return fmt.Sprintf("[%s] *flushing  nmethod %d/0x00007f0000001000 (not entrant)", CacheStamp(at), compID)
}

// TransferLine builds a timestamped interpreter-fallback frame.
func TransferLine(name, source string, at time.Time) string {
	return fmt.Sprintf("[%s] %s(%s)", CacheStamp(at), name, source)
}

// WriteLog writes lines to a fresh file under t.TempDir and returns its
// path.
func WriteLog(t testing.TB, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "compile.log")
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

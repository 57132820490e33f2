package event

import (
	"math"
	"strconv"
	"time"
)

// Event is a single parsed log record. The set of implementations is
// closed; every implementation is a pointer to one of the kind structs in
// this file.
type Event interface {
	Kind() Kind
	Raw() string
	Timestamp() time.Time
	isEvent()
}

// EngineEvent is an event emitted by the compilation engine. It carries
// the identifiers used to register and bucket call targets.
type EngineEvent interface {
	Event
	EngineHeader() Header
}

// Header holds the fields shared by every engine-stream grammar.
type Header struct {
	Line     string    `json:"raw"`
	EngineID int64     `json:"engine_id"`
	TargetID int64     `json:"target_id"`
	Name     string    `json:"name"`
	Source   string    `json:"source"`
	At       time.Time `json:"timestamp"`
}

func (h Header) Raw() string          { return h.Line }
func (h Header) Timestamp() time.Time { return h.At }
func (h Header) EngineHeader() Header { return h }

// Queue holds the compilation queue statistics printed with queue events.
type Queue struct {
	Size   int64   `json:"size"`
	Change int64   `json:"change"`
	Load   float64 `json:"load"`
	TimeUs int64   `json:"time_us"`
}

// Inlining summarizes inlining decisions: "Inlined <y>Y <n>N".
type Inlining struct {
	Inlined    int64 `json:"inlined"`
	NotInlined int64 `json:"not_inlined"`
}

// IRNodes is the "IR <a>/<b>" graph size summary.
type IRNodes struct {
	Initial int64 `json:"initial"`
	Final   int64 `json:"final"`
}

// Rate is the call rate printed on Start lines. The engine prints NaN
// when no rate is known yet.
type Rate float64

// IsNaN reports whether the engine printed NaN.
func (r Rate) IsNaN() bool { return math.IsNaN(float64(r)) }

// MarshalJSON encodes NaN as the string "NaN"; encoding/json rejects NaN
// numbers.
func (r Rate) MarshalJSON() ([]byte, error) {
	if r.IsNaN() {
		return []byte(`"NaN"`), nil
	}
	return strconv.AppendFloat(nil, float64(r), 'g', -1, 64), nil
}

// Enqueued is "opt queued": the target entered the compilation queue.
type Enqueued struct {
	Header
	Tier      int   `json:"tier"`
	ExecCount int64 `json:"exec_count"`
	Threshold int64 `json:"threshold"`
	Queue     Queue `json:"queue"`
}

// Start is "opt start": a compilation began.
type Start struct {
	Header
	Tier     int   `json:"tier"`
	Priority int64 `json:"priority"`
	Rate     Rate  `json:"rate"`
	Queue    Queue `json:"queue"`
}

// Done is "opt done": a compilation finished and installed code.
type Done struct {
	Header
	Tier          int      `json:"tier"`
	CompileTimeMs int64    `json:"compile_time_ms"`
	ASTSize       int64    `json:"ast_size"`
	Inlining      Inlining `json:"inlining"`
	IR            IRNodes  `json:"ir"`
	CodeSize      int64    `json:"code_size"`
	CodeAddr      string   `json:"code_addr"`
	CompID        int64    `json:"comp_id"`
}

// Deoptimization is "opt deopt".
type Deoptimization struct {
	Header
}

// Invalidation is "opt inval.".
type Invalidation struct {
	Header
	Reason string `json:"reason"`
}

// Dequeued is "opt unque.": the target left the queue without compiling.
type Dequeued struct {
	Header
	Tier      int    `json:"tier"`
	ExecCount int64  `json:"exec_count"`
	Threshold int64  `json:"threshold"`
	Queue     Queue  `json:"queue"`
	Reason    string `json:"reason"`
}

// Failed is "opt failed".
type Failed struct {
	Header
	Tier          int    `json:"tier"`
	CompileTimeMs int64  `json:"compile_time_ms"`
	Reason        string `json:"reason"`
}

// TransferToInterpreter is an interpreter-fallback frame. It has no
// identifiers; it is attributed to a call target by name.
type TransferToInterpreter struct {
	Line   string    `json:"raw"`
	Name   string    `json:"name"`
	Source string    `json:"source"`
	At     time.Time `json:"timestamp"`

	// Synthetic is set when the line carried no timestamp and At holds the
	// configured fallback instant instead.
	Synthetic bool `json:"synthetic"`
}

// CacheFlushing is a code-cache eviction of one compiled artifact.
type CacheFlushing struct {
	Line   string    `json:"raw"`
	CompID int64     `json:"comp_id"`
	At     time.Time `json:"timestamp"`
}

func (*Enqueued) Kind() Kind       { return KindEnqueued }
func (*Start) Kind() Kind          { return KindStart }
func (*Done) Kind() Kind           { return KindDone }
func (*Deoptimization) Kind() Kind { return KindDeoptimization }
func (*Invalidation) Kind() Kind   { return KindInvalidation }
func (*Dequeued) Kind() Kind       { return KindDequeued }
func (*Failed) Kind() Kind         { return KindFailed }

func (*TransferToInterpreter) Kind() Kind { return KindTransferToInterpreter }

func (e *TransferToInterpreter) Raw() string          { return e.Line }
func (e *TransferToInterpreter) Timestamp() time.Time { return e.At }

func (*CacheFlushing) Kind() Kind             { return KindCacheFlushing }
func (e *CacheFlushing) Raw() string          { return e.Line }
func (e *CacheFlushing) Timestamp() time.Time { return e.At }

func (*Enqueued) isEvent()              {}
func (*Start) isEvent()                 {}
func (*Done) isEvent()                  {}
func (*Deoptimization) isEvent()        {}
func (*Invalidation) isEvent()          {}
func (*Dequeued) isEvent()              {}
func (*Failed) isEvent()                {}
func (*TransferToInterpreter) isEvent() {}
func (*CacheFlushing) isEvent()         {}

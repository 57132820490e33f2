package event

import "fmt"

// Kind identifies the grammar an event was parsed from.
type Kind int

const (
	KindStart Kind = iota + 1
	KindDone
	KindDeoptimization
	KindInvalidation
	KindEnqueued
	KindDequeued
	KindFailed
	KindTransferToInterpreter
	KindCacheFlushing
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{
	KindStart,
	KindDone,
	KindDeoptimization,
	KindInvalidation,
	KindEnqueued,
	KindDequeued,
	KindFailed,
	KindTransferToInterpreter,
	KindCacheFlushing,
}

var kindNames = map[Kind]string{
	KindStart:                 "Start",
	KindDone:                  "Done",
	KindDeoptimization:        "Deoptimization",
	KindInvalidation:          "Invalidation",
	KindEnqueued:              "Enqueued",
	KindDequeued:              "Dequeued",
	KindFailed:                "Failed",
	KindTransferToInterpreter: "TransferToInterpreter",
	KindCacheFlushing:         "CacheFlushing",
}

// segmentArity is the exact number of '|'-separated segments each
// engine-stream grammar requires.
var segmentArity = map[Kind]int{
	KindDone:           11,
	KindStart:          7,
	KindEnqueued:       6,
	KindDequeued:       7,
	KindDeoptimization: 4,
	KindInvalidation:   4,
	KindFailed:         6,
}

// String returns the kind name, or "Unknown" for values outside the catalog.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Segments returns the required segment count for a segmented grammar.
// Whole-line grammars (CacheFlushing, TransferToInterpreter) return false.
func (k Kind) Segments() (int, bool) {
	n, ok := segmentArity[k]
	return n, ok
}

// EngineStream reports whether events of this kind carry engine and
// target identifiers.
func (k Kind) EngineStream() bool {
	_, ok := segmentArity[k]
	return ok
}

// MarshalText renders the kind name, so JSON output and map keys stay
// readable.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// UnmarshalText accepts a kind name as produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown event kind %q", text)
	}
	*k = parsed
	return nil
}

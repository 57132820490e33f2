package parse

import (
	"strconv"
	"strings"

	"github.com/roach88/ctlog/internal/event"
)

// operationKinds maps the engine's operation keywords to event kinds.
var operationKinds = map[string]event.Kind{
	"queued": event.KindEnqueued,
	"start":  event.KindStart,
	"done":   event.KindDone,
	"deopt":  event.KindDeoptimization,
	"inval.": event.KindInvalidation,
	"unque.": event.KindDequeued,
	"failed": event.KindFailed,
}

// segmentParser builds one kind of event from its already arity-checked
// segments. The header carries the identifiers from segment 0; the parser
// fills in the timestamp and source from their kind-specific positions.
type segmentParser func(h event.Header, segs []string) (event.Event, error)

var segmentParsers = map[event.Kind]segmentParser{
	event.KindEnqueued:       parseEnqueued,
	event.KindStart:          parseStart,
	event.KindDone:           parseDone,
	event.KindDeoptimization: parseDeoptimization,
	event.KindInvalidation:   parseInvalidation,
	event.KindDequeued:       parseDequeued,
	event.KindFailed:         parseFailed,
}

// OperationKind returns the kind for an engine operation keyword.
func OperationKind(keyword string) (event.Kind, bool) {
	k, ok := operationKinds[keyword]
	return k, ok
}

// parseEngine parses the part of an engine line after the marker.
func parseEngine(raw, body string) (event.Event, error) {
	keyword := body
	if i := strings.IndexAny(body, " \t|"); i >= 0 {
		keyword = body[:i]
	}
	kind, ok := operationKinds[keyword]
	if !ok {
		return nil, &Error{Code: ErrCodeUnknownOperation, Operation: keyword}
	}

	segs := splitSegments(body)
	want, _ := kind.Segments()
	if len(segs) != want {
		return nil, malformed(kind, want, len(segs))
	}

	h, err := parseIdentifiers(kind, segs[0])
	if err != nil {
		return nil, err
	}
	h.Line = raw

	return segmentParsers[kind](h, segs)
}

// parseIdentifiers reads "<keyword> engine=<n> id=<n> <name...>".
func parseIdentifiers(kind event.Kind, seg string) (event.Header, error) {
	const label = "Identifiers"
	tokens := strings.Fields(seg)
	if len(tokens) < 3 {
		return event.Header{}, unrecognized(kind, label, seg)
	}
	engineID, ok := labeledID(tokens[1], "engine")
	if !ok {
		return event.Header{}, unrecognized(kind, label, seg)
	}
	targetID, ok := labeledID(tokens[2], "id")
	if !ok {
		return event.Header{}, unrecognized(kind, label, seg)
	}
	return event.Header{
		EngineID: engineID,
		TargetID: targetID,
		Name:     strings.Join(tokens[3:], " "),
	}, nil
}

func labeledID(token, key string) (int64, bool) {
	k, v, found := strings.Cut(token, "=")
	if !found || k != key {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// id | Tier | Count/Thres | Queue | UTC | source
func parseEnqueued(h event.Header, segs []string) (event.Event, error) {
	const kind = event.KindEnqueued
	tier, err := matchTier(kind, segs[1])
	if err != nil {
		return nil, err
	}
	count, thres, err := matchPair(kind, "Count/Thres", thresholdsPattern, segs[2])
	if err != nil {
		return nil, err
	}
	q, err := matchQueue(kind, segs[3])
	if err != nil {
		return nil, err
	}
	if h.At, err = matchUTC(kind, segs[4]); err != nil {
		return nil, err
	}
	h.Source = segs[5]
	return &event.Enqueued{Header: h, Tier: tier, ExecCount: count, Threshold: thres, Queue: q}, nil
}

// id | Tier | Priority | Rate | Queue | UTC | source
func parseStart(h event.Header, segs []string) (event.Event, error) {
	const kind = event.KindStart
	tier, err := matchTier(kind, segs[1])
	if err != nil {
		return nil, err
	}
	priority, err := matchInt(kind, "Priority", priorityPattern, segs[2])
	if err != nil {
		return nil, err
	}
	rate, err := matchRate(kind, segs[3])
	if err != nil {
		return nil, err
	}
	q, err := matchQueue(kind, segs[4])
	if err != nil {
		return nil, err
	}
	if h.At, err = matchUTC(kind, segs[5]); err != nil {
		return nil, err
	}
	h.Source = segs[6]
	return &event.Start{Header: h, Tier: tier, Priority: priority, Rate: rate, Queue: q}, nil
}

// id | Tier | Time | AST | Inlined | IR | CodeSize | Addr | CompId | UTC | source
func parseDone(h event.Header, segs []string) (event.Event, error) {
	const kind = event.KindDone
	d := &event.Done{}
	var err error
	if d.Tier, err = matchTier(kind, segs[1]); err != nil {
		return nil, err
	}
	if d.CompileTimeMs, err = matchInt(kind, "Time", timePattern, segs[2]); err != nil {
		return nil, err
	}
	if d.ASTSize, err = matchInt(kind, "AST", astPattern, segs[3]); err != nil {
		return nil, err
	}
	if d.Inlining.Inlined, d.Inlining.NotInlined, err = matchPair(kind, "Inlined", inlinedPattern, segs[4]); err != nil {
		return nil, err
	}
	if d.IR.Initial, d.IR.Final, err = matchPair(kind, "IR", irPattern, segs[5]); err != nil {
		return nil, err
	}
	if d.CodeSize, err = matchInt(kind, "CodeSize", codeSizePattern, segs[6]); err != nil {
		return nil, err
	}
	if d.CodeAddr, err = matchAddr(kind, segs[7]); err != nil {
		return nil, err
	}
	if d.CompID, err = matchInt(kind, "CompId", compIDPattern, segs[8]); err != nil {
		return nil, err
	}
	if h.At, err = matchUTC(kind, segs[9]); err != nil {
		return nil, err
	}
	h.Source = segs[10]
	d.Header = h
	return d, nil
}

// id | UTC | source | -
//
// The engine pads deopt lines with an empty alignment column, so the
// timestamp is also accepted one segment later: id | - | UTC | source.
func parseDeoptimization(h event.Header, segs []string) (event.Event, error) {
	const kind = event.KindDeoptimization
	utc := 1
	if !utcPattern.MatchString(segs[1]) && utcPattern.MatchString(segs[2]) {
		utc = 2
	}
	var err error
	if h.At, err = matchUTC(kind, segs[utc]); err != nil {
		return nil, err
	}
	h.Source = segs[utc+1]
	return &event.Deoptimization{Header: h}, nil
}

// id | UTC | source | reason
func parseInvalidation(h event.Header, segs []string) (event.Event, error) {
	const kind = event.KindInvalidation
	var err error
	if h.At, err = matchUTC(kind, segs[1]); err != nil {
		return nil, err
	}
	h.Source = segs[2]
	return &event.Invalidation{Header: h, Reason: segs[3]}, nil
}

// id | Tier | Count/Thres | Queue | UTC | source | reason
func parseDequeued(h event.Header, segs []string) (event.Event, error) {
	const kind = event.KindDequeued
	tier, err := matchTier(kind, segs[1])
	if err != nil {
		return nil, err
	}
	count, thres, err := matchPair(kind, "Count/Thres", thresholdsPattern, segs[2])
	if err != nil {
		return nil, err
	}
	q, err := matchQueue(kind, segs[3])
	if err != nil {
		return nil, err
	}
	if h.At, err = matchUTC(kind, segs[4]); err != nil {
		return nil, err
	}
	h.Source = segs[5]
	return &event.Dequeued{
		Header:    h,
		Tier:      tier,
		ExecCount: count,
		Threshold: thres,
		Queue:     q,
		Reason:    segs[6],
	}, nil
}

// id | Tier | Time | reason | UTC | source
func parseFailed(h event.Header, segs []string) (event.Event, error) {
	const kind = event.KindFailed
	tier, err := matchTier(kind, segs[1])
	if err != nil {
		return nil, err
	}
	ms, err := matchInt(kind, "Time", timePattern, segs[2])
	if err != nil {
		return nil, err
	}
	if h.At, err = matchUTC(kind, segs[4]); err != nil {
		return nil, err
	}
	h.Source = segs[5]
	return &event.Failed{Header: h, Tier: tier, CompileTimeMs: ms, Reason: segs[3]}, nil
}

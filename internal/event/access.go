package event

// TargetIDOf returns the engine target id of an engine-stream event.
func TargetIDOf(e Event) (int64, bool) {
	if ee, ok := e.(EngineEvent); ok {
		return ee.EngineHeader().TargetID, true
	}
	return 0, false
}

// TierOf returns the compilation tier for kinds that print one.
func TierOf(e Event) (int, bool) {
	switch v := e.(type) {
	case *Enqueued:
		return v.Tier, true
	case *Start:
		return v.Tier, true
	case *Done:
		return v.Tier, true
	case *Dequeued:
		return v.Tier, true
	case *Failed:
		return v.Tier, true
	}
	return 0, false
}

// ExecCountOf returns the execution count of queue events.
func ExecCountOf(e Event) (int64, bool) {
	switch v := e.(type) {
	case *Enqueued:
		return v.ExecCount, true
	case *Dequeued:
		return v.ExecCount, true
	}
	return 0, false
}

// CompileTimeOf returns the compile time in milliseconds for Done and
// Failed events.
func CompileTimeOf(e Event) (int64, bool) {
	switch v := e.(type) {
	case *Done:
		return v.CompileTimeMs, true
	case *Failed:
		return v.CompileTimeMs, true
	}
	return 0, false
}

// CodeSizeOf returns the produced code size of a Done event.
func CodeSizeOf(e Event) (int64, bool) {
	if d, ok := e.(*Done); ok {
		return d.CodeSize, true
	}
	return 0, false
}

// CompIDOf returns the code-cache compilation id carried by Done and
// CacheFlushing events.
func CompIDOf(e Event) (int64, bool) {
	switch v := e.(type) {
	case *Done:
		return v.CompID, true
	case *CacheFlushing:
		return v.CompID, true
	}
	return 0, false
}

// ReasonOf returns the free-text reason of Invalidation, Dequeued and
// Failed events.
func ReasonOf(e Event) (string, bool) {
	switch v := e.(type) {
	case *Invalidation:
		return v.Reason, true
	case *Dequeued:
		return v.Reason, true
	case *Failed:
		return v.Reason, true
	}
	return "", false
}

package harness

import "time"

// TraceEvent is one event of a correlated timeline.
type TraceEvent struct {
	Seq       int64     `json:"seq"`
	Target    int64     `json:"target"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	CompID    *int64    `json:"comp_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass indicates every assertion held.
	Pass bool `json:"pass"`

	// Trace holds every target's timeline, targets by id, events in
	// timeline order.
	Trace []TraceEvent `json:"trace"`

	// Dropped counts rejected lines per parse error code.
	Dropped map[string]int `json:"dropped"`

	// Targets is the number of correlated call targets.
	Targets int `json:"targets"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Dropped: make(map[string]int),
		Errors:  []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// TargetTrace returns the events of one target.
func (r *Result) TargetTrace(target int64) []TraceEvent {
	var events []TraceEvent
	for _, e := range r.Trace {
		if e.Target == target {
			events = append(events, e)
		}
	}
	return events
}

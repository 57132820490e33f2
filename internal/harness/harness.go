package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/ctlog/internal/event"
	"github.com/roach88/ctlog/internal/parse"
	"github.com/roach88/ctlog/internal/session"
	"github.com/roach88/ctlog/internal/store"
)

// Run executes a scenario with the default parser options and returns
// the result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return RunWithOptions(ctx, scenario, parse.Options{})
}

// RunWithOptions executes a scenario with the given parser options.
//
// Each scenario is loaded into a fresh session and a fresh in-memory
// index, so scenarios never observe each other.
//
// Execution flow:
// 1. Parse and correlate the log with a fixed session id
// 2. Index the call targets for final_state assertions
// 3. Flatten the timelines into the trace
// 4. Evaluate assertions
func RunWithOptions(ctx context.Context, scenario *Scenario, opts parse.Options) (*Result, error) {
	sessionID := scenario.SessionID
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	sessOpts := session.Options{
		Parser: opts,
		IDs:    session.NewFixedGenerator(sessionID),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in scenarios
	}

	var (
		sess *session.Session
		err  error
	)
	if scenario.Log != "" {
		sess, err = session.Load(ctx, scenario.Log, sessOpts)
	} else {
		sess, err = session.Read(ctx, strings.NewReader(strings.Join(scenario.Lines, "\n")), sessOpts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load log: %w", err)
	}

	st, err := store.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()
	if err := st.WriteTargets(ctx, sess.Targets()); err != nil {
		return nil, fmt.Errorf("failed to index call targets: %w", err)
	}

	result := NewResult()
	result.Targets = sess.CorrelationStats.Targets
	for code, n := range sess.ParseStats.Dropped {
		result.Dropped[string(code)] = n
	}
	result.Trace = buildTrace(sess)

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// buildTrace flattens every target's sorted timeline, targets by id.
func buildTrace(sess *session.Session) []TraceEvent {
	trace := []TraceEvent{}
	var seq int64
	for _, ct := range sess.Targets() {
		for _, e := range ct.AllEventsSorted() {
			seq++
			te := TraceEvent{
				Seq:       seq,
				Target:    ct.ID,
				Kind:      e.Kind().String(),
				Timestamp: e.Timestamp().UTC(),
			}
			if id, ok := event.CompIDOf(e); ok {
				te.CompID = &id
			}
			if reason, ok := event.ReasonOf(e); ok {
				te.Reason = reason
			}
			trace = append(trace, te)
		}
	}
	return trace
}

package harness

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/ctlog/internal/event"
	"github.com/roach88/ctlog/internal/store"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
// This prevents SQL injection via identifier interpolation.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Timeline of the asserted target, if any
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nTimeline:\n")
		for _, te := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s\n", te.Seq, te.Kind, te.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"))
		}
	}

	return buf.String()
}

// assertTargetCount checks the number of correlated call targets.
func assertTargetCount(result *Result, assertion Assertion) error {
	if result.Targets != assertion.Count {
		return &AssertionError{
			Type:     AssertTargetCount,
			Expected: fmt.Sprintf("%d call targets", assertion.Count),
			Actual:   fmt.Sprintf("%d call targets", result.Targets),
		}
	}
	return nil
}

// assertTimelineContains checks that the target's timeline holds an event
// of the asserted kind, comp id and reason.
func assertTimelineContains(result *Result, assertion Assertion) error {
	if assertion.Target == nil {
		return fmt.Errorf("timeline_contains assertion requires target")
	}
	trace := result.TargetTrace(*assertion.Target)
	for _, e := range trace {
		if e.Kind != assertion.Kind.String() {
			continue
		}
		if assertion.CompID != nil && (e.CompID == nil || *e.CompID != *assertion.CompID) {
			continue
		}
		if assertion.Reason != "" && e.Reason != assertion.Reason {
			continue
		}
		return nil
	}

	expected := fmt.Sprintf("%s event on target %d", assertion.Kind, *assertion.Target)
	if assertion.CompID != nil {
		expected += fmt.Sprintf(" with comp_id %d", *assertion.CompID)
	}
	if assertion.Reason != "" {
		expected += fmt.Sprintf(" with reason %q", assertion.Reason)
	}
	return &AssertionError{
		Type:     AssertTimelineContains,
		Expected: expected,
		Actual:   "not found in timeline",
		Trace:    trace,
	}
}

// assertTimelineOrder checks that kinds first occur in the specified order.
// Kinds don't need to be consecutive (intervening events are allowed).
func assertTimelineOrder(result *Result, assertion Assertion) error {
	if assertion.Target == nil {
		return fmt.Errorf("timeline_order assertion requires target")
	}
	trace := result.TargetTrace(*assertion.Target)

	// Step 1: Find first position of each expected kind
	positions := make(map[event.Kind]int)
	for i, e := range trace {
		for _, kind := range assertion.Kinds {
			if e.Kind == kind.String() && positions[kind] == 0 {
				positions[kind] = i + 1 // 1-indexed for readability
			}
		}
	}

	// Step 2: Verify all kinds found
	for _, kind := range assertion.Kinds {
		if positions[kind] == 0 {
			return &AssertionError{
				Type:     AssertTimelineOrder,
				Expected: fmt.Sprintf("all kinds present: %v", assertion.Kinds),
				Actual:   fmt.Sprintf("missing kind: %s", kind),
				Trace:    trace,
			}
		}
	}

	// Step 3: Verify order
	for i := 1; i < len(assertion.Kinds); i++ {
		prev := assertion.Kinds[i-1]
		curr := assertion.Kinds[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTimelineOrder,
				Expected: fmt.Sprintf("kinds in order: %v", assertion.Kinds),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertEventCount checks the number of events of a kind, on one target or
// on all of them.
func assertEventCount(result *Result, assertion Assertion) error {
	trace := result.Trace
	scope := "all targets"
	if assertion.Target != nil {
		trace = result.TargetTrace(*assertion.Target)
		scope = fmt.Sprintf("target %d", *assertion.Target)
	}

	count := 0
	for _, e := range trace {
		if e.Kind == assertion.Kind.String() {
			count++
		}
	}

	if count != assertion.Count {
		var shown []TraceEvent
		if assertion.Target != nil {
			shown = trace
		}
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d %s events on %s", assertion.Count, assertion.Kind, scope),
			Actual:   fmt.Sprintf("%d events", count),
			Trace:    shown,
		}
	}

	return nil
}

// assertDropped checks the number of lines rejected with a parse error code.
func assertDropped(result *Result, assertion Assertion) error {
	if n := result.Dropped[assertion.Code]; n != assertion.Count {
		return &AssertionError{
			Type:     AssertDropped,
			Expected: fmt.Sprintf("%d lines dropped with %s", assertion.Count, assertion.Code),
			Actual:   fmt.Sprintf("%d lines", n),
		}
	}
	return nil
}

// assertFinalState checks that exactly one row of an index table matches
// the where clause and holds the expected values.
//
// Security: Table and column names are validated against a whitelist pattern
// to prevent SQL injection via identifier interpolation.
func assertFinalState(ctx context.Context, st *store.Store, assertion Assertion) error {
	// Validate table name to prevent SQL injection (identifiers can't be parameterized)
	if !validIdentifier.MatchString(assertion.Table) {
		return fmt.Errorf("invalid table name %q: must match pattern %s", assertion.Table, validIdentifier.String())
	}

	// Build WHERE clause with parameterized SQL (never interpolate values)
	whereSQL, whereArgs, err := buildWhereClause(assertion.Where)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT * FROM %s", assertion.Table)
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	res, err := st.Query(ctx, query, whereArgs...)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}

	whereDesc := formatWhereClause(assertion.Where)
	switch len(res.Rows) {
	case 0:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", assertion.Table, whereDesc),
			Actual:   "row not found",
		}
	case 1:
	default:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s where %s", assertion.Table, whereDesc),
			Actual:   fmt.Sprintf("%d rows matched (assertion is ambiguous)", len(res.Rows)),
		}
	}

	actualRow := make(map[string]interface{})
	for i, col := range res.Columns {
		actualRow[col] = res.Rows[0][i]
	}

	// Check each expected column in sorted order for deterministic messages
	keys := make([]string, 0, len(assertion.Expect))
	for k := range assertion.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		expectedValue := assertion.Expect[key]
		actualValue, exists := actualRow[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("column %q to exist", key),
				Actual:   fmt.Sprintf("column %q not present in result columns: %v", key, res.Columns),
			}
		}

		if !stateValuesEqual(expectedValue, actualValue) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("column %q = %v (type %T)", key, expectedValue, expectedValue),
				Actual:   fmt.Sprintf("column %q = %v (type %T)", key, actualValue, actualValue),
			}
		}
	}

	return nil
}

// buildWhereClause constructs parameterized WHERE clause from assertion.Where.
// Returns SQL fragment, arguments slice, and error. Keys are sorted for determinism.
func buildWhereClause(where map[string]interface{}) (string, []interface{}, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		if !validIdentifier.MatchString(k) {
			return "", nil, fmt.Errorf("invalid column name %q: must match pattern %s", k, validIdentifier.String())
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conditions := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		if where[k] == nil {
			conditions = append(conditions, k+" IS NULL")
			continue
		}
		conditions = append(conditions, k+" = ?")
		args = append(args, toSQLValue(where[k]))
	}

	return strings.Join(conditions, " AND "), args, nil
}

// toSQLValue converts a YAML scalar to a SQLite bind value.
func toSQLValue(v interface{}) interface{} {
	switch val := v.(type) {
	case int:
		return int64(val)
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	default:
		return val
	}
}

// formatWhereClause creates a human-readable description of WHERE conditions.
func formatWhereClause(where map[string]interface{}) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

// stateValuesEqual compares a YAML-decoded expected value with a value read
// from the index. SQLite returns int64, float64, string or nil.
func stateValuesEqual(expected, actual interface{}) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	switch exp := expected.(type) {
	case int:
		switch act := actual.(type) {
		case int64:
			return int64(exp) == act
		case float64:
			return float64(exp) == act
		}
	case int64:
		switch act := actual.(type) {
		case int64:
			return exp == act
		case float64:
			return float64(exp) == act
		}
	case float64:
		switch act := actual.(type) {
		case float64:
			return exp == act
		case int64:
			return exp == float64(act)
		}
	case bool:
		if act, ok := actual.(int64); ok {
			return exp == (act != 0)
		}
	case string:
		if act, ok := actual.(string); ok {
			return exp == act
		}
	}
	return false
}

// AssertionContext provides index access for final_state assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides index access for final_state assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTargetCount:
			err = assertTargetCount(result, assertion)
		case AssertTimelineContains:
			err = assertTimelineContains(result, assertion)
		case AssertTimelineOrder:
			err = assertTimelineOrder(result, assertion)
		case AssertEventCount:
			err = assertEventCount(result, assertion)
		case AssertDropped:
			err = assertDropped(result, assertion)
		case AssertFinalState:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires index context", i)
			} else {
				err = assertFinalState(actx.Ctx, actx.Store, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ctlog/internal/event"
)

// Scenario defines a conformance scenario: a log and the assertions its
// correlated timelines must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Log is the path of the log file to analyze. Relative paths are
	// resolved against the scenario file's directory.
	Log string `yaml:"log,omitempty"`

	// Lines is an inline log, used instead of Log.
	Lines []string `yaml:"lines,omitempty"`

	// Assertions validate the correlated result.
	Assertions []Assertion `yaml:"assertions"`

	// SessionID is an optional fixed session id.
	// If empty, defaults to "test-session-default" for deterministic golden file comparison.
	SessionID string `yaml:"session_id,omitempty"`
}

// Assertion validates the timelines, the parse counters or the index.
type Assertion struct {
	// Type specifies the assertion type:
	// - "target_count": Check the number of call targets
	// - "timeline_contains": Check a target's timeline has a matching event
	// - "timeline_order": Check kinds first occur in order
	// - "event_count": Check the number of events of a kind
	// - "dropped": Check the number of lines rejected with a code
	// - "final_state": Query an index table and verify expected values
	Type string `yaml:"type"`

	// Target is the call target id (timeline_contains, timeline_order,
	// event_count). event_count counts over all targets when nil.
	Target *int64 `yaml:"target,omitempty"`

	// Kind is the event kind (timeline_contains, event_count).
	Kind event.Kind `yaml:"kind,omitempty"`

	// CompID and Reason narrow timeline_contains.
	CompID *int64 `yaml:"comp_id,omitempty"`
	Reason string `yaml:"reason,omitempty"`

	// Kinds is the expected kind order (timeline_order).
	Kinds []event.Kind `yaml:"kinds,omitempty"`

	// Count is the expected number (target_count, event_count, dropped).
	Count int `yaml:"count,omitempty"`

	// Code is the parse error code (dropped).
	Code string `yaml:"code,omitempty"`

	// Table is the index table or view name (final_state).
	Table string `yaml:"table,omitempty"`

	// Where specifies query filters (final_state).
	// All fields must match exactly.
	Where map[string]interface{} `yaml:"where,omitempty"`

	// Expect contains expected column values (final_state).
	// Subset match - only specified columns are validated.
	Expect map[string]interface{} `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTargetCount      = "target_count"
	AssertTimelineContains = "timeline_contains"
	AssertTimelineOrder    = "timeline_order"
	AssertEventCount       = "event_count"
	AssertDropped          = "dropped"
	AssertFinalState       = "final_state"
)

// DefaultSessionID is used when a scenario fixes no session id.
const DefaultSessionID = "test-session-default"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the log path relative to the scenario BEFORE validation
	if scenario.Log != "" && !filepath.IsAbs(scenario.Log) {
		scenario.Log = filepath.Join(filepath.Dir(path), scenario.Log)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Log == "" && len(s.Lines) == 0:
		return fmt.Errorf("log or lines is required")
	case s.Log != "" && len(s.Lines) > 0:
		return fmt.Errorf("log and lines are mutually exclusive")
	}

	if s.Log != "" {
		if _, err := os.Stat(s.Log); os.IsNotExist(err) {
			return fmt.Errorf("log file not found: %s", s.Log)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}

	switch a.Type {
	case AssertTargetCount:
	case AssertTimelineContains:
		if a.Target == nil {
			return fmt.Errorf("assertions[%d]: target is required for timeline_contains", index)
		}
		if a.Kind == 0 {
			return fmt.Errorf("assertions[%d]: kind is required for timeline_contains", index)
		}
	case AssertTimelineOrder:
		if a.Target == nil {
			return fmt.Errorf("assertions[%d]: target is required for timeline_order", index)
		}
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for timeline_order", index)
		}
	case AssertEventCount:
		if a.Kind == 0 {
			return fmt.Errorf("assertions[%d]: kind is required for event_count", index)
		}
	case AssertDropped:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for dropped", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TimelineSnapshot captures the correlated timelines of a scenario run.
type TimelineSnapshot struct {
	ScenarioName string         `json:"scenario_name"`
	SessionID    string         `json:"session_id"`
	Targets      int            `json:"targets"`
	Dropped      map[string]int `json:"dropped"`
	Trace        []TraceEvent   `json:"trace"`
}

// Snapshot serializes a result as indented JSON with a trailing newline.
// Map keys are sorted, so equal results produce equal bytes.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	sessionID := scenario.SessionID
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	data, err := json.MarshalIndent(TimelineSnapshot{
		ScenarioName: scenario.Name,
		SessionID:    sessionID,
		Targets:      result.Targets,
		Dropped:      result.Dropped,
		Trace:        result.Trace,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its timelines against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the timelines don't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the scenario's golden
// file without re-running it.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}

// GoldenPath returns the golden file of a scenario file: a sibling golden
// directory holding {base name}.golden.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// UpdateGolden writes the result's snapshot as the scenario file's golden
// file.
func UpdateGolden(scenarioFile string, scenario *Scenario, result *Result) error {
	goldenPath := GoldenPath(scenarioFile)
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}
	if err := os.WriteFile(goldenPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the result matches the scenario file's
// golden file. found is false when no golden file exists.
func CompareGolden(scenarioFile string, scenario *Scenario, result *Result) (match, found bool, err error) {
	goldenData, err := os.ReadFile(GoldenPath(scenarioFile))
	if os.IsNotExist(err) {
		return false, false, nil
	}
	if err != nil {
		return false, true, fmt.Errorf("failed to read golden file: %w", err)
	}

	current, err := Snapshot(scenario, result)
	if err != nil {
		return false, true, err
	}
	return bytes.Equal(goldenData, current), true, nil
}

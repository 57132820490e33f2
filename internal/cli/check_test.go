package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenarios writes scenario files named by key into a fresh
// directory. Every scenario analyzes the shared fixture log.
func writeScenarios(t *testing.T, scenarios map[string]string) string {
	t.Helper()
	logPath := writeSampleLog(t)
	dir := t.TempDir()
	for name, assertions := range scenarios {
		content := fmt.Sprintf("name: %s\ndescription: %q\nlog: %s\nassertions:\n%s", name, name+" scenario", logPath, assertions)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(content), 0644))
	}
	return dir
}

const (
	passingAssertions = "  - type: target_count\n    count: 3\n  - type: dropped\n    code: UNKNOWN_OPERATION\n    count: 1\n"
	failingAssertions = "  - type: target_count\n    count: 5\n"
)

func TestCheckCommand_AllPass(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"targets": passingAssertions,
		"evict-foo": "  - type: timeline_contains\n    target: 1\n    kind: CacheFlushing\n    comp_id: 101\n",
	})

	stdout, _, err := runCLI(t, "", "check", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ targets")
	assert.Contains(t, stdout, "✓ evict-foo")
	assert.Contains(t, stdout, "Check Summary: 2 passed, 0 failed, 2 total")
}

func TestCheckCommand_Failure(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"good": passingAssertions,
		"bad":  failingAssertions,
	})

	t.Run("text", func(t *testing.T) {
		stdout, _, err := runCLI(t, "", "check", dir)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, stdout, "✗ bad")
		assert.Contains(t, stdout, "Expected: 5 call targets")
		assert.Contains(t, stdout, "1 passed, 1 failed, 2 total")
	})

	t.Run("json", func(t *testing.T) {
		stdout, _, err := runCLI(t, "", "check", dir, "--format", "json")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		var resp struct {
			Status string      `json:"status"`
			Data   CheckResult `json:"data"`
			Error  *CLIError   `json:"error"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
		assert.Equal(t, "error", resp.Status)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeCheckFailed, resp.Error.Code)
		assert.Equal(t, 2, resp.Data.Total)
		assert.Equal(t, 1, resp.Data.Failed)
	})
}

func TestCheckCommand_Filter(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"evict-one": passingAssertions,
		"other":     failingAssertions,
	})

	stdout, _, err := runCLI(t, "", "check", dir, "--filter", "evict-*")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ evict-one")
	assert.NotContains(t, stdout, "other")
}

func TestCheckCommand_Golden(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"targets": passingAssertions})

	stdout, _, err := runCLI(t, "", "check", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ targets (golden updated)")

	goldenPath := filepath.Join(dir, "golden", "targets.golden")
	_, err = os.Stat(goldenPath)
	require.NoError(t, err)

	_, _, err = runCLI(t, "", "check", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenPath, []byte("{}\n"), 0644))
	stdout, _, err = runCLI(t, "", "check", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "do not match golden file")
}

func TestCheckCommand_InvalidScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: broken\n"), 0644))

	stdout, _, err := runCLI(t, "", "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ broken.yaml")
	assert.Contains(t, stdout, "failed to load scenario")
}

func TestCheckCommand_NoScenarios(t *testing.T) {
	stdout, _, err := runCLI(t, "", "check", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")
}

func TestCheckCommand_MissingDir(t *testing.T) {
	_, _, err := runCLI(t, "", "check", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot captures the complete trace for a scenario execution.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Pass         bool         `json:"pass"`
	Trace        []TraceEvent `json:"trace"`
}

// MarshalSnapshot renders the snapshot as indented JSON with a trailing
// newline. Field order follows the struct definitions, so output is stable.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	data, err := json.MarshalIndent(TraceSnapshot{
		ScenarioName: name,
		Pass:         result.Pass,
		Trace:        result.Trace,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal trace snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}

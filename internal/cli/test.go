package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/uniterm/internal/catalog"
	"github.com/roach88/uniterm/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool   // regenerate golden files
	Filter    string // scenario filter (glob pattern)
	GoldenDir string // defaults to <scenarios>/golden
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios>",
		Short: "Run scenario files",
		Long: `Run YAML scenarios, each against a fresh in-memory database.

<scenarios> is a scenario file or a directory searched for .yaml/.yml
files. When a golden file named after the scenario exists, the trace must
match it as well as every expectation and assertion.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  uniterm test ./scenarios
  uniterm test ./scenarios --filter "substitute_*"
  uniterm test ./scenarios --update
  uniterm test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden-dir", "", "golden file directory (default <scenarios>/golden)")

	return cmd
}

func runTests(opts *TestOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		_ = formatter.Error(catalog.CodeNotFound, fmt.Sprintf("scenarios not found: %s", path), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios not found: %s", path))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read scenarios", err)
	}

	scenarioDir := path
	scenarioFiles := []string{path}
	if info.IsDir() {
		scenarioFiles, err = findScenarioFiles(path, opts.Filter)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find scenarios", err)
		}
	} else {
		scenarioDir = filepath.Dir(path)
	}

	goldenDir := opts.GoldenDir
	if goldenDir == "" {
		goldenDir = filepath.Join(scenarioDir, "golden")
	}

	if len(scenarioFiles) == 0 {
		if formatter.JSON() {
			return outputTestJSON(formatter, TestResult{
				Scenarios: []ScenarioResult{},
				Total:     0,
			})
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	// Run scenarios
	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(scenarioFile, goldenDir, opts, formatter)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	// Output results
	if formatter.JSON() {
		return outputTestJSON(formatter, result)
	}

	return outputTestText(formatter, result)
}

// findScenarioFiles finds all YAML scenario files in a directory.
// Files under a "golden" directory are skipped.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != dir && info.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		// Apply filter if specified
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// runScenario executes a single scenario and returns the result.
func runScenario(scenarioFile, goldenDir string, opts *TestOptions, formatter *OutputFormatter) ScenarioResult {
	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return reportScenario(formatter, ScenarioResult{
			Name:   filepath.Base(scenarioFile),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		})
	}

	result, err := harness.RunWithOptions(scenario, harness.Options{Logger: opts.logger()})
	if err != nil {
		return reportScenario(formatter, ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		})
	}

	snapshot, err := harness.MarshalSnapshot(scenario.Name, result)
	if err != nil {
		return reportScenario(formatter, ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{err.Error()},
		})
	}

	goldenPath := filepath.Join(goldenDir, scenario.Name+".golden")

	if opts.Update {
		if err := updateGoldenFile(goldenPath, snapshot); err != nil {
			return reportScenario(formatter, ScenarioResult{
				Name:   scenario.Name,
				Errors: []string{fmt.Sprintf("failed to update golden file: %v", err)},
			})
		}
		formatter.VerboseLog("updated %s", goldenPath)
		return reportScenario(formatter, ScenarioResult{
			Name:   scenario.Name,
			Pass:   result.Pass,
			Errors: result.Errors,
		})
	}

	errs := result.Errors
	golden, err := os.ReadFile(goldenPath)
	switch {
	case os.IsNotExist(err):
		// No golden file - expectations and assertions only
	case err != nil:
		errs = append(errs, fmt.Sprintf("failed to read golden file: %v", err))
	case !bytes.Equal(golden, snapshot):
		errs = append(errs, "trace does not match golden file (run with --update to regenerate)")
	}

	return reportScenario(formatter, ScenarioResult{
		Name:   scenario.Name,
		Pass:   len(errs) == 0,
		Errors: errs,
	})
}

// reportScenario prints one scenario line in text mode and returns r.
func reportScenario(formatter *OutputFormatter, r ScenarioResult) ScenarioResult {
	if formatter.JSON() {
		return r
	}
	if r.Pass {
		fmt.Fprintf(formatter.Writer, "✓ %s\n", r.Name)
		return r
	}
	fmt.Fprintf(formatter.Writer, "✗ %s\n", r.Name)
	for _, e := range r.Errors {
		fmt.Fprintf(formatter.Writer, "  %s\n", e)
	}
	return r
}

// updateGoldenFile writes the current trace as the golden file.
func updateGoldenFile(goldenPath string, snapshot []byte) error {
	// Ensure golden directory exists
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}

	if err := os.WriteFile(goldenPath, snapshot, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}

	return nil
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(formatter *OutputFormatter, result TestResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status:  status,
		Data:    result,
		TraceID: formatter.traceID(),
	}

	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    CodeTestFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	if err := formatter.encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(formatter *OutputFormatter, result TestResult) error {
	w := formatter.Writer

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}

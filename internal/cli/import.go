package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/uniterm/internal/catalog"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	CollectAll bool
	DryRun     bool
}

// ImportResult is the JSON payload of import.
type ImportResult struct {
	Imported int      `json:"imported"`
	IDs      []int64  `json:"ids"`
	DryRun   bool     `json:"dry_run,omitempty"`
	Keys     []string `json:"keys"`
}

// CatalogIssue is one catalogue problem in JSON output.
type CatalogIssue struct {
	Code    string `json:"code"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <catalog-dir>",
		Short: "Import records from a CUE catalogue",
		Long: `Load every .cue file in a directory as one catalogue and save each
entry under "record" as a new record.

	record: Seq1: {description: "demo", a: "a", b: "b", a_alt: "a'", b_alt: "b'"}

The key is used as the record name unless the entry sets "name"; the
operator defaults to ";". Entries are checked against the record rules
before anything is saved, so an invalid catalogue imports nothing.

Exit codes:
  0 - All records imported
  1 - Invalid catalogue entries or records
  2 - Command error (missing directory, unusable database, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.CollectAll, "collect-all", false, "report every invalid entry instead of stopping at the first")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "validate the catalogue without saving")

	return cmd
}

func runImport(opts *ImportOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	mode := catalog.LoadModeFailFast
	if opts.CollectAll {
		mode = catalog.LoadModeCollectAll
	}

	entries, loadErrs := catalog.LoadDir(dir, mode)
	if len(loadErrs) > 0 {
		return outputCatalogErrors(formatter, loadErrs)
	}
	formatter.VerboseLog("Found %d record(s) in %s", len(entries), dir)

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
		if err := e.Draft.Normalize().Validate(!opts.LegacySchema); err != nil {
			return formatter.Fail("invalid record."+e.Key, err)
		}
	}

	if opts.DryRun {
		if formatter.JSON() {
			return formatter.Success(ImportResult{IDs: []int64{}, DryRun: true, Keys: keys})
		}
		fmt.Fprintf(formatter.Writer, "✓ %d record(s) valid (dry run, nothing saved)\n", len(entries))
		return nil
	}

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer opts.closeStore(st)

	ids, err := catalog.Import(cmd.Context(), st, entries)
	if err != nil {
		return formatter.Fail(fmt.Sprintf("imported %d of %d record(s)", len(ids), len(entries)), err)
	}

	if formatter.JSON() {
		return formatter.Success(ImportResult{Imported: len(ids), IDs: ids, Keys: keys})
	}
	for i, e := range entries {
		formatter.VerboseLog("  #%d %s", ids[i], e.Key)
	}
	fmt.Fprintf(formatter.Writer, "✓ Imported %d record(s) from %s\n", len(ids), dir)
	return nil
}

// outputCatalogErrors reports catalogue errors. Problems with the directory
// itself are command errors; invalid entries are failures.
func outputCatalogErrors(formatter *OutputFormatter, errs []error) error {
	issues := make([]CatalogIssue, 0, len(errs))
	exit := ExitFailure
	for _, err := range errs {
		issue := CatalogIssue{Code: catalog.CodeGeneric, Message: err.Error()}
		var catErr *catalog.Error
		if errors.As(err, &catErr) {
			issue = CatalogIssue{Code: catErr.Code, Key: catErr.Key, Message: catErr.Message}
			if catErr.Pos.IsValid() {
				issue.File = catErr.Pos.Filename()
				issue.Line = catErr.Pos.Line()
			}
		}
		if isCommandCode(issue.Code) {
			exit = ExitCommandError
		}
		issues = append(issues, issue)
	}

	if formatter.JSON() {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   map[string]any{"errors": issues},
			Error: &CLIError{
				Code:    issues[0].Code,
				Message: issues[0].Message,
			},
			TraceID: formatter.traceID(),
		}); err != nil {
			return err
		}
		return NewExitError(exit, fmt.Sprintf("catalogue has %d error(s)", len(issues)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Import failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range issues {
		if issue.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s line %d\n", issue.File, issue.Line)
		}
		if issue.Key != "" {
			fmt.Fprintf(formatter.Writer, "  %s: record.%s: %s\n\n", issue.Code, issue.Key, issue.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
		}
	}
	return NewExitError(exit, fmt.Sprintf("catalogue has %d error(s)", len(issues)))
}

func isCommandCode(code string) bool {
	switch code {
	case catalog.CodeScanError, catalog.CodeNoFiles, catalog.CodeNotFound:
		return true
	}
	return false
}

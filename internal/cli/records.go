package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/uniterm/internal/seq"
)

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	Draft    seq.Draft
	Operator string
}

// SaveResult is the JSON payload of save.
type SaveResult struct {
	ID int64 `json:"id"`
	seq.Label
}

// ListResult is the JSON payload of list.
type ListResult struct {
	Records []seq.Label `json:"records"`
}

// RecordsResult is the JSON payload of show.
type RecordsResult struct {
	Records []seq.Record `json:"records"`
}

// DeleteResult is the JSON payload of delete.
type DeleteResult struct {
	Name    string `json:"name"`
	Deleted int64  `json:"deleted"`
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a sequencing record",
		Long: `Save a named pair of uniterms, their alternates and the operator
joining them. Fields are trimmed and NFC-normalised before they are stored.

Saving the same name and description twice creates two records; use
"uniterm get <id>" to tell them apart.

Example:
  uniterm save --name Seq1 --description demo --a a --b b --a-alt "a'" --b-alt "b'"
  uniterm save --name Par --description demo --a p --b q --a-alt x --b-alt y --operator ,`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Draft.Name, "name", "", "record name")
	flags.StringVar(&opts.Draft.Description, "description", "", "record description")
	flags.StringVar(&opts.Draft.TermA, "a", "", "first uniterm")
	flags.StringVar(&opts.Draft.TermB, "b", "", "second uniterm")
	flags.StringVar(&opts.Draft.TermAAlt, "a-alt", "", "alternate for the first uniterm")
	flags.StringVar(&opts.Draft.TermBAlt, "b-alt", "", "alternate for the second uniterm")
	flags.StringVar(&opts.Operator, "operator", string(seq.OpSequence), `operator joining the uniterms (";" or ",")`)

	return cmd
}

func runSave(opts *SaveOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer opts.closeStore(st)

	d := opts.Draft
	d.Operator = seq.Operator(opts.Operator)

	id, err := st.Create(cmd.Context(), d)
	if err != nil {
		return formatter.Fail("failed to save record", err)
	}

	label := seq.Label{Name: seq.Normalize(d.Name), Description: seq.Normalize(d.Description)}
	if formatter.JSON() {
		return formatter.Success(SaveResult{ID: id, Label: label})
	}
	fmt.Fprintf(formatter.Writer, "✓ Saved record %d (%s / %s)\n", id, label.Name, label.Description)
	return nil
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List record names and descriptions",
		Long:          "List the name and description of every record, oldest first.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer opts.closeStore(st)

	labels := []seq.Label{}
	for l, err := range st.List(cmd.Context()) {
		if err != nil {
			return formatter.Fail("failed to list records", err)
		}
		labels = append(labels, l)
	}

	if formatter.JSON() {
		return formatter.Success(ListResult{Records: labels})
	}
	if len(labels) == 0 {
		fmt.Fprintln(formatter.Writer, "No records.")
		return nil
	}
	for _, l := range labels {
		fmt.Fprintf(formatter.Writer, "%s\t%s\n", l.Name, l.Description)
	}
	return nil
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name> <description>",
		Short: "Show records matching a name and description",
		Long: `Show every record whose name and description match exactly.

Several records can share a name and description; each is printed with
its id.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runShow(opts *RootOptions, name, description string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer opts.closeStore(st)

	records, err := st.FetchByNameAndDescription(cmd.Context(), name, description)
	if err != nil {
		return formatter.Fail("failed to fetch records", err)
	}

	if formatter.JSON() {
		return formatter.Success(RecordsResult{Records: records})
	}
	if len(records) == 0 {
		fmt.Fprintf(formatter.Writer, "No records named %s / %s.\n", name, description)
		return nil
	}
	for _, rec := range records {
		writeRecord(formatter.Writer, rec, opts.RenderOperator)
	}
	return nil
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id>",
		Short:         "Show the record with the given id",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], cmd)
		},
	}
}

func runGet(opts *RootOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		_ = formatter.Error(CodeValidation, fmt.Sprintf("invalid id %q", arg), nil)
		return WrapExitError(ExitCommandError, "invalid id", err)
	}

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer opts.closeStore(st)

	rec, err := st.Get(cmd.Context(), id)
	if err != nil {
		return formatter.Fail("failed to get record", err)
	}

	if formatter.JSON() {
		return formatter.Success(rec)
	}
	writeRecord(formatter.Writer, rec, opts.RenderOperator)
	return nil
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete every record with the given name",
		Long: `Delete every record whose name matches exactly, whatever its
description. Deleting an unknown name succeeds and removes nothing.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], cmd)
		},
	}
}

func runDelete(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer opts.closeStore(st)

	n, err := st.DeleteByName(cmd.Context(), name)
	if err != nil {
		return formatter.Fail("failed to delete records", err)
	}

	if formatter.JSON() {
		return formatter.Success(DeleteResult{Name: name, Deleted: n})
	}
	fmt.Fprintf(formatter.Writer, "✓ Deleted %d record(s) named %s\n", n, name)
	return nil
}

// writeRecord prints one record as an indented block.
func writeRecord(w io.Writer, rec seq.Record, renderOp bool) {
	fmt.Fprintf(w, "#%d %s / %s\n", rec.ID, rec.Name, rec.Description)
	fmt.Fprintf(w, "  expression: %s\n", render(rec.Expression(), renderOp))
	fmt.Fprintf(w, "  alternates: %s | %s\n", rec.TermAAlt, rec.TermBAlt)
	fmt.Fprintf(w, "  operator:   %s\n", rec.Operator)
}

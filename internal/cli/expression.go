package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/roach88/uniterm/internal/seq"
	"github.com/roach88/uniterm/internal/store"
)

// ExpressionResult is the JSON payload of compose and substitute.
type ExpressionResult struct {
	seq.Expression
	Render   string        `json:"render"`
	Segments []seq.Segment `json:"segments"`
}

// ComposeOptions holds flags for the compose command.
type ComposeOptions struct {
	*RootOptions
	Operator string
}

// SubstituteOptions holds flags for the substitute command.
type SubstituteOptions struct {
	*RootOptions
	Side  string
	Index int
}

// NewComposeCommand creates the compose command.
func NewComposeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ComposeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compose <term-a> <term-b>",
		Short: "Compose two uniterms into an expression",
		Long: `Compose two uniterms with an operator and print the expression.
Nothing is stored.

Example:
  uniterm compose a b
  uniterm compose a b --operator , --render-operator`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompose(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Operator, "operator", string(seq.OpSequence), `operator joining the uniterms (";" or ",")`)

	return cmd
}

func runCompose(opts *ComposeOptions, termA, termB string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	expr, err := seq.Compose(termA, termB, seq.Operator(opts.Operator))
	if err != nil {
		return formatter.Fail("failed to compose", err)
	}
	return outputExpression(formatter, expr, opts.RenderOperator)
}

// NewSubstituteCommand creates the substitute command.
func NewSubstituteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubstituteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "substitute <name> <description>",
		Short: "Substitute one uniterm of a stored record with its alternate",
		Long: `Load the record with the given name and description and replace the
chosen uniterm with its alternate. The stored record is not changed.

When several records match, --index picks one (0 is the oldest).

Example:
  uniterm substitute Seq1 demo --side left
  uniterm substitute Seq1 demo --side b --index 1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubstitute(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Side, "side", "", "uniterm to substitute (left|right, or a|b)")
	cmd.Flags().IntVar(&opts.Index, "index", 0, "which match to use when several records share the name and description")
	_ = cmd.MarkFlagRequired("side")

	return cmd
}

func runSubstitute(opts *SubstituteOptions, name, description string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	side, err := seq.ParseSide(opts.Side)
	if err != nil {
		return formatter.Fail("failed to substitute", err)
	}

	st, err := opts.openStore()
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer opts.closeStore(st)

	records, err := st.FetchByNameAndDescription(cmd.Context(), name, description)
	if err != nil {
		return formatter.Fail("failed to fetch records", err)
	}
	if opts.Index < 0 || opts.Index >= len(records) {
		err := fmt.Errorf("%s / %s match %d of %d: %w", name, description, opts.Index, len(records), store.ErrNotFound)
		return formatter.Fail("failed to substitute", err)
	}
	if len(records) > 1 {
		formatter.VerboseLog("%d records match %s / %s; using #%d", len(records), name, description, records[opts.Index].ID)
	}

	expr, err := seq.Substitute(records[opts.Index], side)
	if err != nil {
		return formatter.Fail("failed to substitute", err)
	}
	return outputExpression(formatter, expr, opts.RenderOperator)
}

func render(expr seq.Expression, renderOp bool) string {
	if renderOp {
		return expr.RenderWithOperator()
	}
	return expr.Render()
}

func outputExpression(formatter *OutputFormatter, expr seq.Expression, renderOp bool) error {
	segments := expr.Segments()
	if renderOp {
		segments = expr.SegmentsWithOperator()
	}

	if formatter.JSON() {
		return formatter.Success(ExpressionResult{
			Expression: expr,
			Render:     render(expr, renderOp),
			Segments:   segments,
		})
	}

	fmt.Fprintln(formatter.Writer, render(expr, renderOp))
	writeHighlight(formatter.Writer, segments)
	return nil
}

// writeHighlight underlines highlighted segments with carets. Nothing is
// written if no segment is highlighted.
func writeHighlight(w io.Writer, segments []seq.Segment) {
	var (
		line   strings.Builder
		marked bool
	)
	for _, s := range segments {
		ch := " "
		if s.Highlight {
			ch = "^"
			marked = true
		}
		line.WriteString(strings.Repeat(ch, utf8.RuneCountInString(s.Text)))
	}
	if marked {
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

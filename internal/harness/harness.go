package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/roach88/uniterm/internal/catalog"
	"github.com/roach88/uniterm/internal/seq"
	"github.com/roach88/uniterm/internal/store"
)

// Harness executes one scenario against its own store.
type Harness struct {
	store    *store.Store
	logger   *slog.Logger
	seq      int64
	renderOp bool
}

// Options configures Run.
type Options struct {
	// Logger receives diagnostics. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
//  1. Create fresh in-memory database
//  2. Import catalogues
//  3. Create setup records
//  4. Execute flow steps with expect validation
//  5. Evaluate assertions
//
// The returned error reports problems running the scenario itself (a bad
// catalogue, a failing setup record). Failed expectations are reported in
// Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithOptions(scenario, Options{})
}

// RunWithOptions is Run with explicit options.
func RunWithOptions(scenario *Scenario, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	}

	storeOpts := []store.Option{store.WithLogger(logger)}
	if scenario.LegacySchema {
		storeOpts = append(storeOpts, store.WithLegacySchema())
	}
	st, err := store.Open(":memory:", storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:    st,
		logger:   logger,
		renderOp: scenario.RenderOperator,
	}

	ctx := context.Background()
	result := NewResult()

	for _, path := range scenario.Catalogs {
		if err := h.importCatalog(ctx, path, result); err != nil {
			return nil, err
		}
	}

	for i, d := range scenario.Setup {
		id, err := st.Create(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("setup record %d: %w", i, err)
		}
		h.trace(result, OpSetup, d, CreateResult{ID: id}, nil)
	}

	for i, step := range scenario.Flow {
		h.logger.Debug("executing step", "index", i, "op", step.Op())
		event := h.execute(ctx, step, result)
		if msg := checkExpect(event, step.Expect); msg != "" {
			result.AddError(fmt.Sprintf("flow step %d (%s): %s", i, step.Op(), msg))
		}
	}

	for _, msg := range EvaluateAssertions(ctx, result, scenario.Assertions, st) {
		result.AddError(msg)
	}

	return result, nil
}

func (h *Harness) importCatalog(ctx context.Context, path string, result *Result) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalogue: %w", err)
	}
	entries, errs := catalog.LoadSource(path, src, catalog.LoadModeFailFast)
	if len(errs) > 0 {
		return fmt.Errorf("catalogue %s: %w", path, errs[0])
	}
	ids, err := catalog.Import(ctx, h.store, entries)
	if err != nil {
		return fmt.Errorf("catalogue %s: %w", path, err)
	}
	for i, e := range entries {
		h.trace(result, OpImport, e.Draft, CreateResult{ID: ids[i]}, nil)
	}
	return nil
}

// execute runs one step and appends its trace event.
func (h *Harness) execute(ctx context.Context, step Step, result *Result) TraceEvent {
	switch {
	case step.Create != nil:
		id, err := h.store.Create(ctx, *step.Create)
		return h.trace(result, OpCreate, *step.Create, orNil(CreateResult{ID: id}, err), err)

	case step.List != nil:
		labels, err := h.store.Labels(ctx)
		return h.trace(result, OpList, nil, orNil(labels, err), err)

	case step.Fetch != nil:
		records, err := h.store.FetchByNameAndDescription(ctx, step.Fetch.Name, step.Fetch.Description)
		return h.trace(result, OpFetch, *step.Fetch, orNil(records, err), err)

	case step.Get != nil:
		rec, err := h.store.Get(ctx, step.Get.ID)
		return h.trace(result, OpGet, *step.Get, orNil(rec, err), err)

	case step.Delete != nil:
		n, err := h.store.DeleteByName(ctx, step.Delete.Name)
		return h.trace(result, OpDelete, *step.Delete, orNil(DeleteResult{Deleted: n}, err), err)

	case step.Compose != nil:
		args := step.Compose
		expr, err := seq.Compose(args.TermA, args.TermB, args.Operator)
		return h.trace(result, OpCompose, *args, orNil(h.expression(expr), err), err)

	case step.Substitute != nil:
		expr, err := h.substitute(ctx, *step.Substitute)
		return h.trace(result, OpSubstitute, *step.Substitute, orNil(h.expression(expr), err), err)

	case step.Close != nil:
		err := h.store.Close()
		return h.trace(result, OpClose, nil, nil, err)
	}
	return h.trace(result, "", nil, nil, errors.New("empty step"))
}

func (h *Harness) substitute(ctx context.Context, args SubstituteArgs) (seq.Expression, error) {
	side, err := seq.ParseSide(args.Side)
	if err != nil {
		return seq.Expression{}, err
	}
	records, err := h.store.FetchByNameAndDescription(ctx, args.Name, args.Description)
	if err != nil {
		return seq.Expression{}, err
	}
	if args.Index < 0 || args.Index >= len(records) {
		return seq.Expression{}, fmt.Errorf("%s/%s match %d: %w", args.Name, args.Description, args.Index, store.ErrNotFound)
	}
	return seq.Substitute(records[args.Index], side)
}

func (h *Harness) expression(expr seq.Expression) ExpressionResult {
	render := expr.Render()
	if h.renderOp {
		render = expr.RenderWithOperator()
	}
	return ExpressionResult{Expression: expr, Render: render}
}

// trace appends an event with the next sequence number.
func (h *Harness) trace(result *Result, op string, args, value any, err error) TraceEvent {
	h.seq++
	event := TraceEvent{
		Seq:     h.seq,
		Op:      op,
		Args:    args,
		Outcome: "ok",
		Result:  value,
	}
	if err != nil {
		event.Outcome = "error"
		event.Error = ErrorKind(err)
		event.Field = seq.ValidationField(err)
	}
	result.Trace = append(result.Trace, event)
	return event
}

// orNil drops v when err is set so failed steps carry no result.
func orNil(v any, err error) any {
	if err != nil {
		return nil
	}
	return v
}

// ErrorKind classifies an error for the trace.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case seq.IsValidationError(err):
		return ErrKindValidation
	case errors.Is(err, store.ErrClosed):
		return ErrKindClosed
	case errors.Is(err, store.ErrNotFound):
		return ErrKindNotFound
	case store.IsStorageError(err):
		return ErrKindStorage
	}
	return ErrKindOther
}

// checkExpect compares an event with its expectation and returns a failure
// message, or "" if it matched.
func checkExpect(event TraceEvent, expect *Expect) string {
	if expect == nil {
		if event.Outcome != "ok" {
			return fmt.Sprintf("unexpected %s error", event.Error)
		}
		return ""
	}

	if expect.Error != "" {
		if event.Outcome != "error" {
			return fmt.Sprintf("expected %s error, got success", expect.Error)
		}
		if event.Error != expect.Error {
			return fmt.Sprintf("expected %s error, got %s", expect.Error, event.Error)
		}
		if expect.Field != "" && event.Field != expect.Field {
			return fmt.Sprintf("expected error on field %q, got %q", expect.Field, event.Field)
		}
		return ""
	}
	if event.Outcome != "ok" {
		return fmt.Sprintf("unexpected %s error", event.Error)
	}

	var problems []string
	if expect.Count != nil {
		if n, ok := resultCount(event.Result); !ok {
			problems = append(problems, "count: result has no count")
		} else if n != *expect.Count {
			problems = append(problems, fmt.Sprintf("count: expected %d, got %d", *expect.Count, n))
		}
	}

	if expr, ok := event.Result.(ExpressionResult); ok {
		if expect.Render != "" && expr.Render != expect.Render {
			problems = append(problems, fmt.Sprintf("render: expected %q, got %q", expect.Render, expr.Render))
		}
		if expect.Left != "" && expr.Left != expect.Left {
			problems = append(problems, fmt.Sprintf("left: expected %q, got %q", expect.Left, expr.Left))
		}
		if expect.Right != "" && expr.Right != expect.Right {
			problems = append(problems, fmt.Sprintf("right: expected %q, got %q", expect.Right, expr.Right))
		}
		if expect.Substituted != "" && expr.Substituted.String() != expect.Substituted {
			problems = append(problems, fmt.Sprintf("substituted_side: expected %q, got %q", expect.Substituted, expr.Substituted))
		}
	} else if expect.Render != "" || expect.Left != "" || expect.Right != "" || expect.Substituted != "" {
		problems = append(problems, "expression expectations on a step without an expression result")
	}

	if expect.Labels != nil {
		labels, _ := event.Result.([]seq.Label)
		if !slices.Equal(labels, expect.Labels) {
			problems = append(problems, fmt.Sprintf("labels: expected %v, got %v", expect.Labels, labels))
		}
	}

	return strings.Join(problems, "; ")
}

func resultCount(v any) (int, bool) {
	switch r := v.(type) {
	case []seq.Label:
		return len(r), true
	case []seq.Record:
		return len(r), true
	case DeleteResult:
		return int(r.Deleted), true
	}
	return 0, false
}

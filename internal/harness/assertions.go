package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/uniterm/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s\n", event.Seq, event.Op, event.Outcome)
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns failure messages.
//
// record_count reads the store, so it reports a failure if the flow closed
// the store.
func EvaluateAssertions(ctx context.Context, result *Result, assertions []Assertion, st *store.Store) []string {
	var failures []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertRecordCount:
			err = assertRecordCount(ctx, st, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

// assertRecordCount checks how many records are stored, in total or for
// one name/description pair.
func assertRecordCount(ctx context.Context, st *store.Store, a Assertion) error {
	var (
		count int
		what  string
	)
	if a.Name != "" {
		records, err := st.FetchByNameAndDescription(ctx, a.Name, a.Description)
		if err != nil {
			return fmt.Errorf("record_count: %w", err)
		}
		count = len(records)
		what = fmt.Sprintf("records named %s/%s", a.Name, a.Description)
	} else {
		labels, err := st.Labels(ctx)
		if err != nil {
			return fmt.Errorf("record_count: %w", err)
		}
		count = len(labels)
		what = "records"
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertRecordCount,
			Expected: fmt.Sprintf("%d %s", a.Count, what),
			Actual:   fmt.Sprintf("%d %s", count, what),
		}
	}
	return nil
}

// assertTraceCount checks if the operation appears exactly the specified
// number of times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Op == a.Op {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Op),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertTraceOrder checks that operations first appear in the given order.
// Operations don't need to be consecutive.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	// First position of each expected op, 1-indexed
	positions := make(map[string]int)
	for i, event := range trace {
		if positions[event.Op] == 0 {
			positions[event.Op] = i + 1
		}
	}

	for _, op := range a.Ops {
		if positions[op] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all ops present: %v", a.Ops),
				Actual:   fmt.Sprintf("missing op: %s", op),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(a.Ops); i++ {
		prev, curr := a.Ops[i-1], a.Ops[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("ops in order: %v", a.Ops),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/uniterm/internal/seq"
)

// Scenario defines a test scenario: records to start from, a flow of
// operations with expectations, and assertions over the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// LegacySchema opens the store with the legacy variant.
	LegacySchema bool `yaml:"legacy_schema,omitempty"`

	// RenderOperator renders expressions with their stored operator.
	RenderOperator bool `yaml:"render_operator,omitempty"`

	// Catalogs lists CUE catalogue files imported before setup.
	// Paths are relative to the scenario file location.
	Catalogs []string `yaml:"catalogs,omitempty"`

	// Setup contains records created before the flow.
	// Setup records are assumed to be valid.
	Setup []seq.Draft `yaml:"setup,omitempty"`

	// Flow contains the operations under test.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final trace and store contents.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one operation in the flow. Exactly one operation field is set.
type Step struct {
	Create     *seq.Draft      `yaml:"create,omitempty"`
	List       *struct{}       `yaml:"list,omitempty"`
	Fetch      *seq.Label      `yaml:"fetch,omitempty"`
	Get        *GetArgs        `yaml:"get,omitempty"`
	Delete     *DeleteArgs     `yaml:"delete,omitempty"`
	Compose    *ComposeArgs    `yaml:"compose,omitempty"`
	Substitute *SubstituteArgs `yaml:"substitute,omitempty"`
	Close      *struct{}       `yaml:"close,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, the step only has to succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// GetArgs selects a record by id.
type GetArgs struct {
	ID int64 `yaml:"id" json:"id"`
}

// DeleteArgs selects records by name.
type DeleteArgs struct {
	Name string `yaml:"name" json:"name"`
}

// ComposeArgs are the inputs to Compose.
type ComposeArgs struct {
	TermA    string       `yaml:"term_a" json:"term_a"`
	TermB    string       `yaml:"term_b" json:"term_b"`
	Operator seq.Operator `yaml:"operator" json:"operator"`
}

// SubstituteArgs select a stored record and the side to substitute.
// The record is the Index-th match of Name and Description.
type SubstituteArgs struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Index       int    `yaml:"index,omitempty" json:"index,omitempty"`
	Side        string `yaml:"side" json:"side"`
}

// Expect specifies the expected outcome of a step. Unset fields are not
// checked.
type Expect struct {
	// Error is the expected error kind, e.g. "validation".
	Error string `yaml:"error,omitempty"`

	// Field is the expected validation field.
	Field string `yaml:"field,omitempty"`

	// Count is the expected number of labels, records or deletions.
	Count *int `yaml:"count,omitempty"`

	// Render is the expected display text of an expression.
	Render string `yaml:"render,omitempty"`

	Left        string `yaml:"left,omitempty"`
	Right       string `yaml:"right,omitempty"`
	Substituted string `yaml:"substituted_side,omitempty"`

	// Labels is the expected list output, in order.
	Labels []seq.Label `yaml:"labels,omitempty"`
}

// Assertion validates the trace or final store contents.
type Assertion struct {
	// Type specifies the assertion type:
	// - "record_count": Number of stored records, optionally for one name/description
	// - "trace_count": Number of times an operation appears in the trace
	// - "trace_order": Operations appear in the given order
	Type string `yaml:"type"`

	// Name and Description filter record_count.
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`

	// Op is the operation name (used by trace_count).
	Op string `yaml:"op,omitempty"`

	// Count is the expected number (record_count, trace_count).
	Count int `yaml:"count"`

	// Ops is the expected operation order (used by trace_order).
	Ops []string `yaml:"ops,omitempty"`
}

// Assertion type constants.
const (
	AssertRecordCount = "record_count"
	AssertTraceCount  = "trace_count"
	AssertTraceOrder  = "trace_order"
)

// LoadScenario reads and parses a scenario YAML file.
// Catalogue paths are resolved relative to the file's directory.
//
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i, p := range scenario.Catalogs {
		if !filepath.IsAbs(p) {
			scenario.Catalogs[i] = filepath.Join(base, p)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if n := step.opCount(); n != 1 {
			return fmt.Errorf("flow step %d: must name exactly one operation, found %d", i, n)
		}
		if step.Expect != nil && step.Expect.Error != "" && !validErrorKind(step.Expect.Error) {
			return fmt.Errorf("flow step %d: unknown error kind %q", i, step.Expect.Error)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertRecordCount:
			if (a.Name == "") != (a.Description == "") {
				return fmt.Errorf("assertion %d: record_count needs both name and description, or neither", i)
			}
		case AssertTraceCount:
			if a.Op == "" {
				return fmt.Errorf("assertion %d: trace_count requires op", i)
			}
		case AssertTraceOrder:
			if len(a.Ops) < 2 {
				return fmt.Errorf("assertion %d: trace_order requires at least two ops", i)
			}
		default:
			return fmt.Errorf("assertion %d: unknown type %q", i, a.Type)
		}
	}

	return nil
}

// Op returns the name of the step's operation.
func (s Step) Op() string {
	switch {
	case s.Create != nil:
		return OpCreate
	case s.List != nil:
		return OpList
	case s.Fetch != nil:
		return OpFetch
	case s.Get != nil:
		return OpGet
	case s.Delete != nil:
		return OpDelete
	case s.Compose != nil:
		return OpCompose
	case s.Substitute != nil:
		return OpSubstitute
	case s.Close != nil:
		return OpClose
	}
	return ""
}

func (s Step) opCount() int {
	n := 0
	for _, set := range []bool{
		s.Create != nil, s.List != nil, s.Fetch != nil, s.Get != nil,
		s.Delete != nil, s.Compose != nil, s.Substitute != nil, s.Close != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

func validErrorKind(kind string) bool {
	switch kind {
	case ErrKindValidation, ErrKindStorage, ErrKindClosed, ErrKindNotFound, ErrKindOther:
		return true
	}
	return false
}

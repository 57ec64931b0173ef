package harness

import (
	"github.com/roach88/uniterm/internal/seq"
)

// Operation names recorded in the trace.
const (
	OpImport     = "import"
	OpSetup      = "setup"
	OpCreate     = "create"
	OpList       = "list"
	OpFetch      = "fetch"
	OpGet        = "get"
	OpDelete     = "delete"
	OpCompose    = "compose"
	OpSubstitute = "substitute"
	OpClose      = "close"
)

// Error kinds reported in the trace and matched by expect.error.
const (
	ErrKindValidation = "validation"
	ErrKindStorage    = "storage"
	ErrKindClosed     = "closed"
	ErrKindNotFound   = "not_found"
	ErrKindOther      = "error"
)

// TraceEvent records one executed operation.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Op      string `json:"op"`
	Args    any    `json:"args,omitempty"`
	Outcome string `json:"outcome"` // "ok" or "error"
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
	Field   string `json:"field,omitempty"`
}

// ExpressionResult is the traced form of a composed expression.
type ExpressionResult struct {
	seq.Expression
	Render string `json:"render"`
}

// CreateResult is the traced result of a create or setup step.
type CreateResult struct {
	ID int64 `json:"id"`
}

// DeleteResult is the traced result of a delete step.
type DeleteResult struct {
	Deleted int64 `json:"deleted"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every executed operation in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

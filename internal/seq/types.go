package seq

import (
	"fmt"
)

// Operator is the sequencing connective placed between two uniterms.
type Operator string

const (
	// OpSequence is the serial connective and the canonical separator.
	OpSequence Operator = ";"

	// OpParallel is the alternative connective.
	OpParallel Operator = ","
)

// CanonicalSeparator is the connective drawn by Expression.Render.
const CanonicalSeparator = OpSequence

// Operators lists the accepted operators in display order.
var Operators = []Operator{OpSequence, OpParallel}

// Valid reports whether op is one of the accepted operators.
func (op Operator) Valid() bool {
	return op == OpSequence || op == OpParallel
}

// ParseOperator converts user input to an Operator.
func ParseOperator(s string) (Operator, error) {
	op := Operator(s)
	if !op.Valid() {
		return "", &ValidationError{
			Field:   FieldOperator,
			Message: fmt.Sprintf("unknown operator %q: must be one of %q", s, Operators),
		}
	}
	return op, nil
}

// Side names an operand of a composed expression.
type Side int

const (
	// SideNone marks an expression with no substituted operand.
	SideNone Side = iota
	// SideLeft is the first operand (TermA).
	SideLeft
	// SideRight is the second operand (TermB).
	SideRight
)

// String returns "left", "right" or "" for SideNone.
func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return ""
	}
}

// MarshalText encodes the side as its String form.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes "left", "right" or the empty string.
func (s *Side) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = SideNone
		return nil
	}
	side, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = side
	return nil
}

// ParseSide accepts "left"/"a" and "right"/"b".
func ParseSide(s string) (Side, error) {
	switch s {
	case "left", "a", "A":
		return SideLeft, nil
	case "right", "b", "B":
		return SideRight, nil
	}
	return SideNone, &ValidationError{
		Field:   FieldSide,
		Message: fmt.Sprintf("unknown side %q: must be left or right", s),
	}
}

// Record is a stored sequencing record.
//
// Records are immutable once created. ID is assigned by storage and is the
// only unique key; Name and Description may repeat across records.
type Record struct {
	ID          int64    `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	TermA       string   `json:"term_a" yaml:"term_a"`
	TermB       string   `json:"term_b" yaml:"term_b"`
	TermAAlt    string   `json:"term_a_alt" yaml:"term_a_alt"`
	TermBAlt    string   `json:"term_b_alt" yaml:"term_b_alt"`
	Operator    Operator `json:"operator" yaml:"operator"`
	OperatorAlt Operator `json:"operator_alt" yaml:"operator_alt"`
}

// Draft is the input to creating a record: everything except the ID.
type Draft struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	TermA       string   `json:"term_a" yaml:"term_a"`
	TermB       string   `json:"term_b" yaml:"term_b"`
	TermAAlt    string   `json:"term_a_alt" yaml:"term_a_alt"`
	TermBAlt    string   `json:"term_b_alt" yaml:"term_b_alt"`
	Operator    Operator `json:"operator" yaml:"operator"`
}

// Label is the identifying pair shown when listing records.
type Label struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Label returns the record's identifying pair.
func (r Record) Label() Label {
	return Label{Name: r.Name, Description: r.Description}
}

// Expression is a composed expression: two operands and a connective,
// optionally marking which operand was substituted.
type Expression struct {
	Left        string   `json:"left" yaml:"left"`
	Right       string   `json:"right" yaml:"right"`
	Operator    Operator `json:"operator" yaml:"operator"`
	Substituted Side     `json:"substituted_side,omitempty" yaml:"substituted_side,omitempty"`
}

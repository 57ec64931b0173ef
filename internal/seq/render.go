package seq

import "fmt"

// Segment is one piece of rendered expression text.
type Segment struct {
	Text string `json:"text"`
	// Highlight is set on the operand that was substituted.
	Highlight bool `json:"highlight,omitempty"`
}

// Render returns the display text "<left> ; <right>".
//
// The connective is always CanonicalSeparator; see the package docs.
func (e Expression) Render() string {
	return fmt.Sprintf("%s %s %s", e.Left, CanonicalSeparator, e.Right)
}

// RenderWithOperator returns the display text using e.Operator, falling
// back to CanonicalSeparator when the operator is unset.
func (e Expression) RenderWithOperator() string {
	return fmt.Sprintf("%s %s %s", e.Left, e.displayOperator(), e.Right)
}

func (e Expression) displayOperator() Operator {
	if e.Operator == "" {
		return CanonicalSeparator
	}
	return e.Operator
}

// String implements fmt.Stringer.
func (e Expression) String() string {
	return e.Render()
}

// Segments splits Render output into left operand, separator and right
// operand. The substituted operand, if any, is highlighted.
func (e Expression) Segments() []Segment {
	return e.segments(CanonicalSeparator)
}

// SegmentsWithOperator is Segments for RenderWithOperator output.
func (e Expression) SegmentsWithOperator() []Segment {
	return e.segments(e.displayOperator())
}

func (e Expression) segments(op Operator) []Segment {
	return []Segment{
		{Text: e.Left, Highlight: e.Substituted == SideLeft},
		{Text: " " + string(op) + " "},
		{Text: e.Right, Highlight: e.Substituted == SideRight},
	}
}

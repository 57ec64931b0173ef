package seq

import (
	"fmt"
	"strings"
)

// Compose builds an expression from two terms and an operator.
//
// Both terms must be non-empty after trimming. The terms are used as given;
// Compose never rewrites its inputs.
func Compose(termA, termB string, op Operator) (Expression, error) {
	if strings.TrimSpace(termA) == "" {
		return Expression{}, missing(FieldTermA)
	}
	if strings.TrimSpace(termB) == "" {
		return Expression{}, missing(FieldTermB)
	}
	if !op.Valid() {
		return Expression{}, &ValidationError{
			Field:   FieldOperator,
			Message: fmt.Sprintf("unknown operator %q", op),
		}
	}
	return Expression{
		Left:     termA,
		Right:    termB,
		Operator: op,
	}, nil
}

// Expression returns the record's stored expression, unsubstituted.
func (r Record) Expression() Expression {
	return Expression{
		Left:     r.TermA,
		Right:    r.TermB,
		Operator: r.Operator,
	}
}

// Substitute replaces one operand of rec with its designated alternate.
//
// SideLeft swaps TermA for TermAAlt, SideRight swaps TermB for TermBAlt.
// The other operand and the record's operator are carried over unchanged,
// and the result marks the substituted side. rec itself is not modified, so
// substituting both sides of the same record yields two independent results.
func Substitute(rec Record, side Side) (Expression, error) {
	expr := rec.Expression()
	switch side {
	case SideLeft:
		if strings.TrimSpace(rec.TermAAlt) == "" {
			return Expression{}, &ValidationError{
				Field:   FieldTermAAlt,
				Message: "no alternate defined for the left term",
			}
		}
		expr.Left = rec.TermAAlt
	case SideRight:
		if strings.TrimSpace(rec.TermBAlt) == "" {
			return Expression{}, &ValidationError{
				Field:   FieldTermBAlt,
				Message: "no alternate defined for the right term",
			}
		}
		expr.Right = rec.TermBAlt
	default:
		return Expression{}, &ValidationError{
			Field:   FieldSide,
			Message: "side must be left or right",
		}
	}
	expr.Substituted = side
	return expr, nil
}

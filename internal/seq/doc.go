// Package seq holds the sequencing data model and the substitution engine.
//
// A sequencing record pairs two uniterms (TermA, TermB) joined by a
// sequencing operator, together with a designated alternate for each term.
// The engine builds composed expressions from terms and substitutes one
// operand of a record with its alternate.
//
// Everything in this package is pure: no I/O, no hidden state. Values are
// passed and returned by value, so a composed expression never changes after
// it has been produced.
//
// # Rendering
//
// Expression.Render always joins the operands with the canonical separator
// ";" even when the expression carries ",". Records saved with "," keep the
// operator, it is simply not drawn. RenderWithOperator draws the stored
// operator instead.
package seq

package seq

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize trims surrounding whitespace and converts s to Unicode NFC.
//
// Terms typed as "á" and "á" normalise to the same stored string, so
// exact-match lookups by name and description behave the way users expect.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Normalize returns a copy of d with every string field normalised.
func (d Draft) Normalize() Draft {
	return Draft{
		Name:        Normalize(d.Name),
		Description: Normalize(d.Description),
		TermA:       Normalize(d.TermA),
		TermB:       Normalize(d.TermB),
		TermAAlt:    Normalize(d.TermAAlt),
		TermBAlt:    Normalize(d.TermBAlt),
		Operator:    Operator(strings.TrimSpace(string(d.Operator))),
	}
}

// Validate checks d for the fields a stored record requires.
// Alternates are only required when requireAlternates is set (the strict
// schema); the legacy schema stores empty alternates.
//
// Validate does not normalise; call Normalize first for user input.
func (d Draft) Validate(requireAlternates bool) error {
	required := []struct {
		field string
		value string
	}{
		{FieldName, d.Name},
		{FieldDescription, d.Description},
		{FieldTermA, d.TermA},
		{FieldTermB, d.TermB},
	}
	if requireAlternates {
		required = append(required,
			struct {
				field string
				value string
			}{FieldTermAAlt, d.TermAAlt},
			struct {
				field string
				value string
			}{FieldTermBAlt, d.TermBAlt},
		)
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return missing(r.field)
		}
	}
	if d.Operator == "" {
		return missing(FieldOperator)
	}
	if _, err := ParseOperator(string(d.Operator)); err != nil {
		return err
	}
	return nil
}

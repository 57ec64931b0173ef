package seq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperator(t *testing.T) {
	op, err := ParseOperator(";")
	require.NoError(t, err)
	assert.Equal(t, OpSequence, op)

	op, err = ParseOperator(",")
	require.NoError(t, err)
	assert.Equal(t, OpParallel, op)

	_, err = ParseOperator("|")
	require.Error(t, err)
	assert.Equal(t, FieldOperator, ValidationField(err))
}

func TestParseSide(t *testing.T) {
	for _, in := range []string{"left", "a", "A"} {
		side, err := ParseSide(in)
		require.NoError(t, err, in)
		assert.Equal(t, SideLeft, side)
	}
	for _, in := range []string{"right", "b", "B"} {
		side, err := ParseSide(in)
		require.NoError(t, err, in)
		assert.Equal(t, SideRight, side)
	}
	_, err := ParseSide("middle")
	assert.True(t, IsValidationError(err))
}

func TestSideText(t *testing.T) {
	var s Side
	require.NoError(t, s.UnmarshalText([]byte("right")))
	assert.Equal(t, SideRight, s)

	require.NoError(t, s.UnmarshalText(nil))
	assert.Equal(t, SideNone, s)

	assert.Error(t, s.UnmarshalText([]byte("up")))
}

func TestDraftNormalize(t *testing.T) {
	d := Draft{
		Name:        "  Seq1 ",
		Description: "cafe\u0301",
		TermA:       "\ta",
		TermB:       "b\n",
		Operator:    " , ",
	}.Normalize()

	assert.Equal(t, "Seq1", d.Name)
	assert.Equal(t, "caf\u00e9", d.Description)
	assert.Equal(t, "a", d.TermA)
	assert.Equal(t, "b", d.TermB)
	assert.Equal(t, OpParallel, d.Operator)
}

func TestDraftValidate(t *testing.T) {
	valid := Draft{
		Name: "n", Description: "d",
		TermA: "a", TermB: "b", TermAAlt: "a'", TermBAlt: "b'",
		Operator: OpSequence,
	}
	require.NoError(t, valid.Validate(true))

	tests := []struct {
		name   string
		mutate func(*Draft)
		strict bool
		field  string
	}{
		{"missing name", func(d *Draft) { d.Name = "" }, true, FieldName},
		{"missing description", func(d *Draft) { d.Description = " " }, true, FieldDescription},
		{"missing term a", func(d *Draft) { d.TermA = "" }, true, FieldTermA},
		{"missing term b", func(d *Draft) { d.TermB = "" }, false, FieldTermB},
		{"missing alt a strict", func(d *Draft) { d.TermAAlt = "" }, true, FieldTermAAlt},
		{"missing alt b strict", func(d *Draft) { d.TermBAlt = "" }, true, FieldTermBAlt},
		{"missing operator", func(d *Draft) { d.Operator = "" }, true, FieldOperator},
		{"bad operator", func(d *Draft) { d.Operator = "+" }, true, FieldOperator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			err := d.Validate(tt.strict)
			require.Error(t, err)
			assert.Equal(t, tt.field, ValidationField(err))
		})
	}

	legacy := valid
	legacy.TermAAlt, legacy.TermBAlt = "", ""
	assert.NoError(t, legacy.Validate(false))
}

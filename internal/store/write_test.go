package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/uniterm/internal/seq"
)

func TestCreate_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id := mustCreate(t, s, seq.Draft{
		Name:        "Seq1",
		Description: "demo",
		TermA:       "a",
		TermB:       "b",
		TermAAlt:    "a'",
		TermBAlt:    "b'",
		Operator:    seq.OpSequence,
	})

	records, err := s.FetchByNameAndDescription(ctx, "Seq1", "demo")
	if err != nil {
		t.Fatalf("FetchByNameAndDescription() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	want := seq.Record{
		ID:          id,
		Name:        "Seq1",
		Description: "demo",
		TermA:       "a",
		TermB:       "b",
		TermAAlt:    "a'",
		TermBAlt:    "b'",
		Operator:    seq.OpSequence,
		OperatorAlt: seq.OpSequence,
	}
	if records[0] != want {
		t.Errorf("record = %+v, want %+v", records[0], want)
	}
}

func TestCreate_StoresParallelOperator(t *testing.T) {
	s := createTestStore(t)

	d := createTestDraft("Par", "comma")
	d.Operator = seq.OpParallel
	id := mustCreate(t, s, d)

	rec, err := s.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if rec.Operator != seq.OpParallel {
		t.Errorf("Operator = %q, want %q", rec.Operator, seq.OpParallel)
	}
	if rec.OperatorAlt != seq.OpSequence {
		t.Errorf("OperatorAlt = %q, want %q", rec.OperatorAlt, seq.OpSequence)
	}
}

func TestCreate_MonotonicIDs(t *testing.T) {
	s := createTestStore(t)

	var last int64
	for i := 0; i < 5; i++ {
		id := mustCreate(t, s, createTestDraft("Seq", "dup"))
		if id <= last {
			t.Fatalf("id %d not greater than previous %d", id, last)
		}
		last = id
	}
}

func TestCreate_IDsNotReusedAfterDelete(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := mustCreate(t, s, createTestDraft("Gone", "demo"))
	if _, err := s.DeleteByName(ctx, "Gone"); err != nil {
		t.Fatalf("DeleteByName() failed: %v", err)
	}
	second := mustCreate(t, s, createTestDraft("Next", "demo"))

	if second <= first {
		t.Errorf("id %d reused after delete (previous %d)", second, first)
	}
}

func TestCreate_TrimsAndNormalizes(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	d := createTestDraft("  Seq1  ", " demo\t")
	d.TermA = "cafe\u0301 "
	mustCreate(t, s, d)

	records, err := s.FetchByNameAndDescription(ctx, "Seq1", "demo")
	if err != nil {
		t.Fatalf("FetchByNameAndDescription() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].TermA != "caf\u00e9" {
		t.Errorf("TermA = %q, want NFC %q", records[0].TermA, "caf\u00e9")
	}
}

func TestCreate_LookupWithInputKeys(t *testing.T) {
	tests := []struct {
		name       string
		inName     string
		inDesc     string
		storedName string
		storedDesc string
	}{
		{"trailing space", "Seq1 ", "demo", "Seq1", "demo"},
		{"surrounding whitespace", "  Seq1\t", " demo ", "Seq1", "demo"},
		{"decomposed accent", "cafe\u0301", "d\u00e9mo", "caf\u00e9", "d\u00e9mo"},
		{"decomposed description", "Seq1", "de\u0301mo ", "Seq1", "d\u00e9mo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createTestStore(t)
			ctx := context.Background()
			id := mustCreate(t, s, createTestDraft(tt.inName, tt.inDesc))

			records, err := s.FetchByNameAndDescription(ctx, tt.inName, tt.inDesc)
			if err != nil {
				t.Fatalf("FetchByNameAndDescription() failed: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("fetch with input keys: got %d records, want 1", len(records))
			}
			if records[0].ID != id {
				t.Errorf("id = %d, want %d", records[0].ID, id)
			}
			if records[0].Name != tt.storedName || records[0].Description != tt.storedDesc {
				t.Errorf("stored %q/%q, want %q/%q", records[0].Name, records[0].Description, tt.storedName, tt.storedDesc)
			}

			// The normalised form finds the same record.
			records, err = s.FetchByNameAndDescription(ctx, tt.storedName, tt.storedDesc)
			if err != nil {
				t.Fatalf("FetchByNameAndDescription() failed: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("fetch with stored keys: got %d records, want 1", len(records))
			}

			n, err := s.DeleteByName(ctx, tt.inName)
			if err != nil {
				t.Fatalf("DeleteByName() failed: %v", err)
			}
			if n != 1 {
				t.Errorf("deleted %d, want 1", n)
			}
			if rows := countRows(t, s); rows != 0 {
				t.Errorf("rows = %d, want 0", rows)
			}
		})
	}
}

func TestCreate_ValidationLeavesNoRow(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*seq.Draft)
		field  string
	}{
		{"empty name", func(d *seq.Draft) { d.Name = "" }, seq.FieldName},
		{"empty description", func(d *seq.Draft) { d.Description = "" }, seq.FieldDescription},
		{"blank term a", func(d *seq.Draft) { d.TermA = "   " }, seq.FieldTermA},
		{"empty term b", func(d *seq.Draft) { d.TermB = "" }, seq.FieldTermB},
		{"empty alt a", func(d *seq.Draft) { d.TermAAlt = "" }, seq.FieldTermAAlt},
		{"empty alt b", func(d *seq.Draft) { d.TermBAlt = "" }, seq.FieldTermBAlt},
		{"bad operator", func(d *seq.Draft) { d.Operator = "+" }, seq.FieldOperator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createTestStore(t)
			mustCreate(t, s, createTestDraft("Keep", "demo"))

			d := createTestDraft("Seq1", "demo")
			tt.mutate(&d)
			_, err := s.Create(context.Background(), d)

			if !errors.Is(err, seq.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if got := seq.ValidationField(err); got != tt.field {
				t.Errorf("field = %q, want %q", got, tt.field)
			}
			if n := countRows(t, s); n != 1 {
				t.Errorf("rows = %d, want 1 (no partial write)", n)
			}
		})
	}
}

func TestCreate_LegacyAllowsEmptyAlternates(t *testing.T) {
	s := createTestStore(t, WithLegacySchema())

	d := createTestDraft("Old", "legacy")
	d.TermAAlt, d.TermBAlt = "", ""
	id := mustCreate(t, s, d)

	rec, err := s.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if rec.TermAAlt != "" || rec.TermBAlt != "" {
		t.Errorf("alternates = %q/%q, want empty", rec.TermAAlt, rec.TermBAlt)
	}

	if _, err := seq.Substitute(rec, seq.SideLeft); !seq.IsValidationError(err) {
		t.Errorf("Substitute with empty alternate: got %v, want validation error", err)
	}
}

func TestCreate_DuplicatesPermitted(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a := mustCreate(t, s, createTestDraft("Seq1", "demo"))
	d := createTestDraft("Seq1", "demo")
	d.TermA = "x"
	b := mustCreate(t, s, d)

	records, err := s.FetchByNameAndDescription(ctx, "Seq1", "demo")
	if err != nil {
		t.Fatalf("FetchByNameAndDescription() failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != a || records[1].ID != b {
		t.Errorf("ids = %d,%d want %d,%d", records[0].ID, records[1].ID, a, b)
	}
	if records[1].TermA != "x" {
		t.Errorf("second TermA = %q, want %q", records[1].TermA, "x")
	}
}

func TestDeleteByName(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	mustCreate(t, s, createTestDraft("X", "one"))
	mustCreate(t, s, createTestDraft("X", "two"))
	mustCreate(t, s, createTestDraft("Y", "one"))

	n, err := s.DeleteByName(ctx, "X")
	if err != nil {
		t.Fatalf("DeleteByName() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}

	for _, desc := range []string{"one", "two"} {
		records, err := s.FetchByNameAndDescription(ctx, "X", desc)
		if err != nil {
			t.Fatalf("FetchByNameAndDescription() failed: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("X/%s still has %d records", desc, len(records))
		}
	}

	records, err := s.FetchByNameAndDescription(ctx, "Y", "one")
	if err != nil {
		t.Fatalf("FetchByNameAndDescription() failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Y/one has %d records, want 1", len(records))
	}
}

func TestDeleteByName_Unknown(t *testing.T) {
	s := createTestStore(t)
	mustCreate(t, s, createTestDraft("Keep", "demo"))

	n, err := s.DeleteByName(context.Background(), "missing")
	if err != nil {
		t.Fatalf("DeleteByName() on unknown name failed: %v", err)
	}
	if n != 0 {
		t.Errorf("deleted %d, want 0", n)
	}
	if rows := countRows(t, s); rows != 1 {
		t.Errorf("rows = %d, want 1", rows)
	}
}

func TestDeleteByName_ExactMatch(t *testing.T) {
	s := createTestStore(t)
	mustCreate(t, s, createTestDraft("Seq", "demo"))
	mustCreate(t, s, createTestDraft("Seq1", "demo"))

	if _, err := s.DeleteByName(context.Background(), "seq"); err != nil {
		t.Fatalf("DeleteByName() failed: %v", err)
	}
	if rows := countRows(t, s); rows != 2 {
		t.Errorf("rows = %d, want 2 (match must be exact)", rows)
	}
}

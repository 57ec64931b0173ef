package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/uniterm/internal/seq"
)

// createTestStore creates a new strict store in a temp directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestDraft creates a draft with every field populated.
func createTestDraft(name, description string) seq.Draft {
	return seq.Draft{
		Name:        name,
		Description: description,
		TermA:       "a",
		TermB:       "b",
		TermAAlt:    "a'",
		TermBAlt:    "b'",
		Operator:    seq.OpSequence,
	}
}

// mustCreate inserts d and fails the test on error.
func mustCreate(t *testing.T, s *Store, d seq.Draft) int64 {
	t.Helper()
	id, err := s.Create(context.Background(), d)
	if err != nil {
		t.Fatalf("Create(%q, %q) failed: %v", d.Name, d.Description, err)
	}
	return id
}

// countRows returns the number of rows in sequences.
func countRows(t *testing.T, s *Store) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sequences").Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

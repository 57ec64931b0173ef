// Package testutil provides shared fixtures for tests: demo records,
// seeded databases and deterministic trace ids.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/uniterm/internal/seq"
	"github.com/roach88/uniterm/internal/store"
)

// Draft returns a valid strict-mode draft with terms a, b, a' and b'
// joined by ";".
func Draft(name, description string) seq.Draft {
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

// DBPath returns a database path inside a fresh temp directory. The file
// does not exist yet.
func DBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "uniterm.sqlite3")
}

// Seed opens the database at path, creates each draft in order and closes
// it again. It returns the assigned ids.
func Seed(t *testing.T, path string, drafts ...seq.Draft) []int64 {
	t.Helper()
	return SeedWith(t, path, nil, drafts...)
}

// SeedWith is Seed with store options, e.g. store.WithLegacySchema.
func SeedWith(t *testing.T, path string, opts []store.Option, drafts ...seq.Draft) []int64 {
	t.Helper()
	st, err := store.Open(path, opts...)
	require.NoError(t, err)
	defer st.Close()

	ids := make([]int64, 0, len(drafts))
	for _, d := range drafts {
		id, err := st.Create(context.Background(), d)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

// Labels returns every label stored in the database at path.
func Labels(t *testing.T, path string, opts ...store.Option) []seq.Label {
	t.Helper()
	st, err := store.Open(path, opts...)
	require.NoError(t, err)
	defer st.Close()

	labels, err := st.Labels(context.Background())
	require.NoError(t, err)
	return labels
}

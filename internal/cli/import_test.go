package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/uniterm/internal/seq"
	"github.com/roach88/uniterm/internal/testutil"
)

func writeCatalog(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "records.cue"), []byte(src), 0644))
	return dir
}

const validCatalog = `package catalog

record: Seq1: {
	description: "demo"
	a:           "a"
	b:           "b"
	a_alt:       "a'"
	b_alt:       "b'"
}

record: par: {
	name:        "Parallel"
	description: "demo"
	a:           "p"
	b:           "q"
	a_alt:       "p'"
	b_alt:       "q'"
	operator:    ","
}
`

func TestImportCommand(t *testing.T) {
	dir := writeCatalog(t, validCatalog)
	db := testutil.DBPath(t)

	out, err := runCmd(t, NewImportCommand(&RootOptions{Format: "text", Database: db}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Imported 2 record(s)")

	assert.Equal(t, []seq.Label{
		{Name: "Seq1", Description: "demo"},
		{Name: "Parallel", Description: "demo"},
	}, testutil.Labels(t, db))
}

func TestImportCommandJSON(t *testing.T) {
	dir := writeCatalog(t, validCatalog)

	out, err := runCmd(t, NewImportCommand(&RootOptions{Format: "json", Database: testutil.DBPath(t)}), dir)
	require.NoError(t, err)

	var resp struct {
		Data ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.Data.Imported)
	assert.Equal(t, []int64{1, 2}, resp.Data.IDs)
	assert.Equal(t, []string{"Seq1", "par"}, resp.Data.Keys)
}

func TestImportCommandDryRun(t *testing.T) {
	dir := writeCatalog(t, validCatalog)
	db := testutil.DBPath(t)

	out, err := runCmd(t, NewImportCommand(&RootOptions{Format: "text", Database: db}), dir, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "2 record(s) valid")

	_, statErr := os.Stat(db)
	assert.True(t, os.IsNotExist(statErr), "dry run must not create the database")
}

func TestImportCommandInvalidEntry(t *testing.T) {
	dir := writeCatalog(t, `package catalog

record: good: {description: "d", a: "a", b: "b", a_alt: "x", b_alt: "y"}
record: bad: {description: "d", a: "a"}
`)
	db := testutil.DBPath(t)

	out, err := runCmd(t, NewImportCommand(&RootOptions{Format: "text", Database: db}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Import failed")
	assert.Contains(t, out, "E101")
	assert.Contains(t, out, "record.bad")

	_, statErr := os.Stat(db)
	assert.True(t, os.IsNotExist(statErr))
}

func TestImportCommandCollectAllJSON(t *testing.T) {
	dir := writeCatalog(t, `package catalog

record: one: {description: "d", a: "a"}
record: two: {description: "d", a: "a", b: "b", operator: "+"}
`)

	out, err := runCmd(t, NewImportCommand(&RootOptions{Format: "json", Database: testutil.DBPath(t)}), dir, "--collect-all")
	require.Error(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Errors []CatalogIssue `json:"errors"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.Len(t, resp.Data.Errors, 2)
	assert.Equal(t, "one", resp.Data.Errors[0].Key)
	assert.Equal(t, "two", resp.Data.Errors[1].Key)
}

func TestImportCommandStrictStoreRejectsMissingAlternates(t *testing.T) {
	dir := writeCatalog(t, `package catalog

record: full: {description: "d", a: "a", b: "b", a_alt: "x", b_alt: "y"}
record: bare: {description: "d", a: "a", b: "b"}
`)
	db := testutil.DBPath(t)

	out, err := runCmd(t, NewImportCommand(&RootOptions{Format: "text", Database: db}), dir)
	require.Error(t, err)
	assert.Equal(t, seq.FieldTermAAlt, seq.ValidationField(err))
	assert.Contains(t, out, "record.bare")

	_, statErr := os.Stat(db)
	assert.True(t, os.IsNotExist(statErr), "nothing is saved when an entry is rejected")

	_, err = runCmd(t, NewImportCommand(&RootOptions{Format: "text", Database: db, LegacySchema: true}), dir)
	require.NoError(t, err)
}

func TestImportCommandMissingDir(t *testing.T) {
	out, err := runCmd(t, NewImportCommand(&RootOptions{Format: "text", Database: testutil.DBPath(t)}), "/nonexistent/catalog")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E005")
}

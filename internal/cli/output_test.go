package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/uniterm/internal/catalog"
	"github.com/roach88/uniterm/internal/seq"
	"github.com/roach88/uniterm/internal/store"
	"github.com/roach88/uniterm/internal/testutil"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_TraceIDIsUUIDv7(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success("x"))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	id, err := uuid.Parse(resp.TraceID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestOutputFormatter_FixedTraceIDs(t *testing.T) {
	buf := &bytes.Buffer{}
	gen := testutil.NewSequenceTraceIDs("trace-1", "trace-2")
	formatter := &OutputFormatter{Format: "json", Writer: buf, TraceIDs: gen}

	require.NoError(t, formatter.Success("first"))
	require.NoError(t, formatter.Error(CodeNotFound, "missing", nil))

	dec := json.NewDecoder(buf)
	var first, second CLIResponse
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, "trace-1", first.TraceID)
	assert.Equal(t, "trace-2", second.TraceID)
	assert.Equal(t, 2, gen.Used())
}

func TestOutputFormatter_TextNeedsNoTraceID(t *testing.T) {
	buf := &bytes.Buffer{}
	gen := testutil.NewSequenceTraceIDs()
	formatter := &OutputFormatter{Format: "text", Writer: buf, ErrWriter: buf, TraceIDs: gen}

	require.NoError(t, formatter.Success("plain"))
	assert.Equal(t, 0, gen.Used())
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(CodeValidation, "failed to save record", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeValidation, resp.Error.Code)
	assert.Equal(t, "failed to save record", resp.Error.Message)
	assert.NotEmpty(t, resp.TraceID)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("3 records")
	require.NoError(t, err)
	assert.Equal(t, "3 records\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error(CodeStorage, "failed to open database", map[string]string{"path": "x"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E301]")
	assert.Contains(t, buf.String(), "failed to open database")
	assert.NotContains(t, buf.String(), "Details:")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error(CodeValidation, "failed to save record", map[string]string{"field": "name"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E201]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			errBuf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    buf,
				ErrWriter: errBuf,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Found %d record(s)", 2)

			assert.Empty(t, buf.String())
			if tt.wantLog {
				assert.Contains(t, errBuf.String(), "Found 2 record(s)")
			} else {
				assert.Empty(t, errBuf.String())
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{"validation", &seq.ValidationError{Field: seq.FieldName, Message: "must not be empty"}, CodeValidation, ExitFailure},
		{"not found", fmt.Errorf("get record 9: %w", store.ErrNotFound), CodeNotFound, ExitFailure},
		{"closed", store.ErrClosed, CodeClosed, ExitCommandError},
		{"storage", &store.Error{Op: "create", Err: errors.New("disk full")}, CodeStorage, ExitCommandError},
		{"variant", fmt.Errorf("%w: database is strict", store.ErrSchemaVariant), CodeSchemaVariant, ExitCommandError},
		{"catalog", &catalog.Error{Code: catalog.CodeInvalid, Message: "bad"}, catalog.CodeInvalid, ExitFailure},
		{"other", errors.New("boom"), catalog.CodeGeneric, ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, exit := Classify(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantExit, exit)
		})
	}
}

func TestOutputFormatter_FailValidation(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Fail("failed to save record", &seq.ValidationError{Field: seq.FieldTermAAlt, Message: "must not be empty"})
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, seq.IsValidationError(err))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeValidation, resp.Error.Code)
	assert.Equal(t, seq.FieldTermAAlt, resp.Error.Details["field"])
}

func TestExitError(t *testing.T) {
	cause := errors.New("cause")
	err := WrapExitError(ExitCommandError, "failed", cause)

	assert.Equal(t, "failed: cause", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, "just a message", NewExitError(ExitFailure, "just a message").Error())
}

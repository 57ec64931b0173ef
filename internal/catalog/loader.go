package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/uniterm/internal/seq"
)

//go:embed schema.cue
var schemaCUE string

// LoadMode controls how errors are handled during loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Error code constants, shared with the CLI output.
const (
	CodeGeneric     = "E001" // Generic/unknown error
	CodeScanError   = "E002" // Directory scan error
	CodeNoFiles     = "E003" // No CUE files found
	CodeLoadFailed  = "E004" // CUE load failed
	CodeNotFound    = "E005" // Path not found
	CodeBuildFailed = "E006" // CUE build failed
	CodeInvalid     = "E101" // Entry does not satisfy #Record
	CodeNoRecords   = "E102" // No records declared
)

// Entry is one record declared in a catalogue.
type Entry struct {
	// Key is the label under "record".
	Key   string
	Draft seq.Draft
	Pos   token.Pos
}

// Error describes a catalogue problem, with a CUE position when known.
type Error struct {
	Code    string
	Key     string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Key != "" {
		msg = fmt.Sprintf("record.%s: %s", e.Key, e.Message)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// LoadDir loads every .cue file in dir as one CUE instance and extracts its
// records. With LoadModeFailFast the first error ends loading; with
// LoadModeCollectAll every invalid entry is reported and valid ones are
// still returned.
func LoadDir(dir string, mode LoadMode) ([]Entry, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&Error{Code: CodeNotFound, Message: fmt.Sprintf("catalogue directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&Error{Code: CodeNotFound, Message: fmt.Sprintf("error accessing catalogue directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&Error{Code: CodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&Error{Code: CodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&Error{Code: CodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&Error{Code: CodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&Error{Code: CodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{buildError(err)}
	}

	return extract(ctx, value, mode)
}

// LoadSource compiles a single CUE document. filename is used in error
// positions only.
func LoadSource(filename string, src []byte, mode LoadMode) ([]Entry, []error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, []error{buildError(err)}
	}
	return extract(ctx, value, mode)
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func extract(ctx *cue.Context, value cue.Value, mode LoadMode) ([]Entry, []error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, []error{&Error{Code: CodeGeneric, Message: fmt.Sprintf("compiling record schema: %v", err)}}
	}
	def := schema.LookupPath(cue.ParsePath("#Record"))

	records := value.LookupPath(cue.ParsePath("record"))
	if !records.Exists() {
		return nil, []error{&Error{Code: CodeNoRecords, Message: "no records declared under \"record\""}}
	}

	iter, err := records.Fields()
	if err != nil {
		return nil, []error{&Error{Code: CodeGeneric, Message: fmt.Sprintf("iterating records: %v", err), Pos: records.Pos()}}
	}

	var (
		entries []Entry
		errs    []error
	)
	for iter.Next() {
		entry, err := compileEntry(def, iter.Label(), iter.Value())
		if err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return entries, errs
			}
			continue
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 && len(errs) == 0 {
		errs = append(errs, &Error{Code: CodeNoRecords, Message: "record struct is empty", Pos: records.Pos()})
	}
	return entries, errs
}

// compileEntry unifies v with #Record and reads the concrete fields.
func compileEntry(def cue.Value, key string, v cue.Value) (Entry, error) {
	rv := def.Unify(v)
	if err := rv.Validate(); err != nil {
		return Entry{}, entryError(key, v.Pos(), err)
	}

	field := func(name string) (string, error) {
		fv := rv.LookupPath(cue.ParsePath(name))
		if !fv.Exists() {
			return "", nil
		}
		fv, _ = fv.Default()
		s, err := fv.String()
		if err != nil {
			return "", entryError(key, v.Pos(), fmt.Errorf("%s: %w", name, err))
		}
		return s, nil
	}

	var (
		d   seq.Draft
		err error
	)
	fields := []struct {
		name string
		dst  *string
	}{
		{"name", &d.Name},
		{"description", &d.Description},
		{"a", &d.TermA},
		{"b", &d.TermB},
		{"a_alt", &d.TermAAlt},
		{"b_alt", &d.TermBAlt},
	}
	for _, f := range fields {
		if *f.dst, err = field(f.name); err != nil {
			return Entry{}, err
		}
	}
	op, err := field("operator")
	if err != nil {
		return Entry{}, err
	}
	d.Operator = seq.Operator(op)
	if d.Name == "" {
		d.Name = key
	}

	return Entry{Key: key, Draft: d, Pos: v.Pos()}, nil
}

// entryError converts a CUE error to an *Error, keeping the first position.
func entryError(key string, pos token.Pos, err error) *Error {
	e := &Error{Code: CodeInvalid, Key: key, Message: err.Error(), Pos: pos}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		e.Message = errs[0].Error()
		if positions := cueerrors.Positions(errs[0]); len(positions) > 0 {
			e.Pos = positions[0]
		}
	}
	return e
}

func buildError(err error) *Error {
	e := &Error{Code: CodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		if positions := cueerrors.Positions(errs[0]); len(positions) > 0 {
			e.Pos = positions[0]
		}
	}
	return e
}

// Creator is the store operation Import needs.
type Creator interface {
	Create(ctx context.Context, d seq.Draft) (int64, error)
}

// Import creates one record per entry, in order, and returns the new ids.
// It stops at the first failure; records created before it are kept.
func Import(ctx context.Context, c Creator, entries []Entry) ([]int64, error) {
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		id, err := c.Create(ctx, e.Draft)
		if err != nil {
			return ids, fmt.Errorf("import record.%s: %w", e.Key, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

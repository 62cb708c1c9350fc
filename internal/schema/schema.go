// Package schema validates extracted records against a CUE schema.
//
// A schema file constrains one record, i.e. one row of the column store with
// every cell as a string. The constraint is the #Record definition when the
// file declares one, otherwise the whole file:
//
//	#Record: {
//		id:    =~"^[0-9]+$"
//		email: =~"@"
//		...
//	}
//
// Definitions are closed, so fields not listed are rejected unless the
// definition ends with "...".
package schema

import (
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/fextract/internal/colstore"
)

// RecordDefinition is the definition looked up as the record constraint.
const RecordDefinition = "#Record"

// Schema is a compiled record constraint.
type Schema struct {
	Name       string
	constraint cue.Value
}

// LoadError reports a schema that cannot be read or compiled.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("schema %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// RecordError describes one record that violates the schema.
type RecordError struct {
	Record  int    `json:"record"` // 1-based record number
	Message string `json:"message"`
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %d: %s", e.Record, e.Message)
}

// Load reads and compiles the CUE file at path.
func Load(path string) (*Schema, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return Compile(path, src)
}

// Compile builds a Schema from CUE source. name is used in positions and errors.
func Compile(name string, src []byte) (*Schema, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(src, cue.Filename(name))
	if err := value.Err(); err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}

	constraint := value.LookupPath(cue.ParsePath(RecordDefinition))
	if !constraint.Exists() {
		constraint = value
	}
	if err := constraint.Err(); err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}

	return &Schema{Name: name, constraint: constraint}, nil
}

// Validate checks every record of pf and returns one RecordError per failing
// record, in record order. A nil result means every record conforms.
func (s *Schema) Validate(pf *colstore.ParsedFile) []RecordError {
	ctx := s.constraint.Context()

	var errs []RecordError
	for i, record := range pf.Records() {
		unified := s.constraint.Unify(ctx.Encode(record))
		if err := unified.Validate(cue.Concrete(true)); err != nil {
			errs = append(errs, RecordError{Record: i + 1, Message: describe(err)})
		}
	}
	return errs
}

// describe flattens a CUE error list into one line.
func describe(err error) string {
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return err.Error()
	}
	msgs := make([]string, len(list))
	for i, e := range list {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

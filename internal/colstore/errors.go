package colstore

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFieldNotFound is matched by FieldNotFoundError via errors.Is.
var ErrFieldNotFound = errors.New("field not found")

// ErrNoFields is returned by ExtractFields when called without field names.
var ErrNoFields = errors.New("no fields requested")

// FieldNotFoundError reports requested fields that are absent from a ParsedFile.
type FieldNotFoundError struct {
	Missing   []string // requested fields that do not exist, in request order
	Available []string // fields present in the ParsedFile, canonical order
}

func (e *FieldNotFoundError) Error() string {
	quoted := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		quoted[i] = fmt.Sprintf("'%s'", f)
	}
	noun := "field"
	if len(e.Missing) > 1 {
		noun = "fields"
	}
	return fmt.Sprintf("%s %s not found; available: %s",
		noun, strings.Join(quoted, ", "), strings.Join(e.Available, ", "))
}

// Is reports whether target is ErrFieldNotFound.
func (e *FieldNotFoundError) Is(target error) bool {
	return target == ErrFieldNotFound
}

// RaggedColumnsError reports value sequences of unequal length.
type RaggedColumnsError struct {
	Field    string // first field whose length disagrees
	Length   int
	Expected int
}

func (e *RaggedColumnsError) Error() string {
	return fmt.Sprintf("field %q has %d value(s), expected %d", e.Field, e.Length, e.Expected)
}

// AmbiguousFieldsError reports two field names that differ only in Unicode
// normalization (for example "e\u0301" and "\u00e9"). They are distinct keys
// but display identically.
type AmbiguousFieldsError struct {
	First  string
	Second string
}

func (e *AmbiguousFieldsError) Error() string {
	return fmt.Sprintf("fields %+q and %+q differ only in Unicode normalization", e.First, e.Second)
}

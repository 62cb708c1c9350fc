// Package sink writes extracted column stores to an output file chosen by
// the file's extension.
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/fextract/internal/colstore"
	"github.com/roach88/fextract/internal/parser"
)

// ErrUnsupportedSink is matched when no sink handles an output extension.
var ErrUnsupportedSink = errors.New("unsupported output type")

// UnsupportedSinkError carries the rejected output extension.
type UnsupportedSinkError struct {
	Extension string
	Supported []string
}

func (e *UnsupportedSinkError) Error() string {
	quoted := make([]string, len(e.Supported))
	for i, s := range e.Supported {
		quoted[i] = fmt.Sprintf("'%s'", s)
	}
	return fmt.Sprintf("cannot write output with extension '%s'. Supported extensions: %s",
		e.Extension, strings.Join(quoted, ", "))
}

func (e *UnsupportedSinkError) Is(target error) bool {
	return target == ErrUnsupportedSink
}

// Source identifies where an extraction came from.
type Source struct {
	Path   string
	Format parser.Format
}

// Result summarizes a completed write.
type Result struct {
	Sink    string `json:"sink"`
	Path    string `json:"path"`
	Records int    `json:"records"`
	Fields  int    `json:"fields"`

	// ID and Inserted are set by the SQLite sink only.
	ID       string `json:"id,omitempty"`
	Inserted bool   `json:"inserted,omitempty"`
}

// Sink persists a column store.
type Sink interface {
	Kind() string
	Write(ctx context.Context, src Source, pf *colstore.ParsedFile) (Result, error)
}

// Options tunes sink construction. The zero value is usable.
type Options struct {
	// Delimiter separates CSV output fields. Zero means parser.DefaultDelimiter.
	Delimiter rune

	// NewID generates extraction IDs for the SQLite sink. Nil means uuid.NewString.
	NewID func() string

	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Delimiter == 0 {
		o.Delimiter = parser.DefaultDelimiter
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

var sinks = []struct {
	extensions []string
	newSink    func(path string, opts Options) Sink
}{
	{[]string{"csv"}, newCSVSink},
	{[]string{"json"}, newJSONSink},
	{[]string{"db", "sqlite", "sqlite3"}, newSQLiteSink},
}

// SupportedExtensions lists every output extension in match order.
func SupportedExtensions() []string {
	var exts []string
	for _, s := range sinks {
		exts = append(exts, s.extensions...)
	}
	return exts
}

// ForPath selects the sink for an output path by its extension
// (case-insensitive).
func ForPath(path string, opts Options) (Sink, error) {
	ext := parser.Extension(path)
	key := strings.ToLower(ext)
	opts = opts.withDefaults()

	for _, s := range sinks {
		for _, candidate := range s.extensions {
			if candidate == key {
				return s.newSink(path, opts), nil
			}
		}
	}
	return nil, &UnsupportedSinkError{Extension: ext, Supported: SupportedExtensions()}
}

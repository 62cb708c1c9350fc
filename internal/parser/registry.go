package parser

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/roach88/fextract/internal/colstore"
)

// DefaultDelimiter separates CSV fields unless Options says otherwise.
const DefaultDelimiter = ';'

// Parser reads one file of a single format into a column store.
type Parser interface {
	// Format returns the format tag this parser handles.
	Format() Format

	// Match reports whether the parser handles files with the given
	// (lower-cased, dot-less) extension.
	Match(extension string) bool

	// Parse reads the file and returns a validated column store.
	Parse() (*colstore.ParsedFile, error)
}

// Options tunes parser construction. The zero value is usable.
type Options struct {
	// Delimiter is the CSV field separator. Zero means DefaultDelimiter.
	Delimiter rune

	// Logger receives debug output. Nil means slog.Default().
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Delimiter == 0 {
		o.Delimiter = DefaultDelimiter
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

type constructor func(path string, opts Options) Parser

// registry is the closed set of parsers, in match order. Adding a format
// means adding a Format constant and an entry here.
var registry = []struct {
	format    Format
	newParser constructor
}{
	{FormatCSV, newCSVParser},
	{FormatJSON, newJSONParser},
}

// Extension returns the part of the file's base name after its final dot,
// or "" when the base name has no dot.
func Extension(path string) string {
	base := filepath.Base(path)
	i := strings.LastIndex(base, ".")
	if i < 0 {
		return ""
	}
	return base[i+1:]
}

// For selects the parser for path by its extension. Matching is
// case-insensitive. Returns *UnsupportedFileTypeError when nothing matches.
func For(path string, opts Options) (Parser, error) {
	ext := Extension(path)
	key := strings.ToLower(ext)
	opts = opts.withDefaults()

	for _, entry := range registry {
		p := entry.newParser(path, opts)
		if p.Match(key) {
			return p, nil
		}
	}

	return nil, &UnsupportedFileTypeError{Extension: ext, Supported: SupportedFormats()}
}

// Parse dispatches path to its parser and parses it.
func Parse(path string, opts Options) (*colstore.ParsedFile, error) {
	p, err := For(path, opts)
	if err != nil {
		return nil, err
	}
	return p.Parse()
}

package parser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/roach88/fextract/internal/colstore"
)

// CSVParser reads delimiter-separated text whose first record is the header.
type CSVParser struct {
	path      string
	delimiter rune
	logger    *slog.Logger
}

func newCSVParser(path string, opts Options) Parser {
	return &CSVParser{path: path, delimiter: opts.Delimiter, logger: opts.Logger}
}

func (p *CSVParser) Format() Format { return FormatCSV }

func (p *CSVParser) Match(extension string) bool {
	return extension == string(FormatCSV)
}

// Parse reads the file into a column store. Every record must have as many
// fields as the header; a header-only file yields fields with no values.
func (p *CSVParser) Parse() (*colstore.ParsedFile, error) {
	p.logger.Debug("parsing file", "path", p.path, "format", FormatCSV)

	f, err := openInput(p.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	skipBOM(br)

	r := csv.NewReader(br)
	r.Comma = p.delimiter
	r.FieldsPerRecord = 0 // first record (the header) fixes the count

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return colstore.New(nil), nil
	}
	if err != nil {
		return nil, p.readError(err, nil, nil)
	}
	if err := p.checkHeader(header); err != nil {
		return nil, err
	}

	columns := make(map[string][]string, len(header))
	for _, name := range header {
		columns[name] = []string{}
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, p.readError(err, record, header)
		}

		line, _ := r.FieldPos(0)
		for i, value := range record {
			if !utf8.ValidString(value) {
				return nil, p.malformed(line, fmt.Sprintf("field %q is not valid UTF-8", header[i]), nil)
			}
			columns[header[i]] = append(columns[header[i]], value)
		}
	}

	pf := colstore.New(columns)
	if err := pf.Validate(); err != nil {
		return nil, p.malformed(0, "inconsistent columns", err)
	}

	p.logger.Debug("parsed file", "path", p.path, "fields", len(header), "records", pf.Len())
	return pf, nil
}

func (p *CSVParser) checkHeader(header []string) error {
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		switch {
		case !utf8.ValidString(name):
			return p.malformed(1, fmt.Sprintf("header field %d is not valid UTF-8", i+1), nil)
		case name == "":
			return p.malformed(1, fmt.Sprintf("header field %d is empty", i+1), nil)
		case seen[name]:
			return p.malformed(1, fmt.Sprintf("duplicate header field %q", name), nil)
		}
		seen[name] = true
	}
	return nil
}

// readError converts a csv.Reader error into a *MalformedError. Errors that
// are not about the content (I/O failures) are wrapped and returned as-is.
func (p *CSVParser) readError(err error, record, header []string) error {
	var parseErr *csv.ParseError
	if !errors.As(err, &parseErr) {
		return fmt.Errorf("read %s: %w", p.path, err)
	}

	if errors.Is(parseErr.Err, csv.ErrFieldCount) {
		reason := fmt.Sprintf("record has %d field(s), header has %d", len(record), len(header))
		return p.malformed(parseErr.Line, reason, csv.ErrFieldCount)
	}
	return p.malformed(parseErr.Line, "invalid record", parseErr.Err)
}

func (p *CSVParser) malformed(line int, reason string, err error) *MalformedError {
	return &MalformedError{Path: p.path, Format: FormatCSV, Line: line, Reason: reason, Err: err}
}

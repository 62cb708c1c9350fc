package parser

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/roach88/fextract/internal/colstore"
)

// JSONParser reads a JSON document in one of three shapes:
//
//   - an array of objects, one object per record; the fields are the union
//     of all keys and a key missing from a record yields "";
//   - an object whose values are all arrays of equal length, one per field;
//   - an object whose values are all non-arrays, holding a single record.
//
// Cells keep their JSON text: strings verbatim, numbers as written,
// booleans as true/false, null as "" and nested values as compact JSON.
type JSONParser struct {
	path   string
	logger *slog.Logger
}

func newJSONParser(path string, opts Options) Parser {
	return &JSONParser{path: path, logger: opts.Logger}
}

func (p *JSONParser) Format() Format { return FormatJSON }

func (p *JSONParser) Match(extension string) bool {
	return extension == string(FormatJSON)
}

// Parse reads the document into a column store.
func (p *JSONParser) Parse() (*colstore.ParsedFile, error) {
	p.logger.Debug("parsing file", "path", p.path, "format", FormatJSON)

	f, err := openInput(p.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	skipBOM(br)

	data, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.path, err)
	}
	// The decoder would silently replace invalid sequences with U+FFFD.
	if line, bad := invalidUTF8Line(data); bad {
		return nil, &MalformedError{Path: p.path, Format: FormatJSON, Line: line, Reason: "invalid UTF-8"}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, p.malformed("empty document", nil)
		}
		return nil, p.malformed("invalid JSON", err)
	}

	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, p.malformed("unexpected data after the top-level value", err)
	}

	columns, err := p.columns(doc)
	if err != nil {
		return nil, err
	}

	pf := colstore.New(columns)
	if err := pf.Validate(); err != nil {
		return nil, p.malformed("inconsistent columns", err)
	}

	p.logger.Debug("parsed file", "path", p.path, "fields", len(columns), "records", pf.Len())
	return pf, nil
}

func (p *JSONParser) columns(doc any) (map[string][]string, error) {
	switch v := doc.(type) {
	case []any:
		return p.fromRecords(v)
	case map[string]any:
		return p.fromObject(v)
	default:
		return nil, p.malformed(fmt.Sprintf("top-level value is %s, expected an object or an array of objects", kindOf(doc)), nil)
	}
}

func (p *JSONParser) fromRecords(records []any) (map[string][]string, error) {
	columns := make(map[string][]string)

	for i, elem := range records {
		obj, ok := elem.(map[string]any)
		if !ok {
			return nil, p.malformed(fmt.Sprintf("element %d is %s, expected an object", i, kindOf(elem)), nil)
		}

		for field, raw := range obj {
			if field == "" {
				return nil, p.malformed(fmt.Sprintf("element %d has an empty field name", i), nil)
			}
			cell, err := cellText(raw)
			if err != nil {
				return nil, p.malformed(fmt.Sprintf("element %d field %q", i, field), err)
			}
			if _, seen := columns[field]; !seen {
				// Earlier records did not have this field.
				columns[field] = make([]string, i, len(records))
			}
			columns[field] = append(columns[field], cell)
		}

		for field, values := range columns {
			if len(values) == i {
				columns[field] = append(values, "")
			}
		}
	}

	return columns, nil
}

func (p *JSONParser) fromObject(obj map[string]any) (map[string][]string, error) {
	fields := make([]string, 0, len(obj))
	arrays := 0
	for field, raw := range obj {
		if field == "" {
			return nil, p.malformed("empty field name", nil)
		}
		fields = append(fields, field)
		if _, ok := raw.([]any); ok {
			arrays++
		}
	}
	slices.Sort(fields)

	columns := make(map[string][]string, len(obj))
	switch arrays {
	case len(obj):
		for _, field := range fields {
			elems := obj[field].([]any)
			values := make([]string, len(elems))
			for i, elem := range elems {
				cell, err := cellText(elem)
				if err != nil {
					return nil, p.malformed(fmt.Sprintf("field %q element %d", field, i), err)
				}
				values[i] = cell
			}
			columns[field] = values
		}
	case 0:
		for _, field := range fields {
			cell, err := cellText(obj[field])
			if err != nil {
				return nil, p.malformed(fmt.Sprintf("field %q", field), err)
			}
			columns[field] = []string{cell}
		}
	default:
		return nil, p.malformed("object mixes array and non-array values", nil)
	}

	return columns, nil
}

func (p *JSONParser) malformed(reason string, err error) *MalformedError {
	return &MalformedError{Path: p.path, Format: FormatJSON, Reason: reason, Err: err}
}

// cellText renders a decoded JSON value as a column store cell.
func cellText(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	case []any, map[string]any:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(val); err != nil {
			return "", err
		}
		return string(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})), nil
	default:
		return "", fmt.Errorf("unsupported JSON value of type %T", v)
	}
}

// invalidUTF8Line reports the 1-based line of the first invalid UTF-8 sequence.
func invalidUTF8Line(data []byte) (int, bool) {
	if utf8.Valid(data) {
		return 0, false
	}
	line := 1
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return line, true
		}
		if r == '\n' {
			line++
		}
		i += size
	}
	return line, true
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	case []any:
		return "an array"
	case map[string]any:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

package colstore

import (
	"slices"

	"golang.org/x/text/unicode/norm"
)

// ParsedFile is an immutable column store: field name -> ordered values.
type ParsedFile struct {
	columns map[string][]string
}

// New creates a ParsedFile from a field -> values mapping.
// The mapping is copied; no validation is performed (see Validate).
func New(columns map[string][]string) *ParsedFile {
	copied := make(map[string][]string, len(columns))
	for field, values := range columns {
		copied[field] = slices.Clone(values)
		if copied[field] == nil {
			copied[field] = []string{}
		}
	}
	return &ParsedFile{columns: copied}
}

// Fields returns the field names in canonical (RFC 8785) order.
func (p *ParsedFile) Fields() []string {
	fields := make([]string, 0, len(p.columns))
	for field := range p.columns {
		fields = append(fields, field)
	}
	slices.SortFunc(fields, compareKeysRFC8785)
	return fields
}

// Values returns a copy of the values recorded for field.
func (p *ParsedFile) Values(field string) ([]string, bool) {
	values, ok := p.columns[field]
	if !ok {
		return nil, false
	}
	return slices.Clone(values), true
}

// Has reports whether field exists.
func (p *ParsedFile) Has(field string) bool {
	_, ok := p.columns[field]
	return ok
}

// Len returns the number of records, i.e. the length of the longest value
// sequence. For a valid ParsedFile every sequence has this length.
func (p *ParsedFile) Len() int {
	n := 0
	for _, values := range p.columns {
		if len(values) > n {
			n = len(values)
		}
	}
	return n
}

// Validate checks that every value sequence has the same length and that no
// two field names are equal after NFC normalization.
func (p *ParsedFile) Validate() error {
	fields := p.Fields()
	if len(fields) == 0 {
		return nil
	}
	expected := len(p.columns[fields[0]])
	for _, field := range fields[1:] {
		if n := len(p.columns[field]); n != expected {
			return &RaggedColumnsError{Field: field, Length: n, Expected: expected}
		}
	}

	seen := make(map[string]string, len(fields))
	for _, field := range fields {
		key := norm.NFC.String(field)
		if other, ok := seen[key]; ok {
			return &AmbiguousFieldsError{First: other, Second: field}
		}
		seen[key] = field
	}
	return nil
}

// ExtractFields returns a new ParsedFile restricted to the requested fields.
// Value sequences are carried over unchanged. Requesting the same field twice
// is not an error. If any requested field is absent, ExtractFields returns a
// *FieldNotFoundError listing all of them.
func (p *ParsedFile) ExtractFields(fields ...string) (*ParsedFile, error) {
	if len(fields) == 0 {
		return nil, ErrNoFields
	}

	var missing []string
	projected := make(map[string][]string, len(fields))
	for _, field := range fields {
		values, ok := p.columns[field]
		if !ok {
			if !slices.Contains(missing, field) {
				missing = append(missing, field)
			}
			continue
		}
		projected[field] = values
	}
	if len(missing) > 0 {
		return nil, &FieldNotFoundError{Missing: missing, Available: p.Fields()}
	}

	return New(projected), nil
}

// Records returns a row view of the store: one map per record, keyed by field.
// Fields whose sequence is shorter than the record index are omitted from
// that record, which can only happen when Validate fails.
func (p *ParsedFile) Records() []map[string]string {
	n := p.Len()
	records := make([]map[string]string, n)
	for i := range records {
		records[i] = make(map[string]string, len(p.columns))
	}
	for field, values := range p.columns {
		for i, v := range values {
			records[i][field] = v
		}
	}
	return records
}

// Equal reports whether both stores hold the same fields with the same values.
func (p *ParsedFile) Equal(other *ParsedFile) bool {
	if p == nil || other == nil {
		return p == other
	}
	if len(p.columns) != len(other.columns) {
		return false
	}
	for field, values := range p.columns {
		otherValues, ok := other.columns[field]
		if !ok || !slices.Equal(values, otherValues) {
			return false
		}
	}
	return true
}

// String renders the store as canonical JSON.
func (p *ParsedFile) String() string {
	return string(p.MarshalCanonical())
}

// MarshalJSON encodes the store as a JSON object of field -> values.
func (p *ParsedFile) MarshalJSON() ([]byte, error) {
	return p.MarshalCanonical(), nil
}

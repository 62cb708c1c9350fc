package colstore

import (
	"bytes"
	"encoding/json"
	"unicode/utf16"
)

// MarshalCanonical renders the store as RFC 8785 canonical JSON.
//
// Keys are ordered by UTF-16 code units and <, > and & are not escaped.
// Strings are written byte-for-byte as stored, without Unicode
// normalization, so stores that differ render differently. The output is
// stable across runs and is the input to Digest.
func (p *ParsedFile) MarshalCanonical() []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range p.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(marshalCanonicalString(field))
		buf.WriteByte(':')
		buf.WriteByte('[')
		for j, v := range p.columns[field] {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.Write(marshalCanonicalString(v))
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// marshalCanonicalString encodes s as a JSON string.
// Only quote, backslash and control characters are escaped.
func marshalCanonicalString(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string never fails.
	_ = enc.Encode(s)

	out := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	return unescapeLineSeparators(out)
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes emitted by
// encoding/json back into literal characters. An escaped backslash followed
// by "u2028" is left alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if i+5 < len(data) && data[i+1] == 'u' && string(data[i+2:i+5]) == "202" {
			switch data[i+5] {
			case '8':
				out = append(out, "\u2028"...)
				i += 5
				continue
			case '9':
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		// Copy the escape pair as-is so "\\" is never re-examined.
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}

// compareKeysRFC8785 orders strings by UTF-16 code units as RFC 8785 requires.
// Go string comparison uses UTF-8 bytes, which orders supplementary-plane
// characters differently.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

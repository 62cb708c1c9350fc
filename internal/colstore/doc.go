// Package colstore holds parsed tabular data in column-oriented form.
//
// A ParsedFile maps each field name to the ordered sequence of its raw string
// values, one entry per record in file order. ParsedFile values are immutable
// after construction: every accessor returns a copy, and projections such as
// ExtractFields build a new ParsedFile.
//
// # Invariant
//
// All value sequences have the same length, equal to the number of records.
// New does not enforce this; Validate does, and every parser in this module
// validates before handing a ParsedFile to its caller.
//
// # Rendering and identity
//
// String renders the mapping as canonical JSON: object keys in RFC 8785
// (UTF-16 code unit) order, strings NFC normalized, no HTML escaping. Digest
// hashes that rendering with SHA-256 under a versioned domain prefix, so two
// ParsedFiles with equal content always share a digest.
package colstore

// Package store provides SQLite-backed storage for extractions.
//
// An extraction is a column store projected to the requested fields, stored
// together with where it came from:
//   - extractions: one row per extraction (source path, format, field list,
//     record count, content digest, logical sequence number)
//   - cells: one row per (extraction, record, field) value
//
// # Invariants
//
// Idempotency: UNIQUE(source_path, digest). Writing the same content from the
// same source again is a no-op that returns the existing extraction ID.
//
// Ordering: listings use the logical seq column, never timestamps:
// ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: cells cannot outlive their extraction
package store

// Package parser turns structured files into column stores.
//
// The set of supported formats is closed: each Format has exactly one Parser
// implementation, registered in a static table. Dispatch derives a file's
// extension, walks the table in order and hands the file to the first parser
// whose Match accepts the extension.
//
// Errors are typed so callers can tell a bad file type (ErrUnsupportedFileType)
// from a missing file (ErrFileNotFound) from bad content (ErrMalformedInput).
package parser

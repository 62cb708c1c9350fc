package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFileType is matched when no registered parser accepts an extension.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrFileNotFound is matched when the input path does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrMalformedInput is matched when a file cannot be turned into a valid column store.
	ErrMalformedInput = errors.New("malformed input")
)

// UnsupportedFileTypeError carries the rejected extension and the supported set.
type UnsupportedFileTypeError struct {
	Extension string
	Supported []Format
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("cannot process files with extension '%s'. Supported extensions: %s",
		e.Extension, quoteFormats(e.Supported))
}

func (e *UnsupportedFileTypeError) Is(target error) bool {
	return target == ErrUnsupportedFileType
}

// FileNotFoundError reports a missing input path.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file %s not found", e.Path)
}

func (e *FileNotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}

// Unwrap exposes the underlying fs error (fs.ErrNotExist).
func (e *FileNotFoundError) Unwrap() error {
	return e.Err
}

// MalformedError describes content that cannot be parsed.
// Line is 1-based and zero when the position is unknown.
type MalformedError struct {
	Path   string
	Format Format
	Line   int
	Reason string
	Err    error
}

func (e *MalformedError) Error() string {
	msg := fmt.Sprintf("malformed %s file %s", e.Format, e.Path)
	if e.Line > 0 {
		msg = fmt.Sprintf("%s: line %d", msg, e.Line)
	}
	msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedInput
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

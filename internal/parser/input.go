package parser

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// openInput opens path for reading, mapping a missing path to *FileNotFoundError.
func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FileNotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// skipBOM drops a leading UTF-8 byte order mark, which spreadsheet exports
// on Windows commonly prepend.
func skipBOM(r *bufio.Reader) {
	head, err := r.Peek(len(utf8BOM))
	if err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = r.Discard(len(utf8BOM))
	}
}

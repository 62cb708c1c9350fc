package parser

import (
	"fmt"
	"strings"
)

// Format is a supported file format tag, equal to the file extension it handles.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// SupportedFormats returns every format in registry order.
func SupportedFormats() []Format {
	formats := make([]Format, len(registry))
	for i, entry := range registry {
		formats[i] = entry.format
	}
	return formats
}

// SupportedList renders the supported formats as "'csv', 'json'".
func SupportedList() string {
	return quoteFormats(SupportedFormats())
}

func quoteFormats(formats []Format) string {
	quoted := make([]string, len(formats))
	for i, f := range formats {
		quoted[i] = fmt.Sprintf("'%s'", f)
	}
	return strings.Join(quoted, ", ")
}

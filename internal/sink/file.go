package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-json"

	"github.com/roach88/fextract/internal/colstore"
)

const emptyQuotedRow = "\"\"\n"

// CSVSink writes a header in canonical field order followed by one row per record.
type CSVSink struct {
	path      string
	delimiter rune
	logger    *slog.Logger
}

func newCSVSink(path string, opts Options) Sink {
	return &CSVSink{path: path, delimiter: opts.Delimiter, logger: opts.Logger}
}

func (s *CSVSink) Kind() string { return "csv" }

func (s *CSVSink) Write(ctx context.Context, src Source, pf *colstore.ParsedFile) (res Result, err error) {
	if err := pf.Validate(); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", s.path, err)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return Result{}, fmt.Errorf("create %s: %w", s.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", s.path, cerr)
		}
	}()

	fields := pf.Fields()
	w := csv.NewWriter(f)
	w.Comma = s.delimiter

	if len(fields) > 0 {
		if err := w.Write(fields); err != nil {
			return Result{}, fmt.Errorf("write %s: %w", s.path, err)
		}
	}
	for i, record := range pf.Records() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		row := make([]string, len(fields))
		for j, field := range fields {
			row[j] = record[field]
		}
		if len(row) == 1 && row[0] == "" {
			// csv.Writer emits an empty line here, which readers skip.
			w.Flush()
			if err := w.Error(); err != nil {
				return Result{}, fmt.Errorf("write %s: %w", s.path, err)
			}
			if _, err := io.WriteString(f, emptyQuotedRow); err != nil {
				return Result{}, fmt.Errorf("write %s: record %d: %w", s.path, i+1, err)
			}
			continue
		}
		if err := w.Write(row); err != nil {
			return Result{}, fmt.Errorf("write %s: record %d: %w", s.path, i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", s.path, err)
	}

	s.logger.Debug("wrote output", "sink", s.Kind(), "path", s.path, "source", src.Path)
	return Result{Sink: s.Kind(), Path: s.path, Records: pf.Len(), Fields: len(fields)}, nil
}

// JSONSink writes an indented array of record objects.
type JSONSink struct {
	path   string
	logger *slog.Logger
}

func newJSONSink(path string, opts Options) Sink {
	return &JSONSink{path: path, logger: opts.Logger}
}

func (s *JSONSink) Kind() string { return "json" }

func (s *JSONSink) Write(ctx context.Context, src Source, pf *colstore.ParsedFile) (Result, error) {
	if err := pf.Validate(); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	data, err := json.MarshalIndent(pf.Records(), "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("marshal records: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", s.path, err)
	}

	s.logger.Debug("wrote output", "sink", s.Kind(), "path", s.path, "source", src.Path)
	return Result{Sink: s.Kind(), Path: s.path, Records: pf.Len(), Fields: len(pf.Fields())}, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/roach88/fextract/internal/colstore"
)

// ReadExtraction returns the extraction metadata and its rebuilt column store.
// Returns ErrNotFound if id does not exist.
func (s *Store) ReadExtraction(ctx context.Context, id string) (Extraction, *colstore.ParsedFile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, source_path, format, fields, record_count, digest
		FROM extractions
		WHERE id = ?
	`, id)

	e, err := scanExtraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Extraction{}, nil, fmt.Errorf("read extraction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Extraction{}, nil, fmt.Errorf("read extraction %s: %w", id, err)
	}

	columns := make(map[string][]string, len(e.Fields))
	for _, field := range e.Fields {
		columns[field] = make([]string, e.RecordCount)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT record, field, value
		FROM cells
		WHERE extraction_id = ?
		ORDER BY record ASC, field COLLATE BINARY ASC
	`, id)
	if err != nil {
		return Extraction{}, nil, fmt.Errorf("query cells: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			record int
			field  string
			value  string
		)
		if err := rows.Scan(&record, &field, &value); err != nil {
			return Extraction{}, nil, fmt.Errorf("scan cell: %w", err)
		}
		values, ok := columns[field]
		if !ok || record < 0 || record >= len(values) {
			return Extraction{}, nil, fmt.Errorf("cell %s[%d] outside extraction %s", field, record, id)
		}
		values[record] = value
	}
	if err := rows.Err(); err != nil {
		return Extraction{}, nil, fmt.Errorf("iterate cells: %w", err)
	}

	return e, colstore.New(columns), nil
}

// ListExtractions returns every extraction ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) for an empty store.
func (s *Store) ListExtractions(ctx context.Context) ([]Extraction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, source_path, format, fields, record_count, digest
		FROM extractions
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}
	defer rows.Close()

	extractions := []Extraction{}
	for rows.Next() {
		e, err := scanExtraction(rows)
		if err != nil {
			return nil, err
		}
		extractions = append(extractions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate extractions: %w", err)
	}

	return extractions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExtraction(row scanner) (Extraction, error) {
	var (
		e          Extraction
		fieldsJSON string
	)
	if err := row.Scan(&e.ID, &e.Seq, &e.SourcePath, &e.Format, &fieldsJSON, &e.RecordCount, &e.Digest); err != nil {
		return Extraction{}, err
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &e.Fields); err != nil {
		return Extraction{}, fmt.Errorf("unmarshal fields of %s: %w", e.ID, err)
	}
	if e.Fields == nil {
		e.Fields = []string{}
	}
	return e, nil
}

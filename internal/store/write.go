package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/roach88/fextract/internal/colstore"
)

// Extraction describes one stored extraction.
type Extraction struct {
	ID          string   `json:"id"`
	Seq         int64    `json:"seq"`
	SourcePath  string   `json:"source_path"`
	Format      string   `json:"format"`
	Fields      []string `json:"fields"`
	RecordCount int      `json:"record_count"`
	Digest      string   `json:"digest"`
}

// WriteExtraction stores pf under e.ID in a single transaction.
//
// Fields, RecordCount, Digest and Seq are derived from pf and the store;
// values set on e are ignored. If an extraction with the same source path and
// digest already exists, nothing is written and its ID is returned with
// inserted=false.
func (s *Store) WriteExtraction(ctx context.Context, e Extraction, pf *colstore.ParsedFile) (id string, inserted bool, err error) {
	if e.ID == "" {
		return "", false, fmt.Errorf("write extraction: empty id")
	}
	if err := pf.Validate(); err != nil {
		return "", false, fmt.Errorf("write extraction: %w", err)
	}

	e.Fields = pf.Fields()
	e.RecordCount = pf.Len()
	e.Digest = pf.Digest()

	fieldsJSON, err := json.Marshal(e.Fields)
	if err != nil {
		return "", false, fmt.Errorf("write extraction: marshal fields: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("write extraction: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existing string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM extractions WHERE source_path = ? AND digest = ?
	`, e.SourcePath, e.Digest).Scan(&existing)
	switch {
	case err == nil:
		if err = tx.Commit(); err != nil {
			return "", false, fmt.Errorf("write extraction: commit: %w", err)
		}
		return existing, false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", false, fmt.Errorf("write extraction: lookup: %w", err)
	}

	if err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM extractions`).Scan(&e.Seq); err != nil {
		return "", false, fmt.Errorf("write extraction: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO extractions (id, seq, source_path, format, fields, record_count, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Seq, e.SourcePath, e.Format, string(fieldsJSON), e.RecordCount, e.Digest)
	if err != nil {
		return "", false, fmt.Errorf("write extraction: %w", err)
	}

	if err = writeCells(ctx, tx, e.ID, pf); err != nil {
		return "", false, err
	}

	if err = tx.Commit(); err != nil {
		return "", false, fmt.Errorf("write extraction: commit: %w", err)
	}
	return e.ID, true, nil
}

func writeCells(ctx context.Context, tx *sql.Tx, id string, pf *colstore.ParsedFile) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cells (extraction_id, record, field, value) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write cells: prepare: %w", err)
	}
	defer stmt.Close()

	for _, field := range pf.Fields() {
		values, _ := pf.Values(field)
		for record, value := range values {
			if _, err := stmt.ExecContext(ctx, id, record, field, value); err != nil {
				return fmt.Errorf("write cells: %s[%d]: %w", field, record, err)
			}
		}
	}
	return nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fextract/internal/colstore"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePF() *colstore.ParsedFile {
	return colstore.New(map[string][]string{
		"name": {"Alice", "Bob"},
		"age":  {"30", "25"},
	})
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"extractions", "cells"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpen_SchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)

	var index string
	err = s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_extractions_digest'",
	).Scan(&index)
	require.NoError(t, err)

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion+1))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	assert.ErrorContains(t, err, "newer than supported")
}

func TestOpen_Pragmas(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.verifyPragma(tt.name, tt.expected); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestWriteExtraction_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	pf := samplePF()

	id, inserted, err := s.WriteExtraction(ctx, Extraction{
		ID:         "ext-1",
		SourcePath: "people.csv",
		Format:     "csv",
	}, pf)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, "ext-1", id)

	e, got, err := s.ReadExtraction(ctx, "ext-1")
	require.NoError(t, err)
	assert.Equal(t, Extraction{
		ID:          "ext-1",
		Seq:         1,
		SourcePath:  "people.csv",
		Format:      "csv",
		Fields:      []string{"age", "name"},
		RecordCount: 2,
		Digest:      pf.Digest(),
	}, e)
	assert.True(t, pf.Equal(got), "round trip changed store: %s", got)
}

func TestWriteExtraction_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, inserted, err := s.WriteExtraction(ctx, Extraction{ID: "first", SourcePath: "a.csv", Format: "csv"}, samplePF())
	require.NoError(t, err)
	require.True(t, inserted)

	id2, inserted, err := s.WriteExtraction(ctx, Extraction{ID: "second", SourcePath: "a.csv", Format: "csv"}, samplePF())
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, id1, id2)

	// Same content from another source is a separate extraction.
	_, inserted, err = s.WriteExtraction(ctx, Extraction{ID: "third", SourcePath: "b.csv", Format: "csv"}, samplePF())
	require.NoError(t, err)
	assert.True(t, inserted)

	list, err := s.ListExtractions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].ID)
	assert.Equal(t, int64(1), list[0].Seq)
	assert.Equal(t, "third", list[1].ID)
	assert.Equal(t, int64(2), list[1].Seq)
}

func TestWriteExtraction_NormalizationFormsAreDistinct(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	decomposed := colstore.New(map[string][]string{"name": {"Cafe\u0301"}})
	composed := colstore.New(map[string][]string{"name": {"Caf\u00e9"}})

	_, inserted, err := s.WriteExtraction(ctx, Extraction{ID: "nfd", SourcePath: "menu.csv", Format: "csv"}, decomposed)
	require.NoError(t, err)
	require.True(t, inserted)

	id, inserted, err := s.WriteExtraction(ctx, Extraction{ID: "nfc", SourcePath: "menu.csv", Format: "csv"}, composed)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, "nfc", id)

	_, got, err := s.ReadExtraction(ctx, "nfd")
	require.NoError(t, err)
	assert.True(t, decomposed.Equal(got))

	_, got, err = s.ReadExtraction(ctx, "nfc")
	require.NoError(t, err)
	assert.True(t, composed.Equal(got))
}

func TestWriteExtraction_Errors(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	t.Run("empty id", func(t *testing.T) {
		_, _, err := s.WriteExtraction(ctx, Extraction{SourcePath: "a.csv"}, samplePF())
		assert.ErrorContains(t, err, "empty id")
	})

	t.Run("ragged columns", func(t *testing.T) {
		ragged := colstore.New(map[string][]string{"a": {"1"}, "b": {}})
		_, _, err := s.WriteExtraction(ctx, Extraction{ID: "x", SourcePath: "a.csv"}, ragged)
		var re *colstore.RaggedColumnsError
		assert.True(t, errors.As(err, &re), "got %v", err)
	})

	list, err := s.ListExtractions(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWriteExtraction_EmptyStore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, _, err := s.WriteExtraction(ctx, Extraction{ID: "empty", SourcePath: "empty.csv", Format: "csv"}, colstore.New(nil))
	require.NoError(t, err)

	e, pf, err := s.ReadExtraction(ctx, "empty")
	require.NoError(t, err)
	assert.Equal(t, []string{}, e.Fields)
	assert.Equal(t, 0, pf.Len())
	assert.Equal(t, "{}", pf.String())
}

func TestReadExtraction_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, _, err := s.ReadExtraction(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListExtractions_EmptyNotNil(t *testing.T) {
	s := openTestStore(t)

	list, err := s.ListExtractions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Len(t, list, 0)
}

func TestCells_CascadeOnDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, _, err := s.WriteExtraction(ctx, Extraction{ID: "gone", SourcePath: "a.csv", Format: "csv"}, samplePF())
	require.NoError(t, err)

	_, err = s.db.Exec("DELETE FROM extractions WHERE id = ?", "gone")
	require.NoError(t, err)

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM cells").Scan(&count))
	assert.Zero(t, count)
}

package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/fextract/internal/colstore"
	"github.com/roach88/fextract/internal/store"
)

// SQLiteSink records the extraction in a store database, creating it if needed.
type SQLiteSink struct {
	path   string
	newID  func() string
	logger *slog.Logger
}

func newSQLiteSink(path string, opts Options) Sink {
	return &SQLiteSink{path: path, newID: opts.NewID, logger: opts.Logger}
}

func (s *SQLiteSink) Kind() string { return "sqlite" }

func (s *SQLiteSink) Write(ctx context.Context, src Source, pf *colstore.ParsedFile) (Result, error) {
	st, err := store.Open(s.path)
	if err != nil {
		return Result{}, fmt.Errorf("open store %s: %w", s.path, err)
	}
	defer st.Close()

	id, inserted, err := st.WriteExtraction(ctx, store.Extraction{
		ID:         s.newID(),
		SourcePath: src.Path,
		Format:     string(src.Format),
	}, pf)
	if err != nil {
		return Result{}, err
	}

	s.logger.Debug("wrote output", "sink", s.Kind(), "path", s.path, "id", id, "inserted", inserted)
	return Result{
		Sink:     s.Kind(),
		Path:     s.path,
		Records:  pf.Len(),
		Fields:   len(pf.Fields()),
		ID:       id,
		Inserted: inserted,
	}, nil
}

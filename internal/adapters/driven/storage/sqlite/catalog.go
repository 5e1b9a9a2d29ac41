// Package sqlite persists the history of completed index builds. The
// catalog is bookkeeping only: losing it never affects retrieval, which
// reads the index and metadata files directly.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/negah-labs/grounder/internal/core/domain"
	"github.com/negah-labs/grounder/internal/core/ports/driven"
)

var _ driven.BuildCatalog = (*Catalog)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS builds (
	id         TEXT PRIMARY KEY,
	input_dir  TEXT NOT NULL,
	index_path TEXT NOT NULL,
	meta_path  TEXT NOT NULL,
	model      TEXT NOT NULL,
	dimensions INTEGER NOT NULL,
	documents  INTEGER NOT NULL,
	chunks     INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_builds_created_at ON builds(created_at DESC);
`

// Catalog is a SQLite-backed build history.
type Catalog struct {
	db *sql.DB
}

// NewCatalog opens (or creates) the catalog database at path and applies
// the schema.
func NewCatalog(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply catalog schema: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Record stores a completed build.
func (c *Catalog) Record(ctx context.Context, info domain.BuildInfo) error {
	const q = `
INSERT INTO builds (id, input_dir, index_path, meta_path, model, dimensions, documents, chunks, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := c.db.ExecContext(ctx, q,
		info.ID,
		info.InputDir,
		info.IndexPath,
		info.MetaPath,
		info.Model,
		info.Dimensions,
		info.Documents,
		info.Chunks,
		info.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record build %s: %w", info.ID, err)
	}
	return nil
}

// List returns the most recent builds, newest first. A non-positive
// limit returns everything.
func (c *Catalog) List(ctx context.Context, limit int) ([]domain.BuildInfo, error) {
	q := `
SELECT id, input_dir, index_path, meta_path, model, dimensions, documents, chunks, created_at
FROM builds
ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	defer rows.Close()

	var builds []domain.BuildInfo
	for rows.Next() {
		var info domain.BuildInfo
		var createdAt string
		if err := rows.Scan(
			&info.ID,
			&info.InputDir,
			&info.IndexPath,
			&info.MetaPath,
			&info.Model,
			&info.Dimensions,
			&info.Documents,
			&info.Chunks,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan build row: %w", err)
		}
		info.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse build timestamp %q: %w", createdAt, err)
		}
		builds = append(builds, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate build rows: %w", err)
	}

	return builds, nil
}

// Close releases the database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}

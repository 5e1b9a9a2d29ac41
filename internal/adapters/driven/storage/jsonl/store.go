// Package jsonl persists chunk metadata as one JSON object per line,
// in row order. Line i describes the vector at index row i, so the two
// files form a pair and must be written by the same build.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/negah-labs/grounder/internal/core/domain"
	"github.com/negah-labs/grounder/internal/core/ports/driven"
)

var _ driven.MetadataStore = (*Store)(nil)

// Store reads and writes chunk metadata files.
type Store struct{}

// New creates a metadata store.
func New() *Store {
	return &Store{}
}

// Write serialises records to path, one JSON line per record, replacing
// any existing file.
func (s *Store) Write(path string, records []domain.ChunkRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metadata file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode metadata line %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush metadata file: %w", err)
	}
	return nil
}

// Read loads all records from path in line order. Blank lines are
// skipped; a malformed line is an integrity error.
func (s *Store) Read(path string) ([]domain.ChunkRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("metadata file %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open metadata file: %w", err)
	}
	defer f.Close()

	var records []domain.ChunkRecord
	scanner := bufio.NewScanner(f)
	// Chunk text can run to thousands of tokens per line.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec domain.ChunkRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: metadata line %d in %s: %v",
				domain.ErrIndexCorrupt, line, path, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read metadata file: %w", err)
	}

	return records, nil
}

package driven

import "github.com/negah-labs/grounder/internal/core/domain"

// MetadataStore persists chunk records as newline-delimited JSON, one
// record per line, in creation order. Line order must match the vector
// index row order one-to-one; that pairing is validated by the retriever
// at load time.
type MetadataStore interface {
	// Write persists records to path, replacing any existing file.
	Write(path string, records []domain.ChunkRecord) error

	// Read loads all records from path in file order.
	Read(path string) ([]domain.ChunkRecord, error)
}

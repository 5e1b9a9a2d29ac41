package domain

import "time"

// ChunkRecord is the unit of retrieval: a token-bounded slice of one
// section's text. Records are created once during an index build and are
// read-only thereafter. The record's position in the metadata file equals
// its row in the vector index; that ordinal pairing is the sole join
// between the two files.
type ChunkRecord struct {
	// ID is unique and dense (0..N-1) within one index build.
	// It is stable only within that build.
	ID int `json:"id"`

	// SourceDocument is the file name of the originating document.
	SourceDocument string `json:"source_document"`

	// DocumentIndex is the ordinal of the document in sorted file order.
	DocumentIndex int `json:"document_index"`

	// SectionIndex is the position of the parent section within the document.
	SectionIndex int `json:"section_index"`

	// SectionTitle is the heading text of the parent section.
	SectionTitle string `json:"section_title"`

	// ChunkIndex is the position of this chunk within its section,
	// sequential from 0.
	ChunkIndex int `json:"chunk_index"`

	// StartToken and EndToken bound the chunk in the section's token
	// stream as a half-open range; StartToken < EndToken always holds.
	StartToken int `json:"start_token"`
	EndToken   int `json:"end_token"`

	// Text is the decoded chunk text, not raw HTML.
	Text string `json:"text"`
}

// Section is a heading-delimited subdivision of one document. It is an
// intermediate structure: produced by the splitter, consumed immediately
// by the chunker, never persisted.
type Section struct {
	// Title is the flattened heading text, or an ordinal label for
	// documents without headings.
	Title string

	// Fragment is the re-serialized HTML of the section, empty for the
	// no-headings fallback.
	Fragment string

	// Text is the newline-joined plain text of the section.
	Text string
}

// ScoredChunk pairs a chunk record with a similarity or selection score.
type ScoredChunk struct {
	Chunk ChunkRecord `json:"chunk"`

	// Score is the normalized inner-product similarity for retrieval
	// results (roughly [-1, 1]), or the combined relevance/diversity
	// score for selected context.
	Score float64 `json:"score"`
}

// BuildInfo summarises one completed index build.
type BuildInfo struct {
	// ID is a unique identifier for the build run.
	ID string

	// InputDir is the corpus directory the build was run against.
	InputDir string

	// IndexPath and MetaPath are the output files.
	IndexPath string
	MetaPath  string

	// Model is the embedding model used.
	Model string

	// Dimensions is the embedding vector size.
	Dimensions int

	// Documents is the number of documents processed (skipped files
	// excluded).
	Documents int

	// Chunks is the number of chunk records produced.
	Chunks int

	// CreatedAt is when the build completed.
	CreatedAt time.Time
}

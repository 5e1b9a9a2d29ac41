package driving

import (
	"context"

	"github.com/negah-labs/grounder/internal/core/domain"
)

// BuildService constructs a vector index and metadata file from a corpus
// directory. A build fully replaces any prior index/metadata pair.
type BuildService interface {
	// Build processes every .html/.htm file under inputDir in sorted
	// name order and writes the index blob and JSONL metadata.
	Build(ctx context.Context, inputDir, indexPath, metaPath string) (*domain.BuildInfo, error)
}

// RetrievalService answers nearest-neighbour queries against a loaded
// index. Results are deduplicated by chunk id and may be shorter than
// requested when the corpus lacks enough distinct content.
type RetrievalService interface {
	// Retrieve returns up to topK scored chunks, descending by score.
	Retrieve(ctx context.Context, query string, topK int) ([]domain.ScoredChunk, error)
}

// SelectionService re-ranks a retrieval candidate pool into a
// deduplicated, relevance-and-diversity-balanced context set.
type SelectionService interface {
	// Select returns an ordered subset of pool, at most maxOut entries.
	Select(pool []domain.ScoredChunk, keyword, topicHint string, maxOut int) []domain.ScoredChunk
}

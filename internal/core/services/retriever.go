package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/negah-labs/grounder/internal/core/domain"
	"github.com/negah-labs/grounder/internal/core/ports/driven"
	"github.com/negah-labs/grounder/internal/core/ports/driving"
	"github.com/negah-labs/grounder/internal/logger"
)

var _ driving.RetrievalService = (*Retriever)(nil)

// Retriever answers nearest-neighbour queries against a loaded index and
// its metadata. Because adjacent chunks overlap in token space, a naive
// top-k is often dominated by near-duplicates; the retriever over-fetches
// and widens the search window until it has enough distinct chunks or the
// corpus is exhausted.
type Retriever struct {
	embedder *Embedder
	index    driven.VectorIndex
	meta     []domain.ChunkRecord
	settings domain.RetrievalSettings
}

// NewRetriever validates that the index and metadata form a matched pair
// before serving any query. Query embedding goes through the embedder so
// it carries the same retry policy as a build.
func NewRetriever(
	embedder *Embedder,
	index driven.VectorIndex,
	meta []domain.ChunkRecord,
	settings domain.RetrievalSettings,
) (*Retriever, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if index.Len() != len(meta) {
		return nil, fmt.Errorf("%w: index has %d rows, metadata has %d records",
			domain.ErrIndexCorrupt, index.Len(), len(meta))
	}
	if embedder.Dimensions() != index.Dimensions() {
		return nil, fmt.Errorf("%w: model %s produces %d dimensions, index holds %d",
			domain.ErrDimensionMismatch, embedder.ModelName(),
			embedder.Dimensions(), index.Dimensions())
	}

	return &Retriever{
		embedder: embedder,
		index:    index,
		meta:     meta,
		settings: settings,
	}, nil
}

// Retrieve returns up to topK distinct chunks by descending similarity.
// Fewer than topK results is a degraded success, reported as a warning.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]domain.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive", domain.ErrInvalidInput)
	}

	corpus := r.index.Len()
	if corpus == 0 {
		logger.Warn("retrieval against an empty index")
		return nil, nil
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	limit := topK * r.settings.MaxMultiplier
	if limit > corpus {
		limit = corpus
	}
	window := topK * r.settings.Multiplier
	if window > limit {
		window = limit
	}

	var results []domain.ScoredChunk
	for attempt := 0; ; attempt++ {
		hits, err := r.index.Search(vector, window)
		if err != nil {
			return nil, fmt.Errorf("search index: %w", err)
		}

		results = r.distinct(hits)
		if len(results) >= topK || window >= limit || attempt >= r.settings.ExpandAttempts {
			break
		}

		window *= 2
		if window > limit {
			window = limit
		}
		logger.Debug("retrieval short (%d/%d unique), widening window to %d", len(results), topK, window)
	}

	if len(results) > topK {
		results = results[:topK]
	}
	if len(results) < topK {
		logger.Warn("retrieval returned %d of %d requested chunks", len(results), topK)
	}
	return results, nil
}

// distinct maps hits to chunks, dropping rows outside the metadata range
// and duplicate chunk ids. Hits arrive in descending score order, so
// keep-first keeps the best-scoring occurrence.
func (r *Retriever) distinct(hits []driven.VectorHit) []domain.ScoredChunk {
	seen := make(map[int]bool, len(hits))
	results := make([]domain.ScoredChunk, 0, len(hits))
	for _, h := range hits {
		if h.Row < 0 || h.Row >= len(r.meta) {
			logger.Warn("index row %d has no metadata record, skipping", h.Row)
			continue
		}
		rec := r.meta[h.Row]
		if seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		results = append(results, domain.ScoredChunk{Chunk: rec, Score: float64(h.Score)})
	}
	return results
}

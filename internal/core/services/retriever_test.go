package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negah-labs/grounder/internal/core/domain"
	"github.com/negah-labs/grounder/internal/core/ports/driven"
)

// testEmbedder wraps an embedding service in the retrying embedder with
// backoff sleeps stubbed out.
func testEmbedder(t *testing.T, svc driven.EmbeddingService) *Embedder {
	t.Helper()
	e, err := NewEmbedder(svc, domain.DefaultBuildSettings())
	require.NoError(t, err)
	e.sleep = func(context.Context, time.Duration) error { return nil }
	return e
}

// scoredIndex builds a one-dimensional index whose search order follows
// the given per-row scores descending.
func scoredIndex(t *testing.T, scores []float32) *fakeIndex {
	t.Helper()
	idx := newFakeIndex(1)
	for _, s := range scores {
		require.NoError(t, idx.Append([]float32{s}))
	}
	return idx
}

func metaRows(ids ...int) []domain.ChunkRecord {
	records := make([]domain.ChunkRecord, len(ids))
	for i, id := range ids {
		records[i] = domain.ChunkRecord{
			ID:             id,
			SourceDocument: fmt.Sprintf("doc%d.html", id),
			SectionTitle:   fmt.Sprintf("Section %d", id),
			Text:           fmt.Sprintf("chunk %d", id),
		}
	}
	return records
}

func TestNewRetriever_LengthMismatch(t *testing.T) {
	idx := scoredIndex(t, []float32{0.9, 0.8})

	_, err := NewRetriever(testEmbedder(t, newFakeEmbedding(1)), idx, metaRows(0), domain.DefaultRetrievalSettings())
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
}

func TestNewRetriever_DimensionMismatch(t *testing.T) {
	idx := scoredIndex(t, []float32{0.9})

	_, err := NewRetriever(testEmbedder(t, newFakeEmbedding(3)), idx, metaRows(0), domain.DefaultRetrievalSettings())
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestRetrieve_InvalidInput(t *testing.T) {
	idx := scoredIndex(t, []float32{0.9})
	r, err := NewRetriever(testEmbedder(t, newFakeEmbedding(1)), idx, metaRows(0), domain.DefaultRetrievalSettings())
	require.NoError(t, err)

	_, err = r.Retrieve(context.Background(), "  ", 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = r.Retrieve(context.Background(), "query", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRetrieve_EmptyIndex(t *testing.T) {
	idx := newFakeIndex(1)
	r, err := NewRetriever(testEmbedder(t, newFakeEmbedding(1)), idx, nil, domain.DefaultRetrievalSettings())
	require.NoError(t, err)

	results, err := r.Retrieve(context.Background(), "query", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieve_OrderedByScore(t *testing.T) {
	idx := scoredIndex(t, []float32{0.2, 0.9, 0.5})
	r, err := NewRetriever(testEmbedder(t, newFakeEmbedding(1)), idx, metaRows(0, 1, 2), domain.DefaultRetrievalSettings())
	require.NoError(t, err)

	results, err := r.Retrieve(context.Background(), "query", 3)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, 1, results[0].Chunk.ID)
	assert.Equal(t, 2, results[1].Chunk.ID)
	assert.Equal(t, 0, results[2].Chunk.ID)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.GreaterOrEqual(t, results[1].Score, results[2].Score)
}

func TestRetrieve_DeduplicatesKeepingBest(t *testing.T) {
	// Rows 0 and 1 describe the same chunk id; only the higher-scoring
	// row survives.
	idx := scoredIndex(t, []float32{0.9, 0.8, 0.5})
	meta := metaRows(7, 7, 2)

	r, err := NewRetriever(testEmbedder(t, newFakeEmbedding(1)), idx, meta, domain.DefaultRetrievalSettings())
	require.NoError(t, err)

	results, err := r.Retrieve(context.Background(), "query", 3)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, 7, results[0].Chunk.ID)
	assert.Equal(t, 2, results[1].Chunk.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestRetrieve_ExpandsWindowForDuplicates(t *testing.T) {
	// Six rows, but the top four all collapse to chunk id 0. With a 1x
	// over-fetch the first window holds only duplicates; expansion must
	// widen until two distinct chunks surface.
	idx := scoredIndex(t, []float32{0.9, 0.8, 0.7, 0.6, 0.5, 0.4})
	meta := metaRows(0, 0, 0, 0, 1, 2)

	settings := domain.RetrievalSettings{Multiplier: 1, MaxMultiplier: 3, ExpandAttempts: 3}
	r, err := NewRetriever(testEmbedder(t, newFakeEmbedding(1)), idx, meta, settings)
	require.NoError(t, err)

	results, err := r.Retrieve(context.Background(), "query", 2)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Chunk.ID)
	assert.Equal(t, 1, results[1].Chunk.ID)
}

func TestRetrieve_ShortCorpusDegradesGracefully(t *testing.T) {
	idx := scoredIndex(t, []float32{0.9, 0.8})
	r, err := NewRetriever(testEmbedder(t, newFakeEmbedding(1)), idx, metaRows(0, 1), domain.DefaultRetrievalSettings())
	require.NoError(t, err)

	results, err := r.Retrieve(context.Background(), "query", 10)
	require.NoError(t, err, "fewer results than requested is not an error")
	assert.Len(t, results, 2)
}

func TestRetrieve_TruncatesToTopK(t *testing.T) {
	idx := scoredIndex(t, []float32{0.9, 0.8, 0.7, 0.6})
	r, err := NewRetriever(testEmbedder(t, newFakeEmbedding(1)), idx, metaRows(0, 1, 2, 3), domain.DefaultRetrievalSettings())
	require.NoError(t, err)

	results, err := r.Retrieve(context.Background(), "query", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRetrieve_SkipsRowsWithoutMetadata(t *testing.T) {
	idx := scoredIndex(t, []float32{0.9, 0.8})
	idx.searchFn = func(query []float32, k int) ([]driven.VectorHit, error) {
		return []driven.VectorHit{
			{Row: 5, Score: 0.99},
			{Row: 0, Score: 0.9},
			{Row: -1, Score: 0.8},
			{Row: 1, Score: 0.7},
		}, nil
	}

	r, err := NewRetriever(testEmbedder(t, newFakeEmbedding(1)), idx, metaRows(0, 1), domain.DefaultRetrievalSettings())
	require.NoError(t, err)

	results, err := r.Retrieve(context.Background(), "query", 4)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Chunk.ID)
	assert.Equal(t, 1, results[1].Chunk.ID)
}

func TestRetrieve_RetriesTransientEmbeddingFailure(t *testing.T) {
	idx := scoredIndex(t, []float32{0.9, 0.8})
	embedding := newFakeEmbedding(1)
	embedding.failures = 1

	r, err := NewRetriever(testEmbedder(t, embedding), idx, metaRows(0, 1), domain.DefaultRetrievalSettings())
	require.NoError(t, err)

	results, err := r.Retrieve(context.Background(), "query", 2)
	require.NoError(t, err, "a single transient embedding failure must not abort retrieval")

	assert.Len(t, results, 2)
	assert.Equal(t, 2, embedding.calls)
}

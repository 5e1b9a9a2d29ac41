package domain

import (
	"fmt"
	"time"
)

// EmbeddingModelDimensions returns the vector dimensions for known
// embedding models. An unknown model is a configuration error.
func EmbeddingModelDimensions() map[string]int {
	return map[string]int{
		"text-embedding-3-large": 3072,
		"text-embedding-3-small": 1536,
		"text-embedding-ada-002": 1536,
		"nomic-embed-text":       768,
		"all-minilm":             384,
	}
}

// BuildSettings parameterise an index build.
type BuildSettings struct {
	// ChunkTokens is the target window size in tokens.
	ChunkTokens int

	// ChunkOverlap is the number of tokens shared by adjacent windows.
	// Must be strictly less than ChunkTokens.
	ChunkOverlap int

	// EmbedBatchSize is the number of texts per embedding request.
	EmbedBatchSize int

	// MaxRetries is the attempt ceiling per embedding batch.
	MaxRetries int

	// BackoffBase is the initial retry delay; attempt n waits
	// BackoffBase * 2^n.
	BackoffBase time.Duration

	// RequestsPerSecond caps the sustained embedding request rate.
	// Zero disables rate limiting.
	RequestsPerSecond float64
}

// DefaultBuildSettings returns the build parameters the corpus was tuned
// for: 800-token chunks with 100 tokens of overlap, batches of 16, five
// attempts with one-second base backoff.
func DefaultBuildSettings() BuildSettings {
	return BuildSettings{
		ChunkTokens:    800,
		ChunkOverlap:   100,
		EmbedBatchSize: 16,
		MaxRetries:     5,
		BackoffBase:    time.Second,
	}
}

// Validate reports the first invalid build parameter.
func (s BuildSettings) Validate() error {
	if s.ChunkTokens <= 0 {
		return fmt.Errorf("%w: chunk tokens must be positive", ErrConfigInvalid)
	}
	if s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkTokens {
		return fmt.Errorf("%w: chunk overlap must be in [0, chunk tokens)", ErrConfigInvalid)
	}
	if s.EmbedBatchSize <= 0 {
		return fmt.Errorf("%w: embed batch size must be positive", ErrConfigInvalid)
	}
	if s.MaxRetries <= 0 {
		return fmt.Errorf("%w: max retries must be positive", ErrConfigInvalid)
	}
	return nil
}

// RetrievalSettings parameterise nearest-neighbour retrieval.
type RetrievalSettings struct {
	// Multiplier is the over-fetch factor: the first search window is
	// TopK * Multiplier rows, compensating for near-duplicate rows.
	Multiplier int

	// MaxMultiplier caps window expansion at TopK * MaxMultiplier
	// (bounded further by the corpus size).
	MaxMultiplier int

	// ExpandAttempts bounds the number of window-doubling passes when a
	// search returns fewer than TopK unique chunks.
	ExpandAttempts int
}

// DefaultRetrievalSettings returns the retrieval tunables: 8x over-fetch,
// hard cap at 20x, three expansion attempts.
func DefaultRetrievalSettings() RetrievalSettings {
	return RetrievalSettings{
		Multiplier:     8,
		MaxMultiplier:  20,
		ExpandAttempts: 3,
	}
}

// Validate reports the first invalid retrieval parameter.
func (s RetrievalSettings) Validate() error {
	if s.Multiplier <= 0 {
		return fmt.Errorf("%w: multiplier must be positive", ErrConfigInvalid)
	}
	if s.MaxMultiplier < s.Multiplier {
		return fmt.Errorf("%w: max multiplier must be >= multiplier", ErrConfigInvalid)
	}
	if s.ExpandAttempts < 0 {
		return fmt.Errorf("%w: expand attempts must be >= 0", ErrConfigInvalid)
	}
	return nil
}

// SelectionSettings parameterise the relevance/diversity selector.
type SelectionSettings struct {
	// RelevanceWeight and DiversityWeight blend the two signals into the
	// combined score.
	RelevanceWeight float64
	DiversityWeight float64

	// HighRelevance is the relevance score above which a candidate is
	// admitted unconditionally.
	HighRelevance float64

	// DiversityFloor is the minimum diversity score for admission of a
	// candidate below the high-relevance threshold.
	DiversityFloor float64

	// MinSelected is the count below which candidates are admitted
	// without further checks, and which triggers the backfill pass.
	MinSelected int

	// BackfillFloor is the target size of the backfill pass.
	BackfillFloor int

	// MaxVariants bounds how many keyword variants contribute to the
	// relevance score.
	MaxVariants int
}

// DefaultSelectionSettings returns the selector weights and thresholds:
// 0.7 relevance / 0.3 diversity, 0.5 high-relevance floor, backfill from
// 5 up to 10.
func DefaultSelectionSettings() SelectionSettings {
	return SelectionSettings{
		RelevanceWeight: 0.7,
		DiversityWeight: 0.3,
		HighRelevance:   0.5,
		DiversityFloor:  0.3,
		MinSelected:     5,
		BackfillFloor:   10,
		MaxVariants:     5,
	}
}

// Validate reports the first invalid selection parameter.
func (s SelectionSettings) Validate() error {
	if s.RelevanceWeight < 0 || s.DiversityWeight < 0 {
		return fmt.Errorf("%w: selection weights must be non-negative", ErrConfigInvalid)
	}
	if s.MinSelected < 0 || s.BackfillFloor < s.MinSelected {
		return fmt.Errorf("%w: backfill floor must be >= min selected", ErrConfigInvalid)
	}
	if s.MaxVariants < 0 {
		return fmt.Errorf("%w: max variants must be >= 0", ErrConfigInvalid)
	}
	return nil
}

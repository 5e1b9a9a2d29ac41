package domain

import "errors"

// Domain errors represent pipeline failures by class. Configuration and
// integrity errors are fatal and never retried; transient remote errors
// are retried by the embedder before converting to a fatal error.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested entity or file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConfigInvalid indicates settings that no retry can fix, such as
	// an unknown embedding model or missing credentials.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrDimensionMismatch indicates an embedding vector whose size does
	// not match the configured model dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIndexCorrupt indicates the vector index blob or its pairing with
	// the metadata file failed an integrity check at load time.
	ErrIndexCorrupt = errors.New("vector index corrupt")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Builds and retrieval cannot run without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the text-generation service is not
	// configured. Drafting is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmptyCorpus indicates the input directory contained no usable
	// HTML documents or produced no chunks.
	ErrEmptyCorpus = errors.New("no chunks produced from input")
)

// Package chunker splits a token sequence into overlapping fixed-size
// windows whose union covers the sequence with no gaps.
package chunker

import (
	"github.com/negah-labs/grounder/internal/core/ports/driven"
)

// Default window parameters, in tokens.
const (
	DefaultTargetTokens = 800
	DefaultOverlap      = 100
)

// Window is one chunk of a token sequence: the half-open token range
// [Start, End) and its independently decoded text. Adjacent windows
// overlap in token space, so their texts overlap in content; that
// preserves context across a chunk boundary for retrieval recall.
type Window struct {
	Start int
	End   int
	Text  string
}

// Chunker produces overlapping token windows.
type Chunker struct {
	tokenizer driven.Tokenizer
	target    int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithTarget sets the window size in tokens.
func WithTarget(target int) Option {
	return func(c *Chunker) {
		if target > 0 {
			c.target = target
		}
	}
}

// WithOverlap sets the overlap between adjacent windows in tokens.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options. An overlap that reaches
// the window size would stall the scan, so it is clamped to a quarter of
// the target.
func New(tokenizer driven.Tokenizer, opts ...Option) *Chunker {
	c := &Chunker{
		tokenizer: tokenizer,
		target:    DefaultTargetTokens,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.overlap >= c.target {
		c.overlap = c.target / 4
	}

	return c
}

// Target returns the configured window size.
func (c *Chunker) Target() int { return c.target }

// Overlap returns the configured window overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk returns the ordered windows covering tokens. The windows union
// to exactly [0, len(tokens)) with no gaps; every window except the last
// spans exactly the target size. An empty sequence yields nil; callers
// that hold non-empty text for an empty token sequence must synthesize a
// single whole-text chunk themselves.
func (c *Chunker) Chunk(tokens []int) []Window {
	n := len(tokens)
	if n == 0 {
		return nil
	}

	windows := make([]Window, 0, n/(c.target-c.overlap)+1)
	start := 0
	for start < n {
		end := start + c.target
		if end > n {
			end = n
		}

		windows = append(windows, Window{
			Start: start,
			End:   end,
			Text:  c.tokenizer.Decode(tokens[start:end]),
		})

		if end >= n {
			break
		}
		// overlap < target guarantees forward progress.
		start = end - c.overlap
	}

	return windows
}

// Package tiktoken adapts the tiktoken BPE tokenizer to the Tokenizer
// port. The cl100k_base encoding matches the OpenAI embedding models,
// so chunk token counts here line up with what the embedding endpoint
// bills and truncates on.
package tiktoken

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/negah-labs/grounder/internal/core/ports/driven"
)

// DefaultEncoding is the BPE used by the text-embedding-3 family.
const DefaultEncoding = "cl100k_base"

var _ driven.Tokenizer = (*Tokenizer)(nil)

// Tokenizer wraps a tiktoken encoding.
type Tokenizer struct {
	name string
	enc  *tiktoken.Tiktoken
}

// New loads the named BPE encoding. The vocabulary is fetched on first
// use and cached on disk by the library.
func New(encoding string) (*Tokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encoding, err)
	}

	return &Tokenizer{name: encoding, enc: enc}, nil
}

// ForModel loads the encoding appropriate for the given model name.
func ForModel(model string) (*Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("resolve tiktoken encoding for model %q: %w", model, err)
	}
	return &Tokenizer{name: model, enc: enc}, nil
}

// Encode converts text to token ids. Special tokens are treated as
// ordinary text.
func (t *Tokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

// Decode converts token ids back to text.
func (t *Tokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

// Name returns the encoding name.
func (t *Tokenizer) Name() string {
	return t.name
}

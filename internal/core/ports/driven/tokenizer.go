package driven

// Tokenizer converts text to and from sub-word token ids against a fixed
// vocabulary. Chunk boundaries, overlap, and the splitter's bisect
// fallback are all expressed in this token space, so one build must use
// one tokenizer throughout.
type Tokenizer interface {
	// Encode converts text to a token id sequence.
	Encode(text string) []int

	// Decode converts a token id sequence back to text. Decoding a slice
	// of a longer sequence is valid; boundary tokens may render partial
	// words.
	Decode(tokens []int) string

	// Name returns the encoding name, e.g. "cl100k_base".
	Name() string
}

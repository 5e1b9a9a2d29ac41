package chunker

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
)

// numTokenizer decodes each token id to its decimal string; good enough
// to verify window text is cut from the right token range.
type numTokenizer struct{}

func (numTokenizer) Encode(text string) []int {
	fields := strings.Fields(text)
	tokens := make([]int, len(fields))
	for i, f := range fields {
		tokens[i], _ = strconv.Atoi(f)
	}
	return tokens
}

func (numTokenizer) Decode(tokens []int) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = strconv.Itoa(tok)
	}
	return strings.Join(parts, " ")
}

func (numTokenizer) Name() string { return "num-test" }

func seq(n int) []int {
	tokens := make([]int, n)
	for i := range tokens {
		tokens[i] = i
	}
	return tokens
}

func TestNew_ClampsOverlap(t *testing.T) {
	c := New(numTokenizer{}, WithTarget(100), WithOverlap(150))
	if c.Overlap() >= c.Target() {
		t.Errorf("overlap %d should be clamped below target %d", c.Overlap(), c.Target())
	}
}

func TestChunk_Empty(t *testing.T) {
	c := New(numTokenizer{})
	if got := c.Chunk(nil); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestChunk_SingleWindow(t *testing.T) {
	c := New(numTokenizer{}, WithTarget(10), WithOverlap(3))
	windows := c.Chunk(seq(7))

	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if windows[0].Start != 0 || windows[0].End != 7 {
		t.Errorf("expected [0,7), got [%d,%d)", windows[0].Start, windows[0].End)
	}
}

func TestChunk_LongSectionWindows(t *testing.T) {
	// 1200 tokens at target 800 / overlap 100 must produce exactly
	// [0,800) and [700,1200).
	c := New(numTokenizer{}, WithTarget(800), WithOverlap(100))
	windows := c.Chunk(seq(1200))

	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	if windows[0].Start != 0 || windows[0].End != 800 {
		t.Errorf("first window: expected [0,800), got [%d,%d)", windows[0].Start, windows[0].End)
	}
	if windows[1].Start != 700 || windows[1].End != 1200 {
		t.Errorf("second window: expected [700,1200), got [%d,%d)", windows[1].Start, windows[1].End)
	}
}

func TestChunk_Coverage(t *testing.T) {
	cases := []struct {
		n, target, overlap int
	}{
		{1, 10, 3},
		{10, 10, 3},
		{11, 10, 3},
		{250, 100, 20},
		{1200, 800, 100},
		{999, 50, 0},
		{37, 8, 7},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("n=%d target=%d overlap=%d", tc.n, tc.target, tc.overlap), func(t *testing.T) {
			c := New(numTokenizer{}, WithTarget(tc.target), WithOverlap(tc.overlap))
			windows := c.Chunk(seq(tc.n))

			if len(windows) == 0 {
				t.Fatal("expected at least one window")
			}

			// Termination bound: ceil(n / (target - overlap)) iterations.
			step := tc.target - tc.overlap
			maxWindows := (tc.n + step - 1) / step
			if len(windows) > maxWindows {
				t.Errorf("expected at most %d windows, got %d", maxWindows, len(windows))
			}

			// Union covers [0, n) with no gaps.
			if windows[0].Start != 0 {
				t.Errorf("first window starts at %d, not 0", windows[0].Start)
			}
			if windows[len(windows)-1].End != tc.n {
				t.Errorf("last window ends at %d, not %d", windows[len(windows)-1].End, tc.n)
			}
			for i, w := range windows {
				if w.Start >= w.End {
					t.Errorf("window %d has empty range [%d,%d)", i, w.Start, w.End)
				}
				if w.End-w.Start > tc.target {
					t.Errorf("window %d exceeds target: [%d,%d)", i, w.Start, w.End)
				}
				if i > 0 && w.Start > windows[i-1].End {
					t.Errorf("gap between window %d (ends %d) and %d (starts %d)",
						i-1, windows[i-1].End, i, w.Start)
				}
			}
		})
	}
}

func TestChunk_DecodedTextMatchesRange(t *testing.T) {
	c := New(numTokenizer{}, WithTarget(5), WithOverlap(2))
	windows := c.Chunk(seq(12))

	tok := numTokenizer{}
	for i, w := range windows {
		want := tok.Decode(seq(12)[w.Start:w.End])
		if w.Text != want {
			t.Errorf("window %d text %q, want %q", i, w.Text, want)
		}
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/negah-labs/grounder/internal/core/domain"
	"github.com/negah-labs/grounder/internal/core/ports/driven"
)

// wordTokenizer assigns one token id per distinct whitespace-separated
// word. Deterministic and reversible, which is all the pipeline needs.
type wordTokenizer struct {
	words map[int]string
	ids   map[string]int
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{
		words: make(map[int]string),
		ids:   make(map[string]int),
	}
}

func (t *wordTokenizer) Encode(text string) []int {
	fields := strings.Fields(text)
	tokens := make([]int, 0, len(fields))
	for _, w := range fields {
		id, ok := t.ids[w]
		if !ok {
			id = len(t.ids)
			t.ids[w] = id
			t.words[id] = w
		}
		tokens = append(tokens, id)
	}
	return tokens
}

func (t *wordTokenizer) Decode(tokens []int) string {
	words := make([]string, 0, len(tokens))
	for _, id := range tokens {
		words = append(words, t.words[id])
	}
	return strings.Join(words, " ")
}

func (t *wordTokenizer) Name() string { return "word-test" }

// fakeEmbedding is a controllable EmbeddingService. The default vector
// function is a cheap deterministic hash of the text.
type fakeEmbedding struct {
	dims     int
	model    string
	failures int // fail this many EmbedBatch calls before succeeding
	calls    int
	batches  [][]string
	vectorFn func(text string) []float32
}

func newFakeEmbedding(dims int) *fakeEmbedding {
	return &fakeEmbedding{dims: dims, model: "fake-embed"}
}

func (f *fakeEmbedding) vector(text string) []float32 {
	if f.vectorFn != nil {
		return f.vectorFn(text)
	}
	v := make([]float32, f.dims)
	for i, b := range []byte(text) {
		v[i%f.dims] += float32(b)
	}
	return v
}

func (f *fakeEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector(text), nil
}

func (f *fakeEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient provider error")
	}
	f.batches = append(f.batches, append([]string(nil), texts...))

	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = f.vector(t)
	}
	return vectors, nil
}

func (f *fakeEmbedding) Dimensions() int              { return f.dims }
func (f *fakeEmbedding) ModelName() string            { return f.model }
func (f *fakeEmbedding) Ping(ctx context.Context) error { return nil }
func (f *fakeEmbedding) Close() error                 { return nil }

// fakeIndex is an in-memory VectorIndex that scores by plain dot
// product. searchFn, when set, overrides Search entirely.
type fakeIndex struct {
	dims     int
	rows     [][]float32
	savedTo  string
	searchFn func(query []float32, k int) ([]driven.VectorHit, error)
}

func newFakeIndex(dims int) *fakeIndex {
	return &fakeIndex{dims: dims}
}

func (f *fakeIndex) Append(vector []float32) error {
	if len(vector) != f.dims {
		return fmt.Errorf("bad dims %d", len(vector))
	}
	f.rows = append(f.rows, append([]float32(nil), vector...))
	return nil
}

func (f *fakeIndex) Search(query []float32, k int) ([]driven.VectorHit, error) {
	if f.searchFn != nil {
		return f.searchFn(query, k)
	}

	hits := make([]driven.VectorHit, len(f.rows))
	for i, row := range f.rows {
		var dot float32
		for j := range row {
			dot += row[j] * query[j]
		}
		hits[i] = driven.VectorHit{Row: i, Score: dot}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func (f *fakeIndex) Len() int        { return len(f.rows) }
func (f *fakeIndex) Dimensions() int { return f.dims }

func (f *fakeIndex) Save(path string) error {
	f.savedTo = path
	return nil
}

// fakeMetaStore keeps written records in memory, keyed by path.
type fakeMetaStore struct {
	files map[string][]domain.ChunkRecord
}

func newFakeMetaStore() *fakeMetaStore {
	return &fakeMetaStore{files: make(map[string][]domain.ChunkRecord)}
}

func (f *fakeMetaStore) Write(path string, records []domain.ChunkRecord) error {
	f.files[path] = append([]domain.ChunkRecord(nil), records...)
	return nil
}

func (f *fakeMetaStore) Read(path string) ([]domain.ChunkRecord, error) {
	records, ok := f.files[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return records, nil
}

// fakeCatalog records builds in memory.
type fakeCatalog struct {
	builds []domain.BuildInfo
	err    error
}

func (f *fakeCatalog) Record(ctx context.Context, info domain.BuildInfo) error {
	if f.err != nil {
		return f.err
	}
	f.builds = append(f.builds, info)
	return nil
}

func (f *fakeCatalog) List(ctx context.Context, limit int) ([]domain.BuildInfo, error) {
	return f.builds, nil
}

func (f *fakeCatalog) Close() error { return nil }

// fakeBuildService counts Build invocations for watcher tests.
type fakeBuildService struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeBuildService) Build(ctx context.Context, inputDir, indexPath, metaPath string) (*domain.BuildInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.BuildInfo{ID: "test-build", InputDir: inputDir}, nil
}

func (f *fakeBuildService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

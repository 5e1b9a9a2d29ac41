// Package flat provides an exhaustive inner-product vector index.
// Vectors are unit-normalised on append, making inner-product search
// equivalent to cosine similarity. The index is immutable after a build:
// retrieval only reads, so concurrent searches against one loaded index
// need no locking.
package flat

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/negah-labs/grounder/internal/core/domain"
	"github.com/negah-labs/grounder/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// File format constants. The on-disk blob is little-endian: magic,
// version, dimensions, row count, then count*dim float32 values.
const (
	fileMagic   uint32 = 0x47524458 // "GRDX"
	fileVersion uint32 = 1
)

// Index stores normalised vectors in a flat row-major slice.
type Index struct {
	dim  int
	data []float32
}

// New creates an empty index with the given fixed dimension.
func New(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", domain.ErrConfigInvalid)
	}
	return &Index{dim: dimensions}, nil
}

// Append normalises vector to unit L2 norm and adds it as the next row.
func (idx *Index) Append(vector []float32) error {
	if len(vector) != idx.dim {
		return fmt.Errorf("%w: got %d, index expects %d",
			domain.ErrDimensionMismatch, len(vector), idx.dim)
	}

	row := make([]float32, idx.dim)
	copy(row, vector)
	normalize(row)
	idx.data = append(idx.data, row...)
	return nil
}

// Search returns up to k rows by descending inner product with query,
// ties broken by ascending row order.
func (idx *Index) Search(query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != idx.dim {
		return nil, fmt.Errorf("%w: query has %d, index expects %d",
			domain.ErrDimensionMismatch, len(query), idx.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	q := make([]float32, idx.dim)
	copy(q, query)
	normalize(q)

	n := idx.Len()
	hits := make([]driven.VectorHit, n)
	for row := 0; row < n; row++ {
		base := row * idx.dim
		var dot float32
		for i := 0; i < idx.dim; i++ {
			dot += idx.data[base+i] * q[i]
		}
		hits[row] = driven.VectorHit{Row: row, Score: dot}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of rows.
func (idx *Index) Len() int {
	return len(idx.data) / idx.dim
}

// Dimensions returns the fixed vector size.
func (idx *Index) Dimensions() int {
	return idx.dim
}

// Save serialises the index to path, replacing any existing file.
func (idx *Index) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	header := []uint32{fileMagic, fileVersion, uint32(idx.dim), uint32(idx.Len())}
	for _, v := range header {
		if err := binary.Write(f, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("write index header: %w", err)
		}
	}
	if err := binary.Write(f, binary.LittleEndian, idx.data); err != nil {
		return fmt.Errorf("write index rows: %w", err)
	}
	return nil
}

// Load reads an index previously written by Save. A truncated or
// malformed file is an integrity error.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("index file %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var magic, version, dim, count uint32
	for _, field := range []*uint32{&magic, &version, &dim, &count} {
		if err := binary.Read(f, binary.LittleEndian, field); err != nil {
			return nil, fmt.Errorf("%w: short header in %s", domain.ErrIndexCorrupt, path)
		}
	}
	if magic != fileMagic {
		return nil, fmt.Errorf("%w: bad magic in %s", domain.ErrIndexCorrupt, path)
	}
	if version != fileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d in %s", domain.ErrIndexCorrupt, version, path)
	}
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero dimensions in %s", domain.ErrIndexCorrupt, path)
	}

	data := make([]float32, int(dim)*int(count))
	if err := binary.Read(f, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("%w: short row data in %s", domain.ErrIndexCorrupt, path)
	}

	return &Index{dim: int(dim), data: data}, nil
}

// normalize scales v to unit L2 norm in place. The zero vector is left
// untouched.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}

package flat

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negah-labs/grounder/internal/core/domain"
)

func TestNew_RejectsBadDimensions(t *testing.T) {
	_, err := New(0)
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)

	_, err = New(-3)
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)
}

func TestAppend_DimensionMismatch(t *testing.T) {
	idx, err := New(3)
	require.NoError(t, err)

	err = idx.Append([]float32{1, 0})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 0, idx.Len())
}

func TestAppend_NormalisesRows(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)

	require.NoError(t, idx.Append([]float32{3, 4}))

	hits, err := idx.Search([]float32{3, 4}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	// A vector matched against itself scores 1 after normalisation.
	assert.InDelta(t, 1.0, float64(hits[0].Score), 1e-5)
}

func TestSearch_SelfMatchIsTop(t *testing.T) {
	idx, err := New(3)
	require.NoError(t, err)

	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{1, 1, 0},
	}
	for _, v := range vectors {
		require.NoError(t, idx.Append(v))
	}

	for row, v := range vectors {
		hits, err := idx.Search(v, 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, row, hits[0].Row, "vector %v should match itself first", v)
	}
}

func TestSearch_OrderingAndTieBreak(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)

	// Rows 1 and 2 are identical, row 0 is orthogonal to the query.
	require.NoError(t, idx.Append([]float32{0, 1}))
	require.NoError(t, idx.Append([]float32{1, 0}))
	require.NoError(t, idx.Append([]float32{1, 0}))

	hits, err := idx.Search([]float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, 1, hits[0].Row)
	assert.Equal(t, 2, hits[1].Row)
	assert.Equal(t, 0, hits[2].Row)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
	assert.GreaterOrEqual(t, hits[1].Score, hits[2].Score)
}

func TestSearch_KLargerThanIndex(t *testing.T) {
	idx, err := New(2)
	require.NoError(t, err)
	require.NoError(t, idx.Append([]float32{1, 0}))

	hits, err := idx.Search([]float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearch_DimensionMismatch(t *testing.T) {
	idx, err := New(3)
	require.NoError(t, err)

	_, err = idx.Search([]float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.grdx")

	idx, err := New(4)
	require.NoError(t, err)
	vectors := [][]float32{
		{1, 2, 3, 4},
		{4, 3, 2, 1},
		{-1, 0, 1, 0},
	}
	for _, v := range vectors {
		require.NoError(t, idx.Append(v))
	}
	require.NoError(t, idx.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, idx.Dimensions(), loaded.Dimensions())
	assert.Equal(t, idx.Len(), loaded.Len())

	// Search results must be identical across the round trip.
	query := []float32{1, 1, 1, 1}
	want, err := idx.Search(query, 3)
	require.NoError(t, err)
	got, err := loaded.Search(query, 3)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Row, got[i].Row)
		assert.InDelta(t, float64(want[i].Score), float64(got[i].Score), 1e-6)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.grdx"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoad_CorruptFile(t *testing.T) {
	dir := t.TempDir()

	cases := map[string][]byte{
		"empty":     {},
		"bad magic": {0xde, 0xad, 0xbe, 0xef, 1, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0},
		"truncated": {0x58, 0x44, 0x52, 0x47, 1, 0, 0, 0},
	}

	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, blob, 0o600))

			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrIndexCorrupt), "expected corrupt-index error, got %v", err)
		})
	}
}

func TestLoad_TruncatedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.grdx")

	idx, err := New(3)
	require.NoError(t, err)
	require.NoError(t, idx.Append([]float32{1, 2, 3}))
	require.NoError(t, idx.Append([]float32{4, 5, 6}))
	require.NoError(t, idx.Save(path))

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, blob[:len(blob)-4], 0o600))

	_, err = Load(path)
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
}

func TestNormalize_ZeroVectorUnchanged(t *testing.T) {
	v := []float32{0, 0, 0}
	normalize(v)
	for _, x := range v {
		assert.False(t, math.IsNaN(float64(x)))
		assert.Zero(t, x)
	}
}

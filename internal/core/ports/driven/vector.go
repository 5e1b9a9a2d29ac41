package driven

// VectorIndex is an append-only, build-time-immutable store of
// unit-normalised vectors searched by inner product (equivalent to cosine
// similarity after normalisation). Row order equals append order, so a
// search hit's row can be used to look up the corresponding chunk record
// by position in the metadata file.
type VectorIndex interface {
	// Append normalises the vector to unit L2 norm and adds it as the
	// next row. The vector's length must equal Dimensions.
	Append(vector []float32) error

	// Search returns up to k rows by descending inner product with the
	// query, ties broken by ascending row. The query is normalised
	// internally.
	Search(query []float32, k int) ([]VectorHit, error)

	// Len returns the number of rows.
	Len() int

	// Dimensions returns the fixed vector size.
	Dimensions() int

	// Save serialises the index to the given path as an opaque blob.
	Save(path string) error
}

// VectorHit is a nearest-neighbour search result.
type VectorHit struct {
	// Row is the index row, equal to the chunk's metadata line ordinal.
	Row int

	// Score is the inner product with the query, roughly [-1, 1] for
	// normalised vectors.
	Score float32
}

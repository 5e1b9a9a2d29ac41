package driven

import (
	"context"

	"github.com/negah-labs/grounder/internal/core/domain"
)

// BuildCatalog records completed index builds for inspection. This is an
// optional service - when nil, builds simply go unrecorded.
type BuildCatalog interface {
	// Record stores a completed build.
	Record(ctx context.Context, info domain.BuildInfo) error

	// List returns the most recent builds, newest first.
	List(ctx context.Context, limit int) ([]domain.BuildInfo, error)

	// Close releases resources.
	Close() error
}

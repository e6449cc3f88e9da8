package source

import (
	"context"

	"github.com/simtools/handmon/internal/domain/handedness"
)

// Source produces one handedness reading per poll tick.
type Source interface {
	// Read returns the current classification. Errors indicate the reading
	// could not be taken at all; callers treat them as Unknown for the tick.
	Read(ctx context.Context) (handedness.Signal, error)

	// Close releases any resources held by the source.
	Close() error
}

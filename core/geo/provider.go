package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/fieldroute/core/logger"
)

// ErrProviderFailure wraps any error returned by a road-network provider.
var ErrProviderFailure = errors.New("duration provider failure")

// Source identifies where a duration matrix came from.
type Source string

const (
	SourceRoad      Source = "road"
	SourceHaversine Source = "haversine"
)

// MatrixProvider returns real-world travel durations in seconds between every
// pair of points.
type MatrixProvider interface {
	Durations(ctx context.Context, points []Point) ([][]int, error)
}

// ResolveDurations asks the provider for a duration matrix and substitutes the
// haversine estimate when the provider is nil, fails or returns a matrix of
// the wrong shape. The returned error is informational only: a non-nil error
// always comes with the estimated matrix.
func ResolveDurations(ctx context.Context, provider MatrixProvider, points []Point, p Profile, log logger.Logger) ([][]int, Source, error) {
	if provider == nil || len(points) == 0 {
		return BuildDurationMatrix(points, p), SourceHaversine, nil
	}
	m, err := provider.Durations(ctx, points)
	if err == nil && !IsSquare(m, len(points)) {
		err = fmt.Errorf("matrix shape %d rows for %d points", len(m), len(points))
	}
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrProviderFailure, err)
		if log != nil {
			log.Warnf("road durations unavailable, using haversine: %v", err)
		}
		return BuildDurationMatrix(points, p), SourceHaversine, err
	}
	return m, SourceRoad, nil
}

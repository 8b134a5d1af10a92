package geo

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineKnownDistances(t *testing.T) {
	cases := []struct {
		name     string
		a, b     Point
		min, max float64
	}{
		{"dallas-chicago", Point{32.7767, -96.7970}, Point{41.8781, -87.6298}, 1280, 1320},
		{"nyc-la", Point{40.7128, -74.0060}, Point{34.0522, -118.2437}, 3900, 4000},
		{"short hop", Point{32.7767, -96.7970}, Point{32.8167, -96.7970}, 4, 6},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := DistanceKm(c.a, c.b)
			if d < c.min || d > c.max {
				t.Fatalf("distance %.1f outside [%.0f, %.0f]", d, c.min, c.max)
			}
		})
	}
}

func TestHaversineSymmetryAndIdentity(t *testing.T) {
	pts := []Point{{32.78, -96.80}, {-33.86, 151.21}, {51.5, -0.12}, {0, 0}, {89.9, 179.9}}
	for _, a := range pts {
		assert.InDelta(t, 0, DistanceKm(a, a), 1e-9)
		for _, b := range pts {
			ab, ba := DistanceKm(a, b), DistanceKm(b, a)
			assert.InDelta(t, ab, ba, 1e-9)
			assert.GreaterOrEqual(t, ab, 0.0)
		}
	}
}

func TestEstimateTravelSeconds(t *testing.T) {
	assert.Equal(t, 3600, EstimateTravelSeconds(30, ProfileUrban))
	assert.Equal(t, 3600, EstimateTravelSeconds(30, ""))
	assert.Equal(t, 3600, EstimateTravelSeconds(30, "unknown"))
	assert.Equal(t, 2400, EstimateTravelSeconds(30, ProfileSuburban))
	assert.Equal(t, 5400, EstimateTravelSeconds(30, ProfileRushHour))
	assert.Equal(t, 3600, EstimateTravelSeconds(65, ProfileHighway))
	assert.True(t, ProfileHighway.Known())
	assert.False(t, Profile("boat").Known())
}

func TestMatricesSymmetricZeroDiagonal(t *testing.T) {
	pts := []Point{{32.78, -96.80}, {32.90, -96.75}, {32.70, -97.00}}
	dist := BuildDistanceMatrix(pts)
	dur := BuildDurationMatrix(pts, ProfileUrban)
	require.True(t, IsSquare(dist, 3))
	require.True(t, IsSquare(dur, 3))
	for i := range pts {
		assert.Zero(t, dist[i][i])
		assert.Zero(t, dur[i][i])
		for j := range pts {
			assert.Equal(t, dist[i][j], dist[j][i])
			assert.Equal(t, dur[i][j], dur[j][i])
		}
	}
	assert.Equal(t, EstimateTravelSeconds(dist[0][2], ProfileUrban), dur[0][2])
	assert.Empty(t, BuildDistanceMatrix(nil))
}

type stubProvider struct {
	m   [][]int
	err error
}

func (s stubProvider) Durations(context.Context, []Point) ([][]int, error) { return s.m, s.err }

func TestResolveDurations(t *testing.T) {
	pts := []Point{{32.78, -96.80}, {32.90, -96.75}}
	estimate := BuildDurationMatrix(pts, ProfileUrban)

	m, src, err := ResolveDurations(context.Background(), nil, pts, ProfileUrban, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceHaversine, src)
	assert.Equal(t, estimate, m)

	road := [][]int{{0, 600}, {620, 0}}
	m, src, err = ResolveDurations(context.Background(), stubProvider{m: road}, pts, ProfileUrban, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceRoad, src)
	assert.Equal(t, road, m)

	m, src, err = ResolveDurations(context.Background(), stubProvider{err: errors.New("down")}, pts, ProfileUrban, nil)
	assert.ErrorIs(t, err, ErrProviderFailure)
	assert.Equal(t, SourceHaversine, src)
	assert.Equal(t, estimate, m)

	m, src, err = ResolveDurations(context.Background(), stubProvider{m: [][]int{{0}}}, pts, ProfileUrban, nil)
	assert.ErrorIs(t, err, ErrProviderFailure)
	assert.Equal(t, SourceHaversine, src)
	assert.Equal(t, estimate, m)
}

func TestHaversineAntipodal(t *testing.T) {
	d := Haversine(0, 0, 0, 180)
	assert.InDelta(t, math.Pi*EarthRadiusKm, d, 1e-6)
}

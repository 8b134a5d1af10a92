package geo

// BuildDistanceMatrix returns the symmetric N×N haversine distance matrix in km.
func BuildDistanceMatrix(points []Point) [][]float64 {
	n := len(points)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := DistanceKm(points[i], points[j])
			m[i][j] = d
			m[j][i] = d
		}
	}
	return m
}

// BuildDurationMatrix returns the symmetric N×N travel time matrix in seconds
// estimated from haversine distances and the given profile.
func BuildDurationMatrix(points []Point, p Profile) [][]int {
	n := len(points)
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := EstimateTravelSeconds(DistanceKm(points[i], points[j]), p)
			m[i][j] = s
			m[j][i] = s
		}
	}
	return m
}

// IsSquare reports whether m is an n×n matrix.
func IsSquare[T any](m [][]T, n int) bool {
	if len(m) != n {
		return false
	}
	for _, row := range m {
		if len(row) != n {
			return false
		}
	}
	return true
}

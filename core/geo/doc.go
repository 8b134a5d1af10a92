// Package geo converts coordinates into distances and travel durations.
//
// Durations come either from a static speed-profile estimate over the
// haversine distance or from an optional road-network MatrixProvider. The
// provider is a pure substitution at the matrix level: when it is missing or
// fails, ResolveDurations returns the estimate instead.
package geo

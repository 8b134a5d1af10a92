package geo

// Profile selects the average speed used to estimate travel time.
type Profile string

const (
	ProfileUrban    Profile = "urban"
	ProfileSuburban Profile = "suburban"
	ProfileHighway  Profile = "highway"
	ProfileRushHour Profile = "rush_hour"
)

var speedsKmh = map[Profile]float64{
	ProfileUrban:    30,
	ProfileSuburban: 45,
	ProfileHighway:  65,
	ProfileRushHour: 20,
}

// Speed returns the profile's average speed in km/h. Unknown profiles use the
// urban speed.
func (p Profile) Speed() float64 {
	if s, ok := speedsKmh[p]; ok {
		return s
	}
	return speedsKmh[ProfileUrban]
}

// Known reports whether p is one of the predefined profiles.
func (p Profile) Known() bool {
	_, ok := speedsKmh[p]
	return ok
}

// EstimateTravelSeconds converts a distance into whole seconds of travel.
func EstimateTravelSeconds(distanceKm float64, p Profile) int {
	return int(distanceKm / p.Speed() * 3600)
}

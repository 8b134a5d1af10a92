package model

// Default working hours and capacity applied by NewTechnician.
const (
	DefaultMaxCapacity   = 8
	DefaultAvailableFrom = 8 * 3600
	DefaultAvailableTo   = 18 * 3600
)

// Technician is a mobile worker that can be routed through a set of jobs.
// Working hours are expressed in seconds from midnight of the planning day.
type Technician struct {
	ID            string   `json:"id" yaml:"id" validate:"required"`
	Name          string   `json:"name" yaml:"name"`
	Lat           float64  `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lon           float64  `json:"lon" yaml:"lon" validate:"gte=-180,lte=180"`
	Skills        []string `json:"skills" yaml:"skills"`
	MaxCapacity   int      `json:"max_capacity" yaml:"max_capacity" validate:"gte=0"`
	CurrentLoad   int      `json:"current_load" yaml:"current_load" validate:"gte=0"`
	AvailableFrom int      `json:"available_from" yaml:"available_from" validate:"gte=0,lte=86400"`
	AvailableTo   int      `json:"available_to" yaml:"available_to" validate:"gte=0,lte=86400"`
}

// NewTechnician returns a technician with the default capacity and an
// 08:00-18:00 working day.
func NewTechnician(id, name string, lat, lon float64, skills ...string) Technician {
	return Technician{
		ID:            id,
		Name:          name,
		Lat:           lat,
		Lon:           lon,
		Skills:        skills,
		MaxCapacity:   DefaultMaxCapacity,
		AvailableFrom: DefaultAvailableFrom,
		AvailableTo:   DefaultAvailableTo,
	}
}

// RemainingCapacity is the number of additional jobs the technician can take.
func (t Technician) RemainingCapacity() int {
	if r := t.MaxCapacity - t.CurrentLoad; r > 0 {
		return r
	}
	return 0
}

// HasSkills reports whether the technician's skills are a superset of required.
func (t Technician) HasSkills(required []string) bool {
	if len(required) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(t.Skills))
	for _, s := range t.Skills {
		have[s] = struct{}{}
	}
	for _, s := range required {
		if _, ok := have[s]; !ok {
			return false
		}
	}
	return true
}

// WorkingHours returns the technician's shift. A zero end is treated as the
// end of the day so that partially filled records remain routable.
func (t Technician) WorkingHours() (from, to int) {
	if t.AvailableTo <= 0 {
		return t.AvailableFrom, 24 * 3600
	}
	return t.AvailableFrom, t.AvailableTo
}

package routing

import (
	"github.com/kilianp07/fieldroute/core/geo"
	"github.com/kilianp07/fieldroute/core/model"
)

// TimeWindow is an interval in seconds from midnight.
type TimeWindow struct {
	Start int
	End   int
}

// Contains reports whether t lies inside the window.
func (w TimeWindow) Contains(t int) bool { return t >= w.Start && t <= w.End }

// Vehicle is a technician in solver space.
type Vehicle struct {
	ID       string
	Start    int
	End      int
	Capacity int
	Skills   []int
	Window   TimeWindow
}

// Task is a job in solver space. Every task consumes one unit of capacity.
type Task struct {
	ID       string
	Point    int
	Service  int
	Delivery int
	Priority int
	Skills   []int
	Window   *TimeWindow
}

// Problem is the transient, index based encoding of one planning run.
// Vehicles and Tasks keep the order of the technicians and jobs they were
// built from.
type Problem struct {
	Vehicles     []Vehicle
	Tasks        []Task
	Points       []geo.Point
	Durations    [][]int
	Distances    [][]float64
	MatrixSource geo.Source
	// MatrixErr is the road provider error that caused a haversine fallback.
	MatrixErr error

	// TechIndex and JobIndex map domain ids to point indices.
	TechIndex map[string]int
	JobIndex  map[string]int
	// Skills is the tag vocabulary of this build.
	Skills map[string]int

	Technicians []model.Technician
	Jobs        []model.Job
}

// Travel returns the travel time in seconds between two points.
func (p *Problem) Travel(from, to int) int { return p.Durations[from][to] }

// CanServe reports whether vehicle v may be given task t based on skills.
func (p *Problem) CanServe(v, t int) bool {
	return subset(p.Tasks[t].Skills, p.Vehicles[v].Skills)
}

// subset reports whether every id of need is present in have.
func subset(need, have []int) bool {
	if len(need) == 0 {
		return true
	}
	set := make(map[int]struct{}, len(have))
	for _, s := range have {
		set[s] = struct{}{}
	}
	for _, s := range need {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}

// skillIndex encodes skill tags as small integers in first-seen order. A new
// index is used for every build.
type skillIndex map[string]int

func (s skillIndex) ids(tags []string) []int {
	if len(tags) == 0 {
		return nil
	}
	out := make([]int, 0, len(tags))
	for _, tag := range tags {
		id, ok := s[tag]
		if !ok {
			id = len(s) + 1
			s[tag] = id
		}
		out = append(out, id)
	}
	return out
}

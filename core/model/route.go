package model

import (
	"fmt"
	"sort"
)

// RouteStop is one visit in a technician's route.
type RouteStop struct {
	JobID            string  `json:"job_id" yaml:"job_id"`
	TechnicianID     string  `json:"technician_id" yaml:"technician_id"`
	ArrivalTime      string  `json:"arrival_time" yaml:"arrival_time"`
	DepartureTime    string  `json:"departure_time" yaml:"departure_time"`
	ArrivalSeconds   int     `json:"arrival_seconds" yaml:"arrival_seconds"`
	DepartureSeconds int     `json:"departure_seconds" yaml:"departure_seconds"`
	TravelMinutes    int     `json:"travel_minutes" yaml:"travel_minutes"`
	ServiceMinutes   int     `json:"service_minutes" yaml:"service_minutes"`
	Lat              float64 `json:"lat" yaml:"lat"`
	Lon              float64 `json:"lon" yaml:"lon"`
	Address          string  `json:"address" yaml:"address"`
	DistanceKm       float64 `json:"distance_km" yaml:"distance_km"`

	// Job is the job the stop was planned from. It is carried forward when
	// the schedule is re-optimized and is not serialized.
	Job *Job `json:"-" yaml:"-"`
}

// Schedule maps technician ids to their ordered stops.
type Schedule map[string][]RouteStop

// Len returns the number of stops across all technicians.
func (s Schedule) Len() int {
	n := 0
	for _, stops := range s {
		n += len(stops)
	}
	return n
}

// TechnicianIDs returns the technician ids in sorted order.
func (s Schedule) TechnicianIDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// JobIDs returns every scheduled job id, technicians in sorted order and stops
// in route order.
func (s Schedule) JobIDs() []string {
	var ids []string
	for _, tech := range s.TechnicianIDs() {
		for _, st := range s[tech] {
			ids = append(ids, st.JobID)
		}
	}
	return ids
}

// FormatClock renders seconds from midnight as HH:MM, wrapping past midnight.
func FormatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", (secs/3600)%24, (secs%3600)/60)
}

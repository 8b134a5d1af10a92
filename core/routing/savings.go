package routing

import "github.com/kilianp07/fieldroute/core/model"

// DefaultNaiveFactor approximates how much longer an unoptimized plan drives.
const DefaultNaiveFactor = 1.4

// SavingsReport summarises the efficiency of a schedule.
type SavingsReport struct {
	OptimizedKm        float64 `json:"optimized_km"`
	NaiveKm            float64 `json:"naive_estimate_km"`
	SavingsKm          float64 `json:"savings_km"`
	SavingsPct         float64 `json:"savings_pct"`
	TotalTravelMinutes int     `json:"total_travel_minutes"`
	JobsAssigned       int     `json:"jobs_assigned"`
}

// EstimateSavings compares the schedule's distance with a naive baseline of
// optimizedKm × naiveFactor. A non-positive factor uses DefaultNaiveFactor.
func EstimateSavings(s model.Schedule, naiveFactor float64) SavingsReport {
	if naiveFactor <= 0 {
		naiveFactor = DefaultNaiveFactor
	}
	var km float64
	var minutes, jobs int
	for _, stops := range s {
		for _, st := range stops {
			km += st.DistanceKm
			minutes += st.TravelMinutes
			jobs++
		}
	}
	naive := km * naiveFactor
	rep := SavingsReport{
		OptimizedKm:        round1(km),
		NaiveKm:            round1(naive),
		SavingsKm:          round1(naive - km),
		TotalTravelMinutes: minutes,
		JobsAssigned:       jobs,
	}
	if naive > 0 {
		rep.SavingsPct = round1((1 - km/naive) * 100)
	}
	return rep
}

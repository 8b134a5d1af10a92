package routing

import (
	"math"

	"github.com/kilianp07/fieldroute/core/model"
)

// decode maps a Solution back to domain ids. Travel and distance of each stop
// are recomputed from the previous stop, or from the technician's home for
// the first one, using the problem matrices.
func decode(p *Problem, sol *Solution) model.Schedule {
	sched := make(model.Schedule, len(p.Vehicles))
	for _, v := range p.Vehicles {
		sched[v.ID] = []model.RouteStop{}
	}
	for _, r := range sol.Routes {
		veh := p.Vehicles[r.Vehicle]
		prev := veh.Start
		stops := make([]model.RouteStop, 0, len(r.Steps))
		for _, st := range r.Steps {
			task := p.Tasks[st.Task]
			job := p.Jobs[st.Task]
			stops = append(stops, model.RouteStop{
				JobID:            job.ID,
				TechnicianID:     veh.ID,
				ArrivalTime:      model.FormatClock(st.Arrival),
				DepartureTime:    model.FormatClock(st.Departure()),
				ArrivalSeconds:   st.Arrival,
				DepartureSeconds: st.Departure(),
				TravelMinutes:    p.Travel(prev, task.Point) / 60,
				ServiceMinutes:   st.Service / 60,
				Lat:              job.Lat,
				Lon:              job.Lon,
				Address:          job.Address,
				DistanceKm:       round1(p.Distances[prev][task.Point]),
				Job:              &job,
			})
			prev = task.Point
		}
		sched[veh.ID] = stops
	}
	return sched
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

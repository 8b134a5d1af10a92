package routing

import (
	"github.com/kilianp07/fieldroute/core/geo"
	"github.com/kilianp07/fieldroute/core/model"
)

// BaselineReport describes a plan built without any optimization.
type BaselineReport struct {
	Schedule     map[string][]string `json:"schedule"`
	DistanceKm   float64             `json:"distance_km"`
	JobsAssigned int                 `json:"jobs_assigned"`
}

// NaiveBaseline fills technicians one after the other, in input order, with
// jobs in input order up to their remaining capacity. A slot is spent when the
// next job does not match the technician's skills, and the job waits for a
// later technician. Jobs that no technician can serve are skipped. Distance is
// the haversine length of each route from the technician's home.
func NaiveBaseline(techs []model.Technician, jobs []model.Job) BaselineReport {
	rep := BaselineReport{Schedule: make(map[string][]string, len(techs))}
	var queue []model.Job
	for _, job := range jobs {
		if servable(techs, job) {
			queue = append(queue, job)
		}
	}
	next := 0
	for _, t := range techs {
		rep.Schedule[t.ID] = []string{}
		prev := geo.Point{Lat: t.Lat, Lon: t.Lon}
		for slot := 0; slot < t.RemainingCapacity() && next < len(queue); slot++ {
			job := queue[next]
			if !t.HasSkills(job.RequiredSkills) {
				continue
			}
			here := geo.Point{Lat: job.Lat, Lon: job.Lon}
			rep.DistanceKm += geo.DistanceKm(prev, here)
			rep.Schedule[t.ID] = append(rep.Schedule[t.ID], job.ID)
			rep.JobsAssigned++
			prev = here
			next++
		}
	}
	rep.DistanceKm = round1(rep.DistanceKm)
	return rep
}

func servable(techs []model.Technician, job model.Job) bool {
	for _, t := range techs {
		if t.RemainingCapacity() > 0 && t.HasSkills(job.RequiredSkills) {
			return true
		}
	}
	return false
}

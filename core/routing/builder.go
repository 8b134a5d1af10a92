package routing

import (
	"context"

	"github.com/kilianp07/fieldroute/core/geo"
	"github.com/kilianp07/fieldroute/core/logger"
	"github.com/kilianp07/fieldroute/core/model"
)

// MaxPriority is the upper bound applied to job priorities.
const MaxPriority = 100

// Builder translates technicians and jobs into a Problem.
type Builder struct {
	Profile  geo.Profile
	Provider geo.MatrixProvider
	Log      logger.Logger
}

// Build encodes the inputs. Technicians occupy the first point indices, jobs
// follow, and the depot, when given, is the last point and the end of every
// route. A BuildError is returned when either list is empty.
func (b Builder) Build(ctx context.Context, techs []model.Technician, jobs []model.Job, depot *geo.Point) (*Problem, error) {
	if len(techs) == 0 || len(jobs) == 0 {
		return nil, &BuildError{Technicians: len(techs), Jobs: len(jobs)}
	}
	p := &Problem{
		TechIndex:   make(map[string]int, len(techs)),
		JobIndex:    make(map[string]int, len(jobs)),
		Technicians: techs,
		Jobs:        jobs,
	}
	for i, t := range techs {
		p.TechIndex[t.ID] = i
		p.Points = append(p.Points, geo.Point{Lat: t.Lat, Lon: t.Lon})
	}
	for j, job := range jobs {
		p.JobIndex[job.ID] = len(techs) + j
		p.Points = append(p.Points, geo.Point{Lat: job.Lat, Lon: job.Lon})
	}
	end := -1
	if depot != nil {
		end = len(p.Points)
		p.Points = append(p.Points, *depot)
	}

	skills := skillIndex{}
	for i, t := range techs {
		from, to := t.WorkingHours()
		v := Vehicle{
			ID:       t.ID,
			Start:    i,
			End:      i,
			Capacity: t.RemainingCapacity(),
			Skills:   skills.ids(t.Skills),
			Window:   TimeWindow{Start: from, End: to},
		}
		if end >= 0 {
			v.End = end
		}
		p.Vehicles = append(p.Vehicles, v)
	}
	for j, job := range jobs {
		task := Task{
			ID:       job.ID,
			Point:    len(techs) + j,
			Service:  job.EstimatedDuration,
			Delivery: 1,
			Priority: clampPriority(job.Priority),
			Skills:   skills.ids(job.RequiredSkills),
		}
		if s, e, ok := job.Window(); ok {
			task.Window = &TimeWindow{Start: s, End: e}
		}
		p.Tasks = append(p.Tasks, task)
	}
	p.Skills = skills

	durations, src, err := geo.ResolveDurations(ctx, b.Provider, p.Points, b.Profile, b.Log)
	p.Durations = durations
	p.MatrixSource = src
	p.MatrixErr = err
	p.Distances = geo.BuildDistanceMatrix(p.Points)
	return p, nil
}

func clampPriority(p int) int {
	if p < 0 {
		return 0
	}
	if p > MaxPriority {
		return MaxPriority
	}
	return p
}

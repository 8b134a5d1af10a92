package routing

import (
	"context"

	"github.com/kilianp07/fieldroute/core/model"
)

// Reoptimize replans the unfinished part of an existing schedule together
// with newly arrived jobs.
//
// Each technician's CurrentLoad is set to the number of its stops listed in
// completed; the caller's technicians are not modified. Every stop that is not
// completed becomes a job again: the originating job when the stop still
// carries it, otherwise a job rebuilt from the stop with the "existing"
// service type, default priority and no skill requirement.
func (e *Engine) Reoptimize(ctx context.Context, techs []model.Technician, existing model.Schedule, newJobs []model.Job, completed []string, opts Options) (*Result, error) {
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}

	updated := make([]model.Technician, len(techs))
	for i, t := range techs {
		t.Skills = append([]string(nil), t.Skills...)
		t.CurrentLoad = 0
		for _, st := range existing[t.ID] {
			if done[st.JobID] {
				t.CurrentLoad++
			}
		}
		updated[i] = t
	}

	jobs := survivingJobs(existing, done)
	jobs = append(jobs, newJobs...)
	return e.run(ctx, KindReoptimize, updated, jobs, opts)
}

func survivingJobs(s model.Schedule, done map[string]bool) []model.Job {
	var jobs []model.Job
	for _, tech := range s.TechnicianIDs() {
		for _, st := range s[tech] {
			if done[st.JobID] {
				continue
			}
			jobs = append(jobs, jobFromStop(st))
		}
	}
	return jobs
}

func jobFromStop(st model.RouteStop) model.Job {
	if st.Job != nil {
		j := *st.Job
		j.RequiredSkills = append([]string(nil), j.RequiredSkills...)
		return j
	}
	j := model.NewJob(st.JobID, st.Lat, st.Lon, model.ServiceTypeExisting)
	j.EstimatedDuration = st.ServiceMinutes * 60
	j.Address = st.Address
	return j
}

package routing

import (
	"context"
	"errors"
	"sync"

	"github.com/kilianp07/fieldroute/core/geo"
	"github.com/kilianp07/fieldroute/core/metrics"
	"github.com/kilianp07/fieldroute/core/model"
)

// Dallas area fixtures, a few kilometers apart.
func dallasTechs() []model.Technician {
	return []model.Technician{
		model.NewTechnician("t1", "Mike", 32.7767, -96.7970, "hvac", "heating", "ac"),
		model.NewTechnician("t2", "Sarah", 32.9545, -96.8200, "hvac", "ac", "refrigeration"),
	}
}

func dallasJobs() []model.Job {
	j1 := model.NewJob("j1", 32.7792, -96.8008, "ac_repair")
	j1.RequiredSkills = []string{"hvac", "ac"}
	j1.Priority = 3
	j2 := model.NewJob("j2", 32.9463, -96.8201, "maintenance")
	j2.RequiredSkills = []string{"hvac"}
	j2.EstimatedDuration = 2700
	j3 := model.NewJob("j3", 32.8514, -96.8551, "furnace_repair")
	j3.RequiredSkills = []string{"hvac", "heating"}
	j3.Priority = 4
	j3.EstimatedDuration = 5400
	return []model.Job{j1, j2, j3}
}

type failingSolver struct{ calls int }

func (s *failingSolver) Name() string { return "failing" }

func (s *failingSolver) Solve(context.Context, *Problem) (*Solution, error) {
	s.calls++
	return nil, errors.New("solver unavailable")
}

type fixedSolver struct{ sol *Solution }

func (s fixedSolver) Name() string { return "fixed" }

func (s fixedSolver) Solve(context.Context, *Problem) (*Solution, error) { return s.sol, nil }

type failingProvider struct{}

func (failingProvider) Durations(context.Context, []geo.Point) ([][]int, error) {
	return nil, errors.New("osrm down")
}

type recordingSink struct {
	mu   sync.Mutex
	runs []metrics.RunRecord
}

func (s *recordingSink) RecordRun(rec metrics.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, rec)
	return nil
}

type recordingPublisher struct {
	runID string
	sched model.Schedule
	err   error
}

func (p *recordingPublisher) PublishSchedule(_ context.Context, runID string, s model.Schedule) error {
	p.runID = runID
	p.sched = s
	return p.err
}

func mustBuild(techs []model.Technician, jobs []model.Job, depot *geo.Point) *Problem {
	p, err := Builder{Profile: geo.ProfileUrban}.Build(context.Background(), techs, jobs, depot)
	if err != nil {
		panic(err)
	}
	return p
}

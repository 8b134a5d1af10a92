package routing

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fieldroute/core/events"
	"github.com/kilianp07/fieldroute/core/model"
	"github.com/kilianp07/fieldroute/core/routing/logging"
	"github.com/kilianp07/fieldroute/internal/eventbus"
)

func newTestEngine(t *testing.T, solver Solver) *Engine {
	t.Helper()
	e, err := NewEngine(Config{}, solver, nil, nil, nil, nil)
	require.NoError(t, err)
	return e
}

func TestEngineSolverFirst(t *testing.T) {
	res, err := newTestEngine(t, NewLPSolver()).OptimizeRoutes(context.Background(), dallasTechs(), dallasJobs(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "lp", res.Strategy)
	assert.Zero(t, res.Unassigned)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 3, res.Schedule.Len())
}

func TestEngineFallsBackToGreedy(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()

	solver := &failingSolver{}
	e, err := NewEngine(Config{}, solver, nil, nil, bus, nil)
	require.NoError(t, err)
	res, err := e.OptimizeRoutes(context.Background(), dallasTechs(), dallasJobs(), Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, solver.calls)
	assert.Equal(t, "greedy", res.Strategy)
	assert.Equal(t, 3, res.Schedule.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(solverFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(runsTotal.WithLabelValues("greedy")))

	var actions []string
	timeout := time.After(time.Second)
	for len(actions) < 3 {
		select {
		case ev := <-sub:
			if se, ok := ev.(events.StrategyEvent); ok {
				actions = append(actions, se.Action)
				if se.Action == events.ActionSolverFailure {
					assert.ErrorIs(t, se.Err, ErrSolverFailure)
				}
			}
		case <-timeout:
			t.Fatalf("missing strategy events, got %v", actions)
		}
	}
	assert.Equal(t, []string{events.ActionSolverAttempt, events.ActionSolverFailure, events.ActionGreedyFallback}, actions)
}

func TestEngineRejectsMalformedSolution(t *testing.T) {
	bad := &Solution{Routes: []VehicleRoute{{Vehicle: 1, Steps: []Step{{Task: 2, Arrival: 9 * 3600}}}}}
	res, err := newTestEngine(t, fixedSolver{sol: bad}).OptimizeRoutes(context.Background(), dallasTechs(), dallasJobs(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "greedy", res.Strategy)
}

func TestEngineDisableSolver(t *testing.T) {
	solver := &failingSolver{}
	e, err := NewEngine(Config{DisableSolver: true}, solver, nil, nil, nil, nil)
	require.NoError(t, err)
	res, err := e.OptimizeRoutes(context.Background(), dallasTechs(), dallasJobs(), Options{})
	require.NoError(t, err)
	assert.Zero(t, solver.calls)
	assert.Equal(t, "greedy", res.Strategy)
}

func TestEngineEmptyInput(t *testing.T) {
	res, err := newTestEngine(t, NewLPSolver()).OptimizeRoutes(context.Background(), nil, nil, Options{})
	require.NoError(t, err)
	assert.Zero(t, res.Schedule.Len())
	assert.Equal(t, StrategyNone, res.Strategy)
}

func TestEngineInvalidInput(t *testing.T) {
	techs := dallasTechs()
	techs[1].ID = techs[0].ID
	jobs := dallasJobs()
	jobs[0].Lat = 123

	_, err := newTestEngine(t, nil).OptimizeRoutes(context.Background(), techs, jobs, Options{})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 2)
}

func TestEngineAcceptsLateOpenEndedWindow(t *testing.T) {
	job := model.NewJob("late", 32.78, -96.80, "maintenance").WithWindow(23*3600+30*60, -1)

	res, err := newTestEngine(t, NewLPSolver()).OptimizeRoutes(context.Background(), dallasTechs(), []model.Job{job}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Schedule.Len()+res.Unassigned)
}

func TestEngineSkillMismatchLeavesJobUnassigned(t *testing.T) {
	tech := model.NewTechnician("t1", "", 32.78, -96.80, "hvac")
	tech.MaxCapacity = 2
	job := model.NewJob("j1", 32.78, -96.80, "refrigeration")
	job.RequiredSkills = []string{"hvac", "refrigeration"}

	for _, solver := range []Solver{NewLPSolver(), &failingSolver{}} {
		res, err := newTestEngine(t, solver).OptimizeRoutes(context.Background(), []model.Technician{tech}, []model.Job{job}, Options{})
		require.NoError(t, err)
		assert.Zero(t, res.Schedule.Len())
		assert.Equal(t, 1, res.Unassigned)
	}
}

func TestEngineTwoTechsThreeJobs(t *testing.T) {
	techs := []model.Technician{
		model.NewTechnician("t1", "", 32.78, -96.80, "hvac"),
		model.NewTechnician("t2", "", 32.95, -96.82, "hvac"),
	}
	var jobs []model.Job
	for i, lat := range []float64{32.80, 32.85, 32.93} {
		j := model.NewJob(string(rune('a'+i)), lat, -96.81, "maintenance")
		j.RequiredSkills = []string{"hvac"}
		jobs = append(jobs, j)
	}

	for _, solver := range []Solver{NewLPSolver(), &failingSolver{}} {
		res, err := newTestEngine(t, solver).OptimizeRoutes(context.Background(), techs, jobs, Options{})
		require.NoError(t, err)
		ids := res.Schedule.JobIDs()
		sort.Strings(ids)
		assert.Equal(t, []string{"a", "b", "c"}, ids)
		for tech, stops := range res.Schedule {
			for i := 1; i < len(stops); i++ {
				if stops[i].DepartureSeconds <= stops[i-1].DepartureSeconds || stops[i].DepartureTime <= stops[i-1].DepartureTime {
					t.Fatalf("%s: departures not increasing: %+v", tech, stops)
				}
			}
		}
	}
}

func TestEngineCapacityInvariant(t *testing.T) {
	techs := dallasTechs()
	techs[0].MaxCapacity = 3
	techs[0].CurrentLoad = 2
	techs[1].MaxCapacity = 1
	var jobs []model.Job
	for i := 0; i < 6; i++ {
		jobs = append(jobs, model.NewJob(string(rune('a'+i)), 32.8+float64(i)*0.02, -96.8, "maintenance"))
	}
	for _, solver := range []Solver{NewLPSolver(), &failingSolver{}} {
		res, err := newTestEngine(t, solver).OptimizeRoutes(context.Background(), techs, jobs, Options{})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(res.Schedule["t1"]), 1)
		assert.LessOrEqual(t, len(res.Schedule["t2"]), 1)
		assert.Equal(t, 6-res.Schedule.Len(), res.Unassigned)
	}
}

func TestEngineSkillInvariant(t *testing.T) {
	techs := dallasTechs()
	jobs := append(dallasJobs(), model.NewJob("pump", 32.85, -96.85, "heat_pump").WithDefaultSkills())
	res, err := newTestEngine(t, NewLPSolver()).OptimizeRoutes(context.Background(), techs, jobs, Options{})
	require.NoError(t, err)
	byID := map[string]model.Technician{}
	for _, tech := range techs {
		byID[tech.ID] = tech
	}
	for tech, stops := range res.Schedule {
		for _, st := range stops {
			require.NotNil(t, st.Job)
			if !byID[tech].HasSkills(st.Job.RequiredSkills) {
				t.Fatalf("%s cannot serve %s", tech, st.JobID)
			}
		}
	}
	assert.Equal(t, 1, res.Unassigned)
}

func TestEngineReportsRun(t *testing.T) {
	sink := &recordingSink{}
	pub := &recordingPublisher{err: errors.New("broker down")}
	store, err := logging.NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	require.NoError(t, err)

	e, err := NewEngine(Config{}, NewLPSolver(), nil, sink, nil, nil)
	require.NoError(t, err)
	e.SetLogStore(store)
	e.SetPublisher(pub)
	defer func() { _ = e.Close() }()

	res, err := e.OptimizeRoutes(context.Background(), dallasTechs(), dallasJobs(), Options{})
	require.NoError(t, err)

	require.Len(t, sink.runs, 1)
	rec := sink.runs[0]
	assert.Equal(t, res.RunID, rec.RunID)
	assert.Equal(t, KindOptimize, rec.Kind)
	assert.Equal(t, "lp", rec.Solver)
	assert.Len(t, rec.Stops, 3)

	assert.Equal(t, res.RunID, pub.runID)
	assert.Equal(t, 3, pub.sched.Len())

	logs, err := store.Query(context.Background(), logging.LogQuery{RunID: res.RunID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.ElementsMatch(t, []string{"t1", "t2"}, logs[0].Technicians)
}

func TestEngineServiceSkills(t *testing.T) {
	techs := []model.Technician{model.NewTechnician("t1", "", 32.78, -96.80, "hvac")}
	jobs := []model.Job{model.NewJob("pump", 32.79, -96.80, "heat_pump")}
	e, err := NewEngine(Config{ApplyServiceSkills: true}, NewLPSolver(), nil, nil, nil, nil)
	require.NoError(t, err)
	res, err := e.OptimizeRoutes(context.Background(), techs, jobs, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Unassigned)
	assert.Empty(t, jobs[0].RequiredSkills)
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	_, err := NewEngine(Config{Profile: "teleport"}, nil, nil, nil, nil, nil)
	assert.Error(t, err)
}

package routing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/fieldroute/core/events"
	"github.com/kilianp07/fieldroute/core/geo"
	"github.com/kilianp07/fieldroute/core/logger"
	"github.com/kilianp07/fieldroute/core/metrics"
	"github.com/kilianp07/fieldroute/core/model"
	"github.com/kilianp07/fieldroute/core/monitoring"
	coremqtt "github.com/kilianp07/fieldroute/core/mqtt"
	"github.com/kilianp07/fieldroute/core/routing/logging"
	"github.com/kilianp07/fieldroute/internal/eventbus"
)

// Run kinds recorded in metrics and logs.
const (
	KindOptimize   = "optimize"
	KindReoptimize = "reoptimize"
)

// StrategyNone is reported when there was nothing to plan.
const StrategyNone = "none"

// Options tunes a single run.
type Options struct {
	// Depot, when set, is where every route ends.
	Depot *geo.Point
	// Profile overrides the configured traffic profile.
	Profile geo.Profile
}

// Result is the outcome of a routing run.
type Result struct {
	RunID        string         `json:"run_id"`
	Schedule     model.Schedule `json:"schedule"`
	Strategy     string         `json:"strategy"`
	Unassigned   int            `json:"unassigned"`
	Cost         float64        `json:"cost"`
	MatrixSource geo.Source     `json:"matrix_source"`
	Savings      SavingsReport  `json:"savings"`
}

// Engine plans technician routes. It tries the configured Solver first and
// falls back to the GreedyPlanner when the solver fails. An Engine keeps no
// state between runs and is safe for concurrent use.
type Engine struct {
	cfg       Config
	solver    Solver
	provider  geo.MatrixProvider
	metrics   metrics.MetricsSink
	bus       eventbus.EventBus
	logger    logger.Logger
	store     logging.LogStore
	publisher coremqtt.SchedulePublisher
	mu        sync.RWMutex
}

// NewEngine creates an Engine. solver, provider, sink and bus may be nil: a
// nil solver plans greedily and a nil provider uses haversine estimates.
func NewEngine(cfg Config, solver Solver, provider geo.MatrixProvider, sink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("routing: %w", err)
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Engine{
		cfg:      cfg,
		solver:   solver,
		provider: provider,
		metrics:  sink,
		bus:      bus,
		logger:   log,
	}, nil
}

// SetLogStore configures the store used to persist schedules.
func (e *Engine) SetLogStore(store logging.LogStore) {
	e.mu.Lock()
	e.store = store
	e.mu.Unlock()
}

// SetPublisher configures where finished schedules are handed off.
func (e *Engine) SetPublisher(p coremqtt.SchedulePublisher) {
	e.mu.Lock()
	e.publisher = p
	e.mu.Unlock()
}

// Close releases the log store.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store != nil {
		err := e.store.Close()
		e.store = nil
		return err
	}
	return nil
}

// OptimizeRoutes assigns jobs to technicians and orders each route. Only
// invalid input is reported as an error: solver and road-duration failures
// are recovered internally, and empty input yields an empty schedule.
func (e *Engine) OptimizeRoutes(ctx context.Context, techs []model.Technician, jobs []model.Job, opts Options) (*Result, error) {
	return e.run(ctx, KindOptimize, techs, jobs, opts)
}

func (e *Engine) run(ctx context.Context, kind string, techs []model.Technician, jobs []model.Job, opts Options) (*Result, error) {
	start := time.Now()
	if err := ValidateInput(techs, jobs); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	if e.cfg.ApplyServiceSkills {
		jobs = withServiceSkills(jobs)
	}
	profile := opts.Profile
	if profile == "" {
		profile = geo.Profile(e.cfg.Profile)
	}

	b := Builder{Profile: profile, Provider: e.provider, Log: e.logger}
	p, err := b.Build(ctx, techs, jobs, opts.Depot)
	if err != nil {
		if errors.Is(err, ErrNothingToSchedule) {
			e.logger.Infof("routing run %s: %v", runID, err)
			return emptyResult(runID, techs, jobs), nil
		}
		return nil, err
	}
	if p.MatrixErr != nil {
		matrixFallbacks.Inc()
	}
	e.publish(events.MatrixEvent{RunID: runID, Source: string(p.MatrixSource), Points: len(p.Points), Err: p.MatrixErr})

	sol, strategy := e.plan(ctx, runID, p)
	sched := decode(p, sol)
	res := &Result{
		RunID:        runID,
		Schedule:     sched,
		Strategy:     strategy,
		Unassigned:   len(p.Tasks) - sol.Assigned(),
		Cost:         sol.Cost,
		MatrixSource: p.MatrixSource,
		Savings:      EstimateSavings(sched, e.cfg.NaiveFactor),
	}

	elapsed := time.Since(start)
	runsTotal.WithLabelValues(strategy).Inc()
	runDuration.Observe(elapsed.Seconds())
	unassignedJobs.Set(float64(res.Unassigned))
	e.logger.Infof("routing run %s (%s): %d assigned, %d unassigned via %s in %s",
		runID, kind, res.Savings.JobsAssigned, res.Unassigned, strategy, elapsed)
	e.report(ctx, kind, res, len(techs), len(jobs), elapsed)
	return res, nil
}

// plan runs the solver and validates its output. Any failure is recovered by
// the greedy planner.
func (e *Engine) plan(ctx context.Context, runID string, p *Problem) (*Solution, string) {
	greedy := GreedyPlanner{}
	if e.solver == nil || e.cfg.DisableSolver {
		return greedy.Plan(p), greedy.Name()
	}
	name := e.solver.Name()
	e.publish(events.StrategyEvent{RunID: runID, Solver: name, Action: events.ActionSolverAttempt})
	e.logger.Debugf("trying %s solver for run %s", name, runID)
	sol, err := e.solver.Solve(ctx, p)
	if err == nil {
		err = validateSolution(p, sol)
	}
	if err == nil {
		e.publish(events.StrategyEvent{RunID: runID, Solver: name, Action: events.ActionSolverSuccess})
		return sol, name
	}
	err = solverFailure(name, err)
	solverFailures.Inc()
	monitoring.CaptureException(err, map[string]string{"run_id": runID, "solver": name})
	e.publish(events.StrategyEvent{RunID: runID, Solver: name, Action: events.ActionSolverFailure, Err: err})
	e.logger.Warnf("run %s: %v", runID, err)
	sol = greedy.Plan(p)
	e.publish(events.StrategyEvent{RunID: runID, Solver: greedy.Name(), Action: events.ActionGreedyFallback})
	return sol, greedy.Name()
}

// report hands the result to the metrics sink, the log store, the event bus
// and the publisher. Their errors are logged only.
func (e *Engine) report(ctx context.Context, kind string, res *Result, techs, jobs int, elapsed time.Duration) {
	now := time.Now()
	solverName := ""
	if e.solver != nil && !e.cfg.DisableSolver {
		solverName = e.solver.Name()
	}
	rec := metrics.RunRecord{
		RunID:         res.RunID,
		Kind:          kind,
		Strategy:      res.Strategy,
		Solver:        solverName,
		MatrixSource:  string(res.MatrixSource),
		Technicians:   techs,
		Jobs:          jobs,
		Assigned:      res.Savings.JobsAssigned,
		Unassigned:    res.Unassigned,
		DistanceKm:    res.Savings.OptimizedKm,
		NaiveKm:       res.Savings.NaiveKm,
		SavingsPct:    res.Savings.SavingsPct,
		TravelMinutes: res.Savings.TotalTravelMinutes,
		Duration:      elapsed,
		Time:          now,
		Stops:         stopRecords(res.Schedule),
	}
	if err := e.metrics.RecordRun(rec); err != nil {
		e.logger.Errorf("metrics error: %v", err)
	}

	e.mu.RLock()
	store, pub := e.store, e.publisher
	e.mu.RUnlock()
	if store != nil {
		lr := logging.LogRecord{
			Timestamp:    now,
			RunID:        res.RunID,
			Kind:         kind,
			Strategy:     res.Strategy,
			MatrixSource: string(res.MatrixSource),
			Technicians:  res.Schedule.TechnicianIDs(),
			Jobs:         jobs,
			Unassigned:   res.Unassigned,
			DistanceKm:   res.Savings.OptimizedKm,
			SavingsPct:   res.Savings.SavingsPct,
			Schedule:     res.Schedule,
		}
		if err := store.Append(ctx, lr); err != nil {
			e.logger.Errorf("log store error: %v", err)
		}
	}
	e.publish(events.ScheduleEvent{
		RunID:      res.RunID,
		Strategy:   res.Strategy,
		Assigned:   res.Savings.JobsAssigned,
		Unassigned: res.Unassigned,
		DistanceKm: res.Savings.OptimizedKm,
		Duration:   elapsed,
		Time:       now,
	})
	if pub != nil {
		if err := pub.PublishSchedule(ctx, res.RunID, res.Schedule); err != nil {
			e.logger.Errorf("publish schedule %s: %v", res.RunID, err)
		}
	}
}

func (e *Engine) publish(ev eventbus.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

func emptyResult(runID string, techs []model.Technician, jobs []model.Job) *Result {
	sched := make(model.Schedule, len(techs))
	for _, t := range techs {
		sched[t.ID] = []model.RouteStop{}
	}
	return &Result{
		RunID:        runID,
		Schedule:     sched,
		Strategy:     StrategyNone,
		Unassigned:   len(jobs),
		MatrixSource: geo.SourceHaversine,
		Savings:      EstimateSavings(sched, DefaultNaiveFactor),
	}
}

func withServiceSkills(jobs []model.Job) []model.Job {
	out := make([]model.Job, len(jobs))
	for i, j := range jobs {
		out[i] = j.WithDefaultSkills()
	}
	return out
}

func stopRecords(s model.Schedule) []metrics.StopRecord {
	var recs []metrics.StopRecord
	for _, tech := range s.TechnicianIDs() {
		for i, st := range s[tech] {
			recs = append(recs, metrics.StopRecord{
				TechnicianID:   tech,
				JobID:          st.JobID,
				Sequence:       i,
				ArrivalSeconds: st.ArrivalSeconds,
				TravelMinutes:  st.TravelMinutes,
				ServiceMinutes: st.ServiceMinutes,
				DistanceKm:     st.DistanceKm,
			})
		}
	}
	return recs
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

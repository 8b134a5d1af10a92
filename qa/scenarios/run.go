package scenarios

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/kilianp07/fieldroute/core/model"
	"github.com/kilianp07/fieldroute/core/routing"
	"github.com/kilianp07/fieldroute/infra/logger"
	"github.com/kilianp07/fieldroute/infra/metrics"
	"github.com/kilianp07/fieldroute/internal/eventbus"
)

type failingSolver struct{}

func (failingSolver) Name() string { return "failing" }

func (failingSolver) Solve(context.Context, *routing.Problem) (*routing.Solution, error) {
	return nil, errors.New("solver unavailable")
}

func solverFor(name string) routing.Solver {
	switch name {
	case "failing":
		return failingSolver{}
	case "none":
		return nil
	default:
		return routing.NewLPSolver()
	}
}

func RunScenario(t *testing.T, sc *Scenario) *routing.Result {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	bus := eventbus.New()
	defer bus.Close()

	engine, err := routing.NewEngine(routing.Config{}, solverFor(sc.Solver), nil, sink, bus, logger.NopLogger{})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	ctx := context.Background()
	techs := sc.TechnicianList()
	res, err := engine.OptimizeRoutes(ctx, techs, sc.JobList(), routing.Options{Depot: sc.Depot})
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	kind := routing.KindOptimize
	if sc.Reoptimize != nil {
		res, err = engine.Reoptimize(ctx, techs, res.Schedule, sc.Reoptimize.NewJobList(), sc.Reoptimize.Completed, routing.Options{Depot: sc.Depot})
		if err != nil {
			t.Fatalf("reoptimize: %v", err)
		}
		kind = routing.KindReoptimize
	}

	checkExpected(t, sc, res)
	checkRoutes(t, techs, res.Schedule)

	got := counterValue(t, reg, "routing_jobs_assigned_total", map[string]string{"kind": kind, "strategy": res.Strategy})
	if int(got) != res.Schedule.Len() {
		t.Errorf("scenario %s: assigned counter %v, schedule has %d stops", sc.Name, got, res.Schedule.Len())
	}
	return res
}

func checkExpected(t *testing.T, sc *Scenario, res *routing.Result) {
	t.Helper()
	exp := sc.Expected
	if n := res.Schedule.Len(); n < exp.MinAssigned {
		t.Errorf("scenario %s expected at least %d assigned, got %d", sc.Name, exp.MinAssigned, n)
	}
	if res.Savings.SavingsPct < exp.MinSavingsPct {
		t.Errorf("scenario %s expected savings above %.1f%%, got %.1f%%", sc.Name, exp.MinSavingsPct, res.Savings.SavingsPct)
	}
	if exp.Strategy != "" && res.Strategy != exp.Strategy {
		t.Errorf("scenario %s expected strategy %s, got %s", sc.Name, exp.Strategy, res.Strategy)
	}
	served := servedBy(res.Schedule)
	for _, id := range append(append([]string{}, exp.Unassigned...), exp.Absent...) {
		if tech, ok := served[id]; ok {
			t.Errorf("scenario %s: job %s should not be scheduled, found on %s", sc.Name, id, tech)
		}
	}
	for job, tech := range exp.Assignments {
		if served[job] != tech {
			t.Errorf("scenario %s: job %s expected on %s, got %q", sc.Name, job, tech, served[job])
		}
	}
}

// checkRoutes verifies skills, capacity and chronological order.
func checkRoutes(t *testing.T, techs []model.Technician, s model.Schedule) {
	t.Helper()
	byID := make(map[string]model.Technician, len(techs))
	for _, tech := range techs {
		byID[tech.ID] = tech
	}
	for id, stops := range s {
		tech, ok := byID[id]
		if !ok {
			t.Errorf("unknown technician %s in schedule", id)
			continue
		}
		if len(stops) > tech.MaxCapacity {
			t.Errorf("technician %s has %d stops for capacity %d", id, len(stops), tech.MaxCapacity)
		}
		prev := -1
		for _, st := range stops {
			if st.Job != nil && !tech.HasSkills(st.Job.RequiredSkills) {
				t.Errorf("technician %s lacks skills for %s", id, st.JobID)
			}
			if st.ArrivalSeconds < prev {
				t.Errorf("technician %s: stop %s arrives before previous departure", id, st.JobID)
			}
			prev = st.DepartureSeconds
		}
	}
}

func servedBy(s model.Schedule) map[string]string {
	out := make(map[string]string)
	for tech, stops := range s {
		for _, st := range stops {
			out[st.JobID] = tech
		}
	}
	return out
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m.GetLabel(), labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(pairs []*dto.LabelPair, want map[string]string) bool {
	if len(pairs) != len(want) {
		return false
	}
	for _, p := range pairs {
		if want[p.GetName()] != p.GetValue() {
			return false
		}
	}
	return true
}

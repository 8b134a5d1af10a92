package routing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/fieldroute/core/factory"
	"github.com/kilianp07/fieldroute/core/monitoring"
)

// DefaultTimeBudget bounds a single LPSolver run.
const DefaultTimeBudget = 5 * time.Second

// LPSolver plans in two phases. An assignment linear program, solved with the
// simplex method, decides which technician takes which job: it rewards served
// jobs by priority and charges the travel time from the technician's home.
// Each technician's jobs are then sequenced by cheapest feasible insertion
// honoring time windows and working hours, and jobs that do not fit are
// offered to the other technicians.
type LPSolver struct {
	// TimeBudget bounds the whole run. Zero uses DefaultTimeBudget.
	TimeBudget time.Duration
	// Tolerance is passed to the simplex solver. Zero uses 1e-7.
	Tolerance float64
}

// LPConfig is the factory configuration of the "lp" solver type.
type LPConfig struct {
	TimeBudget time.Duration `json:"time_budget"`
	Tolerance  float64       `json:"tolerance"`
}

func init() {
	_ = RegisterSolver("lp", func(conf map[string]any) (Solver, error) {
		var c LPConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return &LPSolver{TimeBudget: c.TimeBudget, Tolerance: c.Tolerance}, nil
	})
}

// NewLPSolver returns an LPSolver with default settings.
func NewLPSolver() *LPSolver { return &LPSolver{} }

// Name implements Solver.
func (s *LPSolver) Name() string { return "lp" }

// lpSolve points to the function used to solve the standard form LP. It can
// be overridden in tests to simulate solver failures.
var lpSolve = func(c []float64, a *mat.Dense, b []float64, tol float64) ([]float64, error) {
	_, x, err := lp.Simplex(c, a, b, tol, nil)
	return x, err
}

// Solve implements Solver.
func (s *LPSolver) Solve(ctx context.Context, p *Problem) (*Solution, error) {
	budget := s.TimeBudget
	if budget <= 0 {
		budget = DefaultTimeBudget
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	type result struct {
		sol *Solution
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				monitoring.CapturePanic(r, map[string]string{"solver": s.Name()})
				done <- result{err: fmt.Errorf("lp solver panic: %v", r)}
			}
		}()
		sol, err := s.solve(ctx, p)
		done <- result{sol, err}
	}()
	select {
	case r := <-done:
		return r.sol, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("lp solver: %w", ctx.Err())
	}
}

func (s *LPSolver) solve(ctx context.Context, p *Problem) (*Solution, error) {
	assigned, err := s.assign(p)
	if err != nil {
		return nil, err
	}
	routes := make([][]int, len(p.Vehicles))
	var released []int
	for v, tasks := range assigned {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sortByPriority(p, tasks)
		for _, t := range tasks {
			pos, _, ok := bestInsertion(p, v, routes[v], t)
			if !ok {
				released = append(released, t)
				continue
			}
			routes[v] = insertAt(routes[v], pos, t)
		}
	}

	sortByPriority(p, released)
	unassigned := 0
	for _, t := range released {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bestV, bestPos, bestCost := -1, 0, 0
		for v := range p.Vehicles {
			if len(routes[v]) >= p.Vehicles[v].Capacity || !p.CanServe(v, t) {
				continue
			}
			pos, cost, ok := bestInsertion(p, v, routes[v], t)
			if ok && (bestV < 0 || cost < bestCost) {
				bestV, bestPos, bestCost = v, pos, cost
			}
		}
		if bestV < 0 {
			unassigned++
			continue
		}
		routes[bestV] = insertAt(routes[bestV], bestPos, t)
	}

	for t := range p.Tasks {
		if !contains(assigned, t) {
			unassigned++
		}
	}
	return buildSolution(p, routes, unassigned), nil
}

// assign solves the assignment LP and returns, per vehicle, the task indices
// it received. Tasks without any eligible vehicle are simply absent.
//
// Standard form: one column per eligible (task, vehicle) pair, one slack
// column per task and per vehicle.
//
//	sum_v x[t,v] + s[t] = 1          for each task
//	sum_t x[t,v] + u[v] = capacity   for each vehicle
//
// The constraint matrix is totally unimodular, so the optimal vertex is
// integral.
func (s *LPSolver) assign(p *Problem) ([][]int, error) {
	type pair struct{ t, v int }
	var pairs []pair
	maxTravel := 1
	for t := range p.Tasks {
		for v := range p.Vehicles {
			if !eligible(p, v, t) {
				continue
			}
			pairs = append(pairs, pair{t, v})
			if d := p.Travel(p.Vehicles[v].Start, p.Tasks[t].Point); d > maxTravel {
				maxTravel = d
			}
		}
	}
	out := make([][]int, len(p.Vehicles))
	if len(pairs) == 0 {
		return out, nil
	}

	nT, nV, nP := len(p.Tasks), len(p.Vehicles), len(pairs)
	cols := nP + nT + nV
	a := mat.NewDense(nT+nV, cols, nil)
	b := make([]float64, nT+nV)
	c := make([]float64, cols)
	// A priority step outweighs any travel difference.
	reward := float64(2 * maxTravel)
	for k, pr := range pairs {
		a.Set(pr.t, k, 1)
		a.Set(nT+pr.v, k, 1)
		travel := float64(p.Travel(p.Vehicles[pr.v].Start, p.Tasks[pr.t].Point))
		c[k] = travel - reward*float64(1+p.Tasks[pr.t].Priority)
	}
	for t := 0; t < nT; t++ {
		a.Set(t, nP+t, 1)
		b[t] = 1
	}
	for v := 0; v < nV; v++ {
		a.Set(nT+v, nP+nT+v, 1)
		b[nT+v] = float64(p.Vehicles[v].Capacity)
	}

	tol := s.Tolerance
	if tol <= 0 {
		tol = 1e-7
	}
	x, err := lpSolve(c, a, b, tol)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInfeasible, err)
	}
	if len(x) != cols {
		return nil, fmt.Errorf("%w: %d values for %d columns", ErrInfeasible, len(x), cols)
	}
	for k, pr := range pairs {
		if x[k] > 0.5 {
			out[pr.v] = append(out[pr.v], pr.t)
		}
	}
	return out, nil
}

// eligible filters pairs that can never be feasible: missing skills, no
// capacity, or a window that closes before the technician can get there.
func eligible(p *Problem, v, t int) bool {
	veh := p.Vehicles[v]
	if veh.Capacity <= 0 || !p.CanServe(v, t) {
		return false
	}
	arrive := veh.Window.Start + p.Travel(veh.Start, p.Tasks[t].Point)
	if w := p.Tasks[t].Window; w != nil {
		if arrive > w.End {
			return false
		}
		if arrive < w.Start {
			arrive = w.Start
		}
	}
	back := arrive + p.Tasks[t].Service + p.Travel(p.Tasks[t].Point, veh.End)
	return back <= veh.Window.End
}

// timeline simulates a vehicle driving route and returns the service start
// of every task and the total travel time. ok is false when a window or the
// working hours are violated.
func timeline(p *Problem, v int, route []int) (arrivals []int, travel int, ok bool) {
	veh := p.Vehicles[v]
	clock := veh.Window.Start
	prev := veh.Start
	arrivals = make([]int, len(route))
	for i, t := range route {
		task := p.Tasks[t]
		d := p.Travel(prev, task.Point)
		travel += d
		clock += d
		if w := task.Window; w != nil {
			if clock > w.End {
				return nil, 0, false
			}
			if clock < w.Start {
				clock = w.Start
			}
		}
		arrivals[i] = clock
		clock += task.Service
		prev = task.Point
	}
	back := p.Travel(prev, veh.End)
	travel += back
	if clock+back > veh.Window.End {
		return nil, 0, false
	}
	return arrivals, travel, true
}

// bestInsertion returns the position in route where inserting t adds the
// least travel while keeping the route feasible.
func bestInsertion(p *Problem, v int, route []int, t int) (pos, cost int, ok bool) {
	_, base, baseOK := timeline(p, v, route)
	if !baseOK {
		base = 0
	}
	for i := 0; i <= len(route); i++ {
		cand := insertAt(append([]int(nil), route...), i, t)
		_, travel, feasible := timeline(p, v, cand)
		if !feasible {
			continue
		}
		if delta := travel - base; !ok || delta < cost {
			pos, cost, ok = i, delta, true
		}
	}
	return pos, cost, ok
}

func insertAt(route []int, i, t int) []int {
	route = append(route, 0)
	copy(route[i+1:], route[i:])
	route[i] = t
	return route
}

func sortByPriority(p *Problem, tasks []int) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return p.Tasks[tasks[i]].Priority > p.Tasks[tasks[j]].Priority
	})
}

func contains(assigned [][]int, t int) bool {
	for _, tasks := range assigned {
		for _, x := range tasks {
			if x == t {
				return true
			}
		}
	}
	return false
}

// buildSolution turns per-vehicle task orders into a Solution. Cost is the
// total travel time plus, per unserved task, a penalty growing with priority.
func buildSolution(p *Problem, routes [][]int, unassigned int) *Solution {
	sol := &Solution{Unassigned: unassigned}
	for v, route := range routes {
		if len(route) == 0 {
			continue
		}
		arrivals, travel, _ := timeline(p, v, route)
		vr := VehicleRoute{Vehicle: v}
		for i, t := range route {
			vr.Steps = append(vr.Steps, Step{Task: t, Arrival: arrivals[i], Service: p.Tasks[t].Service})
		}
		sol.Routes = append(sol.Routes, vr)
		sol.Cost += float64(travel)
	}
	served := make(map[int]bool)
	for _, r := range routes {
		for _, t := range r {
			served[t] = true
		}
	}
	for t, task := range p.Tasks {
		if !served[t] {
			sol.Cost += float64(unassignedPenalty * (1 + task.Priority))
		}
	}
	return sol
}

// unassignedPenalty is the cost, in seconds, of leaving a priority 0 job
// unserved.
const unassignedPenalty = 3600

package routing

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/fieldroute/core/factory"
)

// Step is one served task in a vehicle route. Arrival is the time service
// starts, in seconds from midnight.
type Step struct {
	Task    int
	Arrival int
	Service int
}

// Departure is the time the technician leaves the task.
func (s Step) Departure() int { return s.Arrival + s.Service }

// VehicleRoute is the ordered list of steps of one vehicle.
type VehicleRoute struct {
	Vehicle int
	Steps   []Step
}

// Solution is the output of a Solver or of the greedy planner.
type Solution struct {
	Routes     []VehicleRoute
	Unassigned int
	Cost       float64
}

// Assigned returns the number of served tasks.
func (s *Solution) Assigned() int {
	n := 0
	for _, r := range s.Routes {
		n += len(r.Steps)
	}
	return n
}

// Solver plans a Problem. Implementations bound their own running time and
// report any failure as an error; partial plans are never used.
type Solver interface {
	Name() string
	Solve(ctx context.Context, p *Problem) (*Solution, error)
}

var solverRegistry = factory.NewRegistry[Solver]()

// RegisterSolver makes a solver type available to NewSolver.
func RegisterSolver(name string, f factory.Factory[Solver]) error {
	return solverRegistry.Register(name, f)
}

// NewSolver builds the solver described by cfg.
func NewSolver(cfg factory.ModuleConfig) (Solver, error) {
	return solverRegistry.Create(cfg)
}

// SolverTypes lists the registered solver types.
func SolverTypes() []string { return solverRegistry.Names() }

var errEmptySolution = errors.New("empty solution")

// validateSolution rejects plans that break an invariant the engine relies on:
// known indices, each task served once, capacity, skills, time windows and
// chronological steps.
//
//gocyclo:ignore
func validateSolution(p *Problem, sol *Solution) error {
	if sol == nil {
		return errEmptySolution
	}
	if sol.Assigned() == 0 && len(p.Tasks) > 0 {
		return errEmptySolution
	}
	seenTask := make(map[int]bool, len(p.Tasks))
	seenVehicle := make(map[int]bool, len(p.Vehicles))
	for _, r := range sol.Routes {
		if r.Vehicle < 0 || r.Vehicle >= len(p.Vehicles) {
			return fmt.Errorf("unknown vehicle index %d", r.Vehicle)
		}
		if seenVehicle[r.Vehicle] {
			return fmt.Errorf("vehicle %d has two routes", r.Vehicle)
		}
		seenVehicle[r.Vehicle] = true
		v := p.Vehicles[r.Vehicle]
		if len(r.Steps) > v.Capacity {
			return fmt.Errorf("vehicle %s over capacity: %d > %d", v.ID, len(r.Steps), v.Capacity)
		}
		prevDeparture := v.Window.Start
		for i, st := range r.Steps {
			if st.Task < 0 || st.Task >= len(p.Tasks) {
				return fmt.Errorf("unknown task index %d", st.Task)
			}
			if seenTask[st.Task] {
				return fmt.Errorf("task %s served twice", p.Tasks[st.Task].ID)
			}
			seenTask[st.Task] = true
			if !p.CanServe(r.Vehicle, st.Task) {
				return fmt.Errorf("vehicle %s lacks skills for task %s", v.ID, p.Tasks[st.Task].ID)
			}
			if w := p.Tasks[st.Task].Window; w != nil && !w.Contains(st.Arrival) {
				return fmt.Errorf("task %s served at %d outside [%d, %d]", p.Tasks[st.Task].ID, st.Arrival, w.Start, w.End)
			}
			if st.Service < 0 || st.Arrival < prevDeparture {
				return fmt.Errorf("vehicle %s step %d not chronological", v.ID, i)
			}
			prevDeparture = st.Departure()
		}
	}
	return nil
}

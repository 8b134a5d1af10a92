package routing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrNothingToSchedule is matched by BuildError.
var ErrNothingToSchedule = errors.New("nothing to schedule")

// ErrSolverFailure wraps every error, timeout or malformed plan returned by a
// Solver. The engine recovers from it with the greedy planner.
var ErrSolverFailure = errors.New("solver failure")

// ErrInfeasible indicates the assignment LP had no optimal vertex.
var ErrInfeasible = errors.New("lp infeasible")

// BuildError is returned by the Builder when there are no technicians or no
// jobs to plan.
type BuildError struct {
	Technicians int
	Jobs        int
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("routing: cannot build problem with %d technicians and %d jobs", e.Technicians, e.Jobs)
}

func (e *BuildError) Unwrap() error { return ErrNothingToSchedule }

// ValidationError reports invalid technician or job records.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "routing: invalid input: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *ValidationError) addValidator(kind string, idx int, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		e.add("%s[%d]: %v", kind, idx, err)
		return
	}
	for _, fe := range verrs {
		e.add("%s[%d].%s failed %s", kind, idx, fe.Field(), fe.Tag())
	}
}

func solverFailure(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSolverFailure, name, err)
}

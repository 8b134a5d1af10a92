package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/fieldroute/core/model"
	"github.com/kilianp07/fieldroute/internal/input"
)

// ReoptimizeStep replans the first result after some jobs are done.
type ReoptimizeStep struct {
	Completed []string    `yaml:"completed"`
	NewJobs   []input.Job `yaml:"new_jobs"`
}

// NewJobList applies the input defaults to the new jobs.
func (r ReoptimizeStep) NewJobList() []model.Job {
	f := input.File{Jobs: r.NewJobs}
	return f.JobList()
}

type Expected struct {
	MinAssigned   int     `yaml:"min_assigned"`
	MinSavingsPct float64 `yaml:"min_savings_pct"`
	Strategy      string  `yaml:"strategy"`
	// Unassigned jobs must not appear in the schedule.
	Unassigned []string `yaml:"unassigned,omitempty"`
	// Absent jobs must not appear either; used for completed work.
	Absent []string `yaml:"absent,omitempty"`
	// Assignments maps job ids to the technician expected to serve them.
	Assignments map[string]string `yaml:"assignments,omitempty"`
}

type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Solver is "lp" (default), "failing" or "none".
	Solver     string          `yaml:"solver"`
	input.File `yaml:",inline"`
	Reoptimize *ReoptimizeStep `yaml:"reoptimize,omitempty"`
	Expected   Expected        `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

package routing

import (
	"github.com/go-playground/validator/v10"

	"github.com/kilianp07/fieldroute/core/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateInput checks field ranges with the struct tags of the model and
// rejects duplicated ids. It returns nil or a *ValidationError.
func ValidateInput(techs []model.Technician, jobs []model.Job) error {
	verr := &ValidationError{}
	seen := make(map[string]bool, len(techs))
	for i, t := range techs {
		if err := validate.Struct(t); err != nil {
			verr.addValidator("technicians", i, err)
		}
		if t.ID != "" && seen[t.ID] {
			verr.add("technicians[%d]: duplicate id %q", i, t.ID)
		}
		seen[t.ID] = true
		if t.AvailableTo > 0 && t.AvailableTo < t.AvailableFrom {
			verr.add("technicians[%d]: available_to before available_from", i)
		}
	}
	seen = make(map[string]bool, len(jobs))
	for i, j := range jobs {
		if err := validate.Struct(j); err != nil {
			verr.addValidator("jobs", i, err)
		}
		if j.ID != "" && seen[j.ID] {
			verr.add("jobs[%d]: duplicate id %q", i, j.ID)
		}
		seen[j.ID] = true
		if s, e, ok := j.Window(); ok && e < s {
			verr.add("jobs[%d]: time window ends before it starts", i)
		}
	}
	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

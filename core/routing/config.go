package routing

import (
	"fmt"

	"github.com/kilianp07/fieldroute/core/factory"
	"github.com/kilianp07/fieldroute/core/geo"
)

// Config controls how the Engine plans.
type Config struct {
	// Profile selects the speed used when road durations are unavailable.
	Profile string `json:"profile"`
	// NaiveFactor scales the optimized distance into the naive baseline.
	NaiveFactor float64 `json:"naive_factor"`
	// DisableSolver skips the constraint solver and plans greedily.
	DisableSolver bool `json:"disable_solver"`
	// Solver selects the registered solver type and its options.
	Solver factory.ModuleConfig `json:"solver"`
	// ApplyServiceSkills fills missing job skills from the service type.
	ApplyServiceSkills bool `json:"apply_service_skills"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Profile == "" {
		c.Profile = string(geo.ProfileUrban)
	}
	if c.NaiveFactor <= 0 {
		c.NaiveFactor = DefaultNaiveFactor
	}
	if c.Solver.Type == "" {
		c.Solver.Type = "lp"
	}
}

// Validate checks the profile and naive factor.
func (c Config) Validate() error {
	if !geo.Profile(c.Profile).Known() {
		return fmt.Errorf("unknown traffic profile %q", c.Profile)
	}
	if c.NaiveFactor < 1 {
		return fmt.Errorf("naive_factor must be >= 1, got %v", c.NaiveFactor)
	}
	return nil
}

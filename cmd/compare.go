package cmd

import (
	"context"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fieldroute/app"
	"github.com/kilianp07/fieldroute/core/routing"
	"github.com/kilianp07/fieldroute/internal/input"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a naive in-order assignment with the optimized plan",
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().StringVarP(&inputPath, "input", "i", "", "technicians and jobs (yaml or json)")
	_ = compareCmd.MarkFlagRequired("input")
	addFormatFlag(compareCmd)
	rootCmd.AddCommand(compareCmd)
}

// Comparison reports the naive baseline next to the optimized plan.
type Comparison struct {
	Baseline       routing.BaselineReport `json:"baseline" yaml:"baseline"`
	Optimized      routing.SavingsReport  `json:"optimized" yaml:"optimized"`
	Strategy       string                 `json:"strategy" yaml:"strategy"`
	Unassigned     int                    `json:"unassigned" yaml:"unassigned"`
	ImprovementPct float64                `json:"improvement_pct" yaml:"improvement_pct"`
}

func runCompare(cmd *cobra.Command, args []string) error {
	in, err := input.Load(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	techs, jobs := in.TechnicianList(), in.JobList()
	return withService(cmd, func(ctx context.Context, svc *app.Service) error {
		res, err := svc.Engine.OptimizeRoutes(ctx, techs, jobs, optionsFor(in))
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), compare(routing.NaiveBaseline(techs, jobs), res))
	})
}

func compare(base routing.BaselineReport, res *routing.Result) Comparison {
	c := Comparison{
		Baseline:   base,
		Optimized:  res.Savings,
		Strategy:   res.Strategy,
		Unassigned: res.Unassigned,
	}
	if base.DistanceKm > 0 {
		pct := (base.DistanceKm - res.Savings.OptimizedKm) / base.DistanceKm * 100
		c.ImprovementPct = math.Round(pct*10) / 10
	}
	return c
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fieldroute/app"
	"github.com/kilianp07/fieldroute/core/geo"
	"github.com/kilianp07/fieldroute/core/routing"
	"github.com/kilianp07/fieldroute/internal/input"
)

var inputPath string

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Plan routes for the technicians and jobs of an input file",
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&inputPath, "input", "i", "", "technicians and jobs (yaml or json)")
	_ = optimizeCmd.MarkFlagRequired("input")
	addFormatFlag(optimizeCmd)
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	in, err := input.Load(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return withService(cmd, func(ctx context.Context, svc *app.Service) error {
		res, err := svc.Engine.OptimizeRoutes(ctx, in.TechnicianList(), in.JobList(), optionsFor(in))
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), res)
	})
}

func optionsFor(in *input.File) routing.Options {
	return routing.Options{Depot: in.Depot, Profile: geo.Profile(in.Profile)}
}

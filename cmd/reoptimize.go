package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fieldroute/app"
	"github.com/kilianp07/fieldroute/core/model"
	"github.com/kilianp07/fieldroute/internal/input"
)

var (
	schedulePath string
	completedIDs []string
)

var reoptimizeCmd = &cobra.Command{
	Use:   "reoptimize",
	Short: "Replan an existing schedule after jobs complete or new jobs arrive",
	Long: `Reads the technicians and new jobs from --input and the current schedule
from --schedule (the output of optimize or a bare schedule map). Jobs listed
in --completed are dropped and count towards each technician's load.`,
	RunE: runReoptimize,
}

func init() {
	reoptimizeCmd.Flags().StringVarP(&inputPath, "input", "i", "", "technicians and new jobs (yaml or json)")
	reoptimizeCmd.Flags().StringVarP(&schedulePath, "schedule", "s", "", "current schedule (yaml or json)")
	reoptimizeCmd.Flags().StringSliceVar(&completedIDs, "completed", nil, "ids of completed jobs")
	_ = reoptimizeCmd.MarkFlagRequired("input")
	_ = reoptimizeCmd.MarkFlagRequired("schedule")
	addFormatFlag(reoptimizeCmd)
	rootCmd.AddCommand(reoptimizeCmd)
}

func runReoptimize(cmd *cobra.Command, args []string) error {
	in, err := input.Load(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	existing, err := loadSchedule(schedulePath)
	if err != nil {
		return fmt.Errorf("read schedule: %w", err)
	}
	return withService(cmd, func(ctx context.Context, svc *app.Service) error {
		res, err := svc.Engine.Reoptimize(ctx, in.TechnicianList(), existing, in.JobList(), completedIDs, optionsFor(in))
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), res)
	})
}

// loadSchedule accepts either a full optimize result or a bare schedule.
func loadSchedule(path string) (model.Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ext := filepath.Ext(path)
	var wrapped struct {
		Schedule model.Schedule `json:"schedule" yaml:"schedule"`
	}
	if err := input.Unmarshal(ext, data, &wrapped); err == nil && wrapped.Schedule != nil {
		return wrapped.Schedule, nil
	}
	var s model.Schedule
	if err := input.Unmarshal(ext, data, &s); err != nil {
		return nil, err
	}
	return s, nil
}

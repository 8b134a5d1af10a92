package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fieldroute/app"
	"github.com/kilianp07/fieldroute/core/routing/logging"
)

var (
	historyQuery logging.LogQuery
	historySince time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past planning runs from the schedule log",
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyQuery.RunID, "run", "", "run id")
	f.StringVar(&historyQuery.TechnicianID, "technician", "", "technician id")
	f.StringVar(&historyQuery.JobID, "job", "", "job id")
	f.StringVar(&historyQuery.Strategy, "strategy", "", "planning strategy (lp, vroom, greedy)")
	f.DurationVar(&historySince, "since", 0, "only runs newer than this duration")
	addFormatFlag(historyCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Logging.Enabled() {
		return fmt.Errorf("schedule log is disabled")
	}
	store, err := app.OpenLogStore(cfg.Logging)
	if err != nil {
		return fmt.Errorf("open log store: %w", err)
	}
	defer func() { _ = store.Close() }()

	q := historyQuery
	if historySince > 0 {
		q.Start = time.Now().Add(-historySince)
	}
	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), recs)
}

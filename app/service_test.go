package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fieldroute/config"
	"github.com/kilianp07/fieldroute/core/factory"
	"github.com/kilianp07/fieldroute/core/model"
	"github.com/kilianp07/fieldroute/core/routing"
	"github.com/kilianp07/fieldroute/core/routing/logging"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Logging.Path = filepath.Join(t.TempDir(), "schedules.jsonl")
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	return cfg
}

func TestServiceOptimizeAndHistory(t *testing.T) {
	svc, err := New(testConfig(t))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	techs := []model.Technician{model.NewTechnician("t1", "Mike", 32.7767, -96.7970, "hvac")}
	jobs := []model.Job{model.NewJob("j1", 32.7792, -96.8008, "maintenance")}
	res, err := svc.Engine.OptimizeRoutes(ctx, techs, jobs, routing.Options{})
	require.NoError(t, err)
	assert.Equal(t, "lp", res.Strategy)

	recs, err := svc.Store.Query(ctx, logging.LogQuery{RunID: res.RunID})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"j1"}, recs[0].Schedule.JobIDs())
}

func TestServiceDisabledSolverAndLogging(t *testing.T) {
	cfg := testConfig(t)
	cfg.Routing.DisableSolver = true
	cfg.Logging.Backend = "none"

	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()
	assert.Nil(t, svc.Store)

	techs := []model.Technician{model.NewTechnician("t1", "Mike", 32.7767, -96.7970)}
	jobs := []model.Job{model.NewJob("j1", 32.7792, -96.8008, "maintenance")}
	res, err := svc.Engine.OptimizeRoutes(context.Background(), techs, jobs, routing.Options{})
	require.NoError(t, err)
	assert.Equal(t, "greedy", res.Strategy)
}

func TestServiceRejectsUnknownModules(t *testing.T) {
	cfg := testConfig(t)
	cfg.Routing.Solver = factory.ModuleConfig{Type: "quantum"}
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "statsd"}}
	_, err = New(cfg)
	assert.Error(t, err)
}

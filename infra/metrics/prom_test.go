package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fieldroute/core/events"
	"github.com/kilianp07/fieldroute/core/factory"
	coremetrics "github.com/kilianp07/fieldroute/core/metrics"
	"github.com/kilianp07/fieldroute/internal/eventbus"
)

func TestPromSinkRecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	rec := coremetrics.RunRecord{
		Kind:       "optimize",
		Strategy:   "greedy",
		Assigned:   3,
		Unassigned: 1,
		SavingsPct: 28.6,
		Stops: []coremetrics.StopRecord{
			{TechnicianID: "t1", DistanceKm: 1.5},
			{TechnicianID: "t1", DistanceKm: 2.5},
			{TechnicianID: "t2", DistanceKm: 3},
		},
	}
	require.NoError(t, sink.RecordRun(rec))
	assert.Equal(t, 3.0, testutil.ToFloat64(sink.assigned.WithLabelValues("optimize", "greedy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.unassigned.WithLabelValues("optimize", "greedy")))
	assert.Equal(t, 4.0, testutil.ToFloat64(sink.distance.WithLabelValues("t1")))
	assert.Equal(t, 28.6, testutil.ToFloat64(sink.savings.WithLabelValues("optimize")))
}

func TestPromSinkReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, first.RecordFallback(coremetrics.FallbackEvent{Solver: "lp"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(second.fallbacks.WithLabelValues("lp")))
}

func TestEventCollectorRecordsFallbacks(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	bus := eventbus.New()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartEventCollector(ctx, bus, sink)
	bus.Publish(events.StrategyEvent{Solver: "lp", Action: events.ActionSolverAttempt})
	bus.Publish(events.StrategyEvent{Solver: "lp", Action: events.ActionSolverFailure, Err: errors.New("boom")})

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(sink.fallbacks.WithLabelValues("lp")) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestBuiltinSinks(t *testing.T) {
	sink, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopSink{}, sink)

	_, err = coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "statsd"}})
	assert.Error(t, err)
}

package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fieldroute/core/geo"
	"github.com/kilianp07/fieldroute/core/model"
)

func TestBuildIndexLayout(t *testing.T) {
	depot := &geo.Point{Lat: 32.8, Lon: -96.8}
	p := mustBuild(dallasTechs(), dallasJobs(), depot)

	require.Len(t, p.Points, 6)
	require.Len(t, p.Vehicles, 2)
	require.Len(t, p.Tasks, 3)
	for i, v := range p.Vehicles {
		assert.Equal(t, i, v.Start)
		assert.Equal(t, 5, v.End)
		assert.Equal(t, model.DefaultMaxCapacity, v.Capacity)
		assert.Equal(t, TimeWindow{Start: 8 * 3600, End: 18 * 3600}, v.Window)
	}
	for j, task := range p.Tasks {
		assert.Equal(t, 2+j, task.Point)
		assert.Equal(t, 1, task.Delivery)
	}
	assert.Equal(t, 1, p.TechIndex["t2"])
	assert.Equal(t, 4, p.JobIndex["j3"])
	assert.Equal(t, *depot, p.Points[5])
	assert.Equal(t, geo.SourceHaversine, p.MatrixSource)
	assert.True(t, geo.IsSquare(p.Durations, 6))
}

func TestBuildWithoutDepotReturnsHome(t *testing.T) {
	p := mustBuild(dallasTechs(), dallasJobs(), nil)
	for i, v := range p.Vehicles {
		if v.Start != i || v.End != i {
			t.Fatalf("vehicle %d: start %d end %d", i, v.Start, v.End)
		}
	}
}

func TestBuildEmptyInput(t *testing.T) {
	_, err := Builder{}.Build(context.Background(), nil, nil, nil)
	var be *BuildError
	require.True(t, errors.As(err, &be))
	assert.True(t, errors.Is(err, ErrNothingToSchedule))

	_, err = Builder{}.Build(context.Background(), dallasTechs(), nil, nil)
	assert.ErrorIs(t, err, ErrNothingToSchedule)
}

func TestBuildSkillsShareIds(t *testing.T) {
	p := mustBuild(dallasTechs(), dallasJobs(), nil)
	hvac := p.Skills["hvac"]
	require.NotZero(t, hvac)
	assert.Contains(t, p.Vehicles[0].Skills, hvac)
	assert.Contains(t, p.Tasks[1].Skills, hvac)
	assert.True(t, p.CanServe(0, 2), "t1 has heating")
	assert.False(t, p.CanServe(1, 2), "t2 lacks heating")
}

func TestBuildClampsPriorityAndWindows(t *testing.T) {
	techs := []model.Technician{model.NewTechnician("t", "", 32.8, -96.8)}
	techs[0].CurrentLoad = 5
	high := model.NewJob("high", 32.81, -96.8, "maintenance").WithWindow(9*3600, -1)
	high.Priority = 500
	low := model.NewJob("low", 32.82, -96.8, "maintenance").WithWindow(9*3600, 10*3600)
	low.Priority = -3

	p := mustBuild(techs, []model.Job{high, low}, nil)
	assert.Equal(t, MaxPriority, p.Tasks[0].Priority)
	assert.Equal(t, 0, p.Tasks[1].Priority)
	assert.Equal(t, &TimeWindow{Start: 9 * 3600, End: model.DefaultWindowEnd}, p.Tasks[0].Window)
	assert.Equal(t, &TimeWindow{Start: 9 * 3600, End: 10 * 3600}, p.Tasks[1].Window)
	assert.Equal(t, 3, p.Vehicles[0].Capacity)
}

func TestBuildRecordsProviderFailure(t *testing.T) {
	p, err := Builder{Profile: geo.ProfileUrban, Provider: failingProvider{}}.Build(context.Background(), dallasTechs(), dallasJobs(), nil)
	require.NoError(t, err)
	assert.Equal(t, geo.SourceHaversine, p.MatrixSource)
	assert.Error(t, p.MatrixErr)
}

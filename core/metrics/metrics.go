package metrics

import "time"

// StopRecord is one stop of a recorded run.
type StopRecord struct {
	TechnicianID   string
	JobID          string
	Sequence       int
	ArrivalSeconds int
	TravelMinutes  int
	ServiceMinutes int
	DistanceKm     float64
}

// RunRecord summarises one optimization or re-optimization run.
type RunRecord struct {
	RunID         string
	Kind          string
	Strategy      string
	Solver        string
	MatrixSource  string
	Technicians   int
	Jobs          int
	Assigned      int
	Unassigned    int
	DistanceKm    float64
	NaiveKm       float64
	SavingsPct    float64
	TravelMinutes int
	Duration      time.Duration
	Time          time.Time
	Stops         []StopRecord
}

// MetricsSink records routing runs for observability purposes.
type MetricsSink interface {
	RecordRun(rec RunRecord) error
}

// FallbackEvent records a solver failure recovered by the greedy planner.
type FallbackEvent struct {
	RunID  string
	Solver string
	Reason string
	Time   time.Time
}

// FallbackRecorder is implemented by sinks that track solver fallbacks.
type FallbackRecorder interface {
	RecordFallback(ev FallbackEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunRecord) error          { return nil }
func (NopSink) RecordFallback(FallbackEvent) error { return nil }

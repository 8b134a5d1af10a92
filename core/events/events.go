package events

import "time"

// Strategy actions published by the routing engine.
const (
	ActionSolverAttempt  = "solver_attempt"
	ActionSolverSuccess  = "solver_success"
	ActionSolverFailure  = "solver_failure"
	ActionGreedyFallback = "greedy_fallback"
)

// StrategyEvent is emitted when the engine selects or abandons a planner.
type StrategyEvent struct {
	RunID  string
	Solver string
	Action string
	Err    error
}

// MatrixEvent reports the origin of the duration matrix of a run.
type MatrixEvent struct {
	RunID  string
	Source string
	Points int
	Err    error
}

// ScheduleEvent is emitted once a schedule has been produced.
type ScheduleEvent struct {
	RunID      string
	Strategy   string
	Assigned   int
	Unassigned int
	DistanceKm float64
	Duration   time.Duration
	Time       time.Time
}

// Package routing assigns jobs to technicians and orders each technician's
// stops.
//
// A run goes through the same pipeline every time: the Builder turns
// technicians and jobs into an index based Problem, the configured Solver
// plans it and, when the solver fails for any reason, the deterministic
// GreedyPlanner takes over. The resulting plan is decoded into a
// model.Schedule and summarised by EstimateSavings. Reoptimize rebuilds the
// job list from an existing schedule and runs the pipeline again.
package routing

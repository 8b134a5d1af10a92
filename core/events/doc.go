// Package events defines the routing events emitted on the event bus.
//
// Available event types:
//   - StrategyEvent: solver attempt, failure and greedy fallback
//   - MatrixEvent: which source produced the duration matrix
//   - ScheduleEvent: a finished optimization run
package events

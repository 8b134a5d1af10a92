package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/fieldroute/core/events"
	coremetrics "github.com/kilianp07/fieldroute/core/metrics"
	"github.com/kilianp07/fieldroute/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards solver
// failures to sinks implementing FallbackRecorder. It stops when the context
// is canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	r, ok := sink.(coremetrics.FallbackRecorder)
	if !ok {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				e, isStrategy := ev.(events.StrategyEvent)
				if !isStrategy || e.Action != events.ActionSolverFailure {
					continue
				}
				reason := ""
				if e.Err != nil {
					reason = e.Err.Error()
				}
				_ = r.RecordFallback(coremetrics.FallbackEvent{
					RunID:  e.RunID,
					Solver: e.Solver,
					Reason: reason,
					Time:   time.Now(),
				})
			}
		}
	}()
}

package mqtt

import (
	"context"

	"github.com/kilianp07/fieldroute/core/model"
)

// SchedulePublisher hands a finished schedule to the downstream notification
// layer, one message per technician.
type SchedulePublisher interface {
	PublishSchedule(ctx context.Context, runID string, s model.Schedule) error
}

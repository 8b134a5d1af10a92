package logging

import (
	"context"
	"time"

	"github.com/kilianp07/fieldroute/core/model"
)

// LogRecord captures one routing run and the schedule it produced.
type LogRecord struct {
	Timestamp    time.Time      `json:"timestamp"`
	RunID        string         `json:"run_id"`
	Kind         string         `json:"kind"`
	Strategy     string         `json:"strategy"`
	MatrixSource string         `json:"matrix_source"`
	Technicians  []string       `json:"technicians"`
	Jobs         int            `json:"jobs"`
	Unassigned   int            `json:"unassigned"`
	DistanceKm   float64        `json:"distance_km"`
	SavingsPct   float64        `json:"savings_pct"`
	Schedule     model.Schedule `json:"schedule"`
}

// LogQuery defines filters for retrieving records. Zero values match all.
type LogQuery struct {
	Start        time.Time
	End          time.Time
	RunID        string
	TechnicianID string
	JobID        string
	Strategy     string
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}

// Match reports whether rec satisfies every filter of q.
func (q LogQuery) Match(rec LogRecord) bool {
	if !q.Start.IsZero() && rec.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && rec.Timestamp.After(q.End) {
		return false
	}
	if q.RunID != "" && rec.RunID != q.RunID {
		return false
	}
	if q.Strategy != "" && rec.Strategy != q.Strategy {
		return false
	}
	if q.TechnicianID != "" {
		if _, ok := rec.Schedule[q.TechnicianID]; !ok && !containsString(rec.Technicians, q.TechnicianID) {
			return false
		}
	}
	if q.JobID != "" && !containsString(rec.Schedule.JobIDs(), q.JobID) {
		return false
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

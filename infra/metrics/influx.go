package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/fieldroute/core/metrics"
	"github.com/kilianp07/fieldroute/infra/logger"
)

// InfluxConfig is the factory configuration of the "influx" sink type.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes routing runs to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes one routing_run point followed by one route_stop point
// per scheduled stop.
func (s *InfluxSink) RecordRun(rec coremetrics.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, 1+len(rec.Stops))
	points = append(points, runPoint(rec))
	for _, st := range rec.Stops {
		points = append(points, stopPoint(rec, st))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordFallback records a solver failure.
func (s *InfluxSink) RecordFallback(ev coremetrics.FallbackEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("solver_fallback").
		AddTag("run_id", ev.RunID).
		AddTag("solver", ev.Solver).
		AddField("reason", ev.Reason).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close flushes and closes the client.
func (s *InfluxSink) Close() { s.client.Close() }

func runPoint(rec coremetrics.RunRecord) *write.Point {
	return write.NewPointWithMeasurement("routing_run").
		AddTag("run_id", rec.RunID).
		AddTag("kind", rec.Kind).
		AddTag("strategy", rec.Strategy).
		AddTag("matrix_source", rec.MatrixSource).
		AddField("technicians", rec.Technicians).
		AddField("jobs", rec.Jobs).
		AddField("assigned", rec.Assigned).
		AddField("unassigned", rec.Unassigned).
		AddField("distance_km", round3(rec.DistanceKm)).
		AddField("naive_km", round3(rec.NaiveKm)).
		AddField("savings_pct", round3(rec.SavingsPct)).
		AddField("travel_minutes", rec.TravelMinutes).
		AddField("duration_ms", round3(float64(rec.Duration)/float64(time.Millisecond))).
		SetTime(rec.Time)
}

func stopPoint(rec coremetrics.RunRecord, st coremetrics.StopRecord) *write.Point {
	return write.NewPointWithMeasurement("route_stop").
		AddTag("run_id", rec.RunID).
		AddTag("technician_id", st.TechnicianID).
		AddTag("job_id", st.JobID).
		AddTag("sequence", strconv.Itoa(st.Sequence)).
		AddField("arrival_seconds", st.ArrivalSeconds).
		AddField("travel_minutes", st.TravelMinutes).
		AddField("service_minutes", st.ServiceMinutes).
		AddField("distance_km", round3(st.DistanceKm)).
		SetTime(rec.Time)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

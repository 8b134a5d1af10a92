package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/fieldroute/core/metrics"
)

// PromSink records routing runs in Prometheus metrics.
type PromSink struct {
	assigned   *prometheus.CounterVec
	unassigned *prometheus.CounterVec
	distance   *prometheus.GaugeVec
	savings    *prometheus.GaugeVec
	fallbacks  *prometheus.CounterVec
}

// NewPromSink registers routing metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	assigned, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "routing_jobs_assigned_total",
		Help: "Jobs placed on a technician route",
	}, []string{"kind", "strategy"}))
	if err != nil {
		return nil, err
	}
	unassigned, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "routing_jobs_unassigned_total",
		Help: "Jobs left out of every route",
	}, []string{"kind", "strategy"}))
	if err != nil {
		return nil, err
	}
	distance, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "routing_last_distance_km",
		Help: "Total driving distance of the last run per technician",
	}, []string{"technician_id"}))
	if err != nil {
		return nil, err
	}
	savings, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "routing_last_savings_percent",
		Help: "Estimated savings against the naive baseline for the last run",
	}, []string{"kind"}))
	if err != nil {
		return nil, err
	}
	fallbacks, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "routing_fallbacks_total",
		Help: "Solver failures recovered by the greedy planner",
	}, []string{"solver"}))
	if err != nil {
		return nil, err
	}
	return &PromSink{assigned: assigned, unassigned: unassigned, distance: distance, savings: savings, fallbacks: fallbacks}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// RecordRun updates counters and per-technician distance gauges.
func (s *PromSink) RecordRun(rec coremetrics.RunRecord) error {
	s.assigned.WithLabelValues(rec.Kind, rec.Strategy).Add(float64(rec.Assigned))
	s.unassigned.WithLabelValues(rec.Kind, rec.Strategy).Add(float64(rec.Unassigned))
	s.savings.WithLabelValues(rec.Kind).Set(rec.SavingsPct)
	perTech := map[string]float64{}
	for _, st := range rec.Stops {
		perTech[st.TechnicianID] += st.DistanceKm
	}
	for id, km := range perTech {
		s.distance.WithLabelValues(id).Set(round3(km))
	}
	return nil
}

// RecordFallback counts solver failures.
func (s *PromSink) RecordFallback(ev coremetrics.FallbackEvent) error {
	s.fallbacks.WithLabelValues(ev.Solver).Inc()
	return nil
}

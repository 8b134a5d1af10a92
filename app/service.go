package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kilianp07/fieldroute/api/routes"
	"github.com/kilianp07/fieldroute/app/plugins"
	"github.com/kilianp07/fieldroute/config"
	coremetrics "github.com/kilianp07/fieldroute/core/metrics"
	coremon "github.com/kilianp07/fieldroute/core/monitoring"
	"github.com/kilianp07/fieldroute/core/routing"
	"github.com/kilianp07/fieldroute/core/routing/logging"
	"github.com/kilianp07/fieldroute/infra/distance"
	"github.com/kilianp07/fieldroute/infra/logger"
	"github.com/kilianp07/fieldroute/infra/metrics"
	"github.com/kilianp07/fieldroute/infra/monitoring"
	"github.com/kilianp07/fieldroute/infra/mqtt"
	_ "github.com/kilianp07/fieldroute/infra/vroom"
	"github.com/kilianp07/fieldroute/internal/eventbus"
)

// Service wires the routing engine to its configured solver, duration
// provider, metrics sinks, schedule log and MQTT publisher.
type Service struct {
	Engine *routing.Engine
	Store  logging.LogStore

	sink      coremetrics.MetricsSink
	bus       *eventbus.Bus
	publisher *mqtt.PahoPublisher
	closers   []io.Closer
	log       logger.Logger
	promAddr  string
	api       routes.Config
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("monitoring: %w", err)
	}
	coremon.Init(mon)

	var solver routing.Solver
	if !cfg.Routing.DisableSolver {
		s, err := routing.NewSolver(cfg.Routing.Solver)
		if err != nil {
			return nil, fmt.Errorf("solver: %w", err)
		}
		solver = s
	}

	provider, err := distance.NewProvider(cfg.Distance, logger.New("distance"))
	if err != nil {
		return nil, fmt.Errorf("distance provider: %w", err)
	}
	svc := &Service{log: logg, promAddr: cfg.Metrics.PrometheusAddr, api: cfg.API}
	if c, ok := provider.(io.Closer); ok {
		svc.closers = append(svc.closers, c)
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	svc.sink = sink
	svc.bus = eventbus.New()

	engine, err := routing.NewEngine(cfg.Routing, solver, provider, sink, svc.bus, logger.New("routing"))
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	svc.Engine = engine

	if cfg.Logging.Enabled() {
		store, err := OpenLogStore(cfg.Logging)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("log store: %w", err)
		}
		engine.SetLogStore(store)
		svc.Store = store
	}

	if cfg.MQTT.Broker != "" {
		pub, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		engine.SetPublisher(pub)
		svc.publisher = pub
	}
	return svc, nil
}

// OpenLogStore opens the log store registered for the configured backend.
func OpenLogStore(lc config.LoggingConfig) (logging.LogStore, error) {
	f, ok := plugins.LogStores[lc.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown log backend %q", lc.Backend)
	}
	return f(lc.Backend, map[string]any{
		"backend":      lc.Backend,
		"path":         lc.Path,
		"max_size_mb":  lc.MaxSizeMB,
		"max_backups":  lc.MaxBackups,
		"max_age_days": lc.MaxAgeDays,
	})
}

// Start launches the background collectors, the Prometheus endpoint and the
// HTTP API. They stop when ctx is canceled.
func (s *Service) Start(ctx context.Context) {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.api.Addr != "" {
		mux := routes.NewMux(s.Engine, s.Store, s.api.Token)
		go func() {
			if err := routes.StartServer(ctx, s.api.Addr, mux, logger.New("api")); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.Start(ctx)
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var errs []error
	if s.Engine != nil {
		errs = append(errs, s.Engine.Close())
	} else if s.Store != nil {
		errs = append(errs, s.Store.Close())
	}
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	if s.bus != nil {
		s.bus.Close()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}

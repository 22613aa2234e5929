// Package app wires the simulation engine to its collaborators: the MQTT
// emitter, the metrics sinks, the session log and the control API.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/solarfleet/api/units"
	"github.com/kilianp07/solarfleet/config"
	coremetrics "github.com/kilianp07/solarfleet/core/metrics"
	"github.com/kilianp07/solarfleet/core/model"
	"github.com/kilianp07/solarfleet/core/session"
	"github.com/kilianp07/solarfleet/core/sim"
	"github.com/kilianp07/solarfleet/infra/logger"
	"github.com/kilianp07/solarfleet/infra/metrics"
	"github.com/kilianp07/solarfleet/infra/mqtt"
	infrasession "github.com/kilianp07/solarfleet/infra/session"
)

// Service orchestrates the engine and its outbound collaborators.
type Service struct {
	Engine *sim.Engine

	cfg      *config.Config
	log      logger.Logger
	pub      mqtt.Publisher
	sessions session.Sink
	sink     coremetrics.Sink
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	store, err := infrasession.NewJSONLStore(cfg.SessionLog)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	sessions := recordFanout{store: store, metrics: sink, log: logg}

	engine, err := sim.NewEngine(cfg.Simulation, nil, sessions, nil, logger.New("engine"))
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	svc := &Service{Engine: engine, cfg: cfg, log: logg, sessions: sessions, sink: sink}
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.pub = client
	}
	return svc, nil
}

// Run starts the service and blocks until the context is cancelled and the
// final snapshot has been drained by every subscriber.
func (s *Service) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	// The emitter and the metrics forwarder run on the background context:
	// they stop when the hub closes their channels, after the shutdown
	// snapshot has been delivered.
	if s.pub != nil {
		emitter := mqtt.NewEmitter(s.pub, s.cfg.MQTT.TelemetryQoS, logger.New("mqtt-emitter"))
		sub := s.Engine.Subscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			emitter.Run(context.Background(), sub)
		}()
	}

	metricsSub := s.Engine.Subscribe()
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.forward(metricsSub)
	}()

	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	if s.cfg.API.Enabled {
		go s.serveAPI(ctx)
	}

	err := s.Engine.Run(ctx)
	wg.Wait()
	return err
}

func (s *Service) forward(sub <-chan sim.FleetSnapshot) {
	for snap := range sub {
		if err := s.sink.RecordTelemetry(snap.Telemetry); err != nil {
			s.log.Errorf("record telemetry: %v", err)
		}
		if err := s.sink.RecordFleetStats(snap.Stats); err != nil {
			s.log.Errorf("record fleet stats: %v", err)
		}
	}
}

func (s *Service) serveAPI(ctx context.Context) {
	srv := &http.Server{
		Addr:              s.cfg.API.Addr,
		Handler:           units.NewHandler(s.Engine, logger.New("api")),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("control API listening on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Errorf("api server: %v", err)
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.pub != nil {
		s.pub.Close()
	}
	return s.sessions.Close()
}

// recordFanout forwards finalized sessions to the metrics sink before
// persisting them.
type recordFanout struct {
	store   session.Sink
	metrics coremetrics.Sink
	log     logger.Logger
}

func (f recordFanout) Record(ctx context.Context, rec model.FinalizedSession) error {
	if err := f.metrics.RecordSessionEnd(rec); err != nil {
		f.log.Errorf("session %s: metrics record failed: %v", rec.SessionID, err)
	}
	return f.store.Record(ctx, rec)
}

func (f recordFanout) Close() error { return f.store.Close() }

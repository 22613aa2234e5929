package sim

import (
	"context"
	"sync"
	"time"

	"github.com/kilianp07/solarfleet/core/fleet"
	"github.com/kilianp07/solarfleet/core/logger"
	"github.com/kilianp07/solarfleet/core/model"
	"github.com/kilianp07/solarfleet/core/session"
	"github.com/kilianp07/solarfleet/internal/hub"
)

// FleetSnapshot bundles one tick's telemetry batch with its aggregate. It is
// the unit of distribution: subscribers always receive a consistent view of
// a single tick, never a mix of two.
type FleetSnapshot struct {
	Telemetry []model.Telemetry
	Stats     model.FleetStats
}

// Engine drives the fleet of unit state machines. Each tick advances every
// unit concurrently, waits for all of them (the tick barrier), aggregates
// the resulting telemetry and publishes the snapshot to subscribers.
type Engine struct {
	cfg      Config
	units    []*Unit
	byID     map[string]*Unit
	clock    Clock
	sessions session.Sink
	log      logger.Logger
	hub      *hub.Hub[FleetSnapshot]

	mu        sync.Mutex
	lastStats model.FleetStats
	lastSnaps []model.Telemetry
}

// NewEngine builds an engine from the validated configuration. A nil fault
// model defaults to the seeded random model, a nil sink discards finalized
// sessions and a nil clock uses the wall clock.
func NewEngine(cfg Config, faults FaultModel, sink session.Sink, clk Clock, log logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if faults == nil {
		faults = NewRandomFaultModel(cfg.Fault)
	}
	if sink == nil {
		sink = session.NopSink{}
	}
	if clk == nil {
		clk = NewRealClock()
	}
	set := cfg.settings()
	e := &Engine{
		cfg:      cfg,
		byID:     make(map[string]*Unit, len(cfg.Units)),
		clock:    clk,
		sessions: sink,
		log:      log,
		hub:      hub.New[FleetSnapshot](),
	}
	for _, uc := range cfg.Units {
		u := NewUnit(uc, set, faults, log)
		e.units = append(e.units, u)
		e.byID[uc.ID] = u
	}
	return e, nil
}

// Run advances the fleet at the configured cadence until the context is
// cancelled, then finalizes open sessions with reason shutdown and flushes a
// final snapshot.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.Tick())
	defer ticker.Stop()
	e.log.Infof("engine started: %d units, tick %s", len(e.units), e.cfg.Tick())
	for {
		select {
		case <-ctx.Done():
			e.Shutdown(e.clock.Now())
			return nil
		case <-ticker.C:
			e.Step(e.clock.Now())
		}
	}
}

// Step executes one tick at the given instant. Exposed for scenario runs and
// tests driving a fake clock.
func (e *Engine) Step(now time.Time) FleetSnapshot {
	dt := e.cfg.Tick()
	// The policy sees the previous tick's load: sampling the in-flight tick
	// would need a second barrier.
	load := e.FleetStats().TotalPowerW

	snaps := make([]model.Telemetry, len(e.units))
	var finMu sync.Mutex
	var fins []model.FinalizedSession
	var wg sync.WaitGroup
	for i, u := range e.units {
		wg.Add(1)
		go func(i int, u *Unit) {
			defer wg.Done()
			tel, fin := u.Advance(now, dt, load)
			snaps[i] = tel
			if fin != nil {
				finMu.Lock()
				fins = append(fins, *fin)
				finMu.Unlock()
			}
		}(i, u)
	}
	wg.Wait()

	stats := fleet.Aggregate(snaps, now)
	e.mu.Lock()
	e.lastStats = stats
	e.lastSnaps = snaps
	e.mu.Unlock()

	for _, fin := range fins {
		e.record(fin)
	}
	snapshot := FleetSnapshot{Telemetry: snaps, Stats: stats}
	e.hub.Publish(snapshot)
	return snapshot
}

// Shutdown closes every open session with reason shutdown, emits the
// records, publishes a final snapshot and closes the hub.
func (e *Engine) Shutdown(now time.Time) {
	snaps := make([]model.Telemetry, len(e.units))
	for i, u := range e.units {
		tel, fin := u.FlushShutdown(now)
		snaps[i] = tel
		if fin != nil {
			e.record(*fin)
		}
	}
	stats := fleet.Aggregate(snaps, now)
	e.mu.Lock()
	e.lastStats = stats
	e.lastSnaps = snaps
	e.mu.Unlock()
	e.hub.Publish(FleetSnapshot{Telemetry: snaps, Stats: stats})
	e.hub.Close()
	e.log.Infof("engine stopped")
}

// StartSession admits a new session on the given unit.
func (e *Engine) StartSession(unitID string, targetKWh float64) (string, error) {
	return e.StartSessionWithClass(unitID, targetKWh, 0)
}

// StartSessionWithClass admits a new session with an optional connector
// class override (zero for none).
func (e *Engine) StartSessionWithClass(unitID string, targetKWh float64, class model.ConnectorClass) (string, error) {
	u, ok := e.byID[unitID]
	if !ok {
		return "", ErrUnknownUnit
	}
	id, err := u.StartSession(e.clock.Now(), targetKWh, class)
	if err != nil {
		return "", err
	}
	e.log.Infof("unit %s: session %s started, target %.1f kWh", unitID, id, targetKWh)
	return id, nil
}

// StopSession finalizes the active session on the given unit with reason
// stopped. Stopping an idle unit returns ErrNoActiveSession.
func (e *Engine) StopSession(unitID string) error {
	u, ok := e.byID[unitID]
	if !ok {
		return ErrUnknownUnit
	}
	fin, err := u.StopSession(e.clock.Now())
	if err != nil {
		return err
	}
	e.record(fin)
	return nil
}

// Subscribe registers a snapshot subscriber with latest-value-wins delivery.
func (e *Engine) Subscribe() <-chan FleetSnapshot { return e.hub.Subscribe() }

// Unsubscribe removes a subscriber registered with Subscribe.
func (e *Engine) Unsubscribe(sub <-chan FleetSnapshot) { e.hub.Unsubscribe(sub) }

// FleetStats returns the aggregate of the most recent tick.
func (e *Engine) FleetStats() model.FleetStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastStats
}

// Snapshots returns the telemetry batch of the most recent tick.
func (e *Engine) Snapshots() []model.Telemetry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Telemetry, len(e.lastSnaps))
	copy(out, e.lastSnaps)
	return out
}

func (e *Engine) record(rec model.FinalizedSession) {
	if err := e.sessions.Record(context.Background(), rec); err != nil {
		e.log.Errorf("session %s: record failed: %v", rec.SessionID, err)
	}
	e.log.Infof("unit %s: session %s finalized (%s): %.3f kWh renewable, %.3f kWh utility, cost %.2f",
		rec.UnitID, rec.SessionID, rec.Reason, rec.RenewableKWh, rec.UtilityKWh, rec.TotalCost)
}

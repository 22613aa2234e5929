package scenarios

import (
	"time"

	"github.com/kilianp07/solarfleet/core/logger"
	"github.com/kilianp07/solarfleet/core/model"
	"github.com/kilianp07/solarfleet/core/session"
	"github.com/kilianp07/solarfleet/core/sim"
)

// Result summarizes one scenario run.
type Result struct {
	Finalized    []model.FinalizedSession
	Stats        model.FleetStats
	RenewablePct float64
}

// CountReason returns the number of finalized sessions with the given
// termination reason.
func (r *Result) CountReason(reason model.TerminationReason) int {
	n := 0
	for _, f := range r.Finalized {
		if f.Reason == reason {
			n++
		}
	}
	return n
}

// Run replays the scenario with a fake clock and returns the finalized
// sessions and the last fleet aggregate. Open sessions are closed with
// reason shutdown at the end of the run.
func Run(sc *Scenario, log logger.Logger) (*Result, error) {
	units := make([]model.UnitConfig, len(sc.Units))
	for i, u := range sc.Units {
		units[i] = u.ToModel()
	}
	cfg := sim.Config{TickSeconds: sc.TickSeconds, Units: units}
	var faults sim.FaultModel = sim.NopFaultModel{}
	if sc.Fault != nil {
		cfg.Fault = sim.FaultConfig{
			ProbabilityPerTick: sc.Fault.ProbabilityPerTick,
			Seed:               sc.Fault.Seed,
		}
	}
	cfg.SetDefaults()
	if sc.Fault != nil {
		faults = sim.NewRandomFaultModel(cfg.Fault)
	}

	start := sc.StartTime
	if start.IsZero() {
		start = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	clock := sim.NewFakeClock(start)
	store := session.NewMemoryStore()
	engine, err := sim.NewEngine(cfg, faults, store, clock, log)
	if err != nil {
		return nil, err
	}

	var stats model.FleetStats
	for tick := 0; tick < sc.Ticks; tick++ {
		for _, s := range sc.Starts {
			if s.Tick != tick {
				continue
			}
			if _, err := engine.StartSessionWithClass(s.UnitID, s.TargetKWh, model.ConnectorClass(s.Class)); err != nil {
				log.Warnf("scenario %s tick %d: start %s: %v", sc.Name, tick, s.UnitID, err)
			}
		}
		for _, s := range sc.Stops {
			if s.Tick != tick {
				continue
			}
			if err := engine.StopSession(s.UnitID); err != nil {
				log.Warnf("scenario %s tick %d: stop %s: %v", sc.Name, tick, s.UnitID, err)
			}
		}
		snap := engine.Step(clock.Advance(cfg.Tick()))
		stats = snap.Stats
	}
	engine.Shutdown(clock.Now())

	res := &Result{Finalized: store.List(), Stats: stats}
	var renewable, total float64
	for _, f := range res.Finalized {
		renewable += f.RenewableKWh
		total += f.RenewableKWh + f.UtilityKWh
	}
	if total > 0 {
		res.RenewablePct = renewable / total * 100
	}
	return res, nil
}

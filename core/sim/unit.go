package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/solarfleet/core/logger"
	"github.com/kilianp07/solarfleet/core/model"
)

// chargingTempC is the equilibrium temperature a unit heats toward while
// delivering power; tempTau is the time constant of the approach.
const (
	chargingTempC = 55.0
	minTempC      = 15.0
	maxTempC      = 60.0
	tempTau       = 5 * time.Minute
)

// Unit is the state machine for one charging unit. It exclusively owns the
// unit's mutable state; external commands and tick advancement are
// serialized on the unit's lock, so a command is always applied atomically
// with respect to the tick.
type Unit struct {
	cfg    model.UnitConfig
	set    settings
	faults FaultModel
	log    logger.Logger

	mu            sync.Mutex
	status        model.Status
	session       *model.ChargingSession
	classOverride model.ConnectorClass
	currentA      float64
	temperatureC  float64
	faultUntil    time.Time
	phaseStart    time.Time
	last          model.Telemetry
}

// NewUnit creates a unit in the available state.
func NewUnit(cfg model.UnitConfig, set settings, faults FaultModel, log logger.Logger) *Unit {
	return &Unit{
		cfg:          cfg,
		set:          set,
		faults:       faults,
		log:          log,
		status:       model.StatusAvailable,
		temperatureC: set.ambientC,
	}
}

// ID returns the unit identifier.
func (u *Unit) ID() string { return u.cfg.ID }

// Status returns the current lifecycle state.
func (u *Unit) Status() model.Status {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.status
}

// Snapshot returns the most recent telemetry produced by the unit.
func (u *Unit) Snapshot() model.Telemetry {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.last
}

// StartSession admits the unit into the preparing state. The target energy
// must lie in (0, rated power x max session hours]; the optional connector
// class override (zero for none) rebases the rating for this session only.
func (u *Unit) StartSession(now time.Time, targetKWh float64, override model.ConnectorClass) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.status != model.StatusAvailable {
		return "", ErrUnitBusy
	}
	if override != 0 && !override.Valid() {
		return "", ErrInvalidTarget
	}
	class := u.cfg.Class
	if override != 0 {
		class = override
	}
	maxKWh := class.NominalPowerW() / 1000 * u.set.maxHours
	if targetKWh <= 0 || targetKWh > maxKWh {
		return "", ErrInvalidTarget
	}
	id := "sess_" + uuid.NewString()
	u.session = &model.ChargingSession{
		ID:        id,
		UnitID:    u.cfg.ID,
		StartTime: now,
		TargetKWh: targetKWh,
	}
	u.classOverride = override
	u.status = model.StatusPreparing
	u.phaseStart = now
	u.currentA = 0
	return id, nil
}

// StopSession finalizes the active session with reason stopped and returns
// the unit to available. Stopping an idle unit is a rejected command with no
// state change.
func (u *Unit) StopSession(now time.Time) (model.FinalizedSession, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.session == nil {
		return model.FinalizedSession{}, ErrNoActiveSession
	}
	return u.finalizeLocked(now, model.ReasonStopped), nil
}

// Advance executes one tick. It returns the fresh telemetry snapshot and,
// when a session closed during the tick, its finalized record.
func (u *Unit) Advance(now time.Time, dt time.Duration, fleetLoadW float64) (model.Telemetry, *model.FinalizedSession) {
	u.mu.Lock()
	defer u.mu.Unlock()

	var fin *model.FinalizedSession
	src := model.SourceNone

	switch {
	case u.status == model.StatusFaulted:
		if !now.Before(u.faultUntil) {
			u.status = model.StatusAvailable
			u.faultUntil = time.Time{}
			u.log.Infof("unit %s: recovered from fault", u.cfg.ID)
		}
	case u.status.Active() && u.faults.ShouldFault(u.status):
		f := u.finalizeLocked(now, model.ReasonFault)
		fin = &f
		u.status = model.StatusFaulted
		u.faultUntil = now.Add(u.faults.RecoveryDelay())
		u.log.Warnf("unit %s: fault injected, recovery due %s", u.cfg.ID, u.faultUntil.Format(time.RFC3339))
	default:
		switch u.status {
		case model.StatusPreparing:
			frac := phaseProgress(now, u.phaseStart, u.set.warmup)
			u.currentA = u.nominalCurrentLocked() * frac
			if frac >= 1 {
				u.status = model.StatusCharging
			}
		case model.StatusCharging:
			var derate float64
			src, derate = u.set.policy.SelectSource(now, fleetLoadW)
			elapsed := u.session.TotalKWh() / u.session.TargetKWh
			powerW := ChargePower(elapsed, u.nominalPowerLocked()) * derate
			u.session.Accumulate(powerW, src, dt)
			u.currentA = powerW / u.voltageLocked()
			if u.session.TotalKWh() >= u.session.TargetKWh-u.set.toleranceKWh {
				u.status = model.StatusFinishing
				u.phaseStart = now
			}
		case model.StatusFinishing:
			frac := phaseProgress(now, u.phaseStart, u.set.rampDown)
			u.currentA = u.nominalCurrentLocked() * (1 - frac)
			if frac >= 1 {
				u.currentA = 0
				f := u.finalizeLocked(now, model.ReasonComplete)
				fin = &f
			}
		}
	}

	u.updateTemperatureLocked(dt)

	if err := u.checkInvariantsLocked(); err != nil {
		// Isolate the violation to this unit: close anything open and
		// return to available. The rest of the fleet keeps advancing.
		u.log.Errorf("unit %s: invariant violation: %v", u.cfg.ID, err)
		if u.session != nil && fin == nil {
			f := u.finalizeLocked(now, model.ReasonFault)
			fin = &f
		}
		u.status = model.StatusAvailable
		u.faultUntil = time.Time{}
		u.currentA = 0
	}

	tel := u.telemetryLocked(now, src)
	u.last = tel
	return tel, fin
}

// FlushShutdown finalizes any open session with reason shutdown and emits a
// final telemetry snapshot. Called once when the engine stops.
func (u *Unit) FlushShutdown(now time.Time) (model.Telemetry, *model.FinalizedSession) {
	u.mu.Lock()
	defer u.mu.Unlock()
	var fin *model.FinalizedSession
	if u.session != nil {
		f := u.finalizeLocked(now, model.ReasonShutdown)
		fin = &f
	}
	tel := u.telemetryLocked(now, model.SourceNone)
	u.last = tel
	return tel, fin
}

func (u *Unit) finalizeLocked(now time.Time, reason model.TerminationReason) model.FinalizedSession {
	fin := u.session.Finalize(now, reason, u.set.tariff)
	u.session = nil
	u.classOverride = 0
	u.status = model.StatusAvailable
	u.currentA = 0
	return fin
}

func (u *Unit) checkInvariantsLocked() error {
	if u.status.Active() != (u.session != nil) {
		return fmt.Errorf("status %s inconsistent with session presence %t", u.status, u.session != nil)
	}
	if u.session != nil && u.session.TotalKWh() > u.session.TargetKWh+u.set.toleranceKWh {
		return fmt.Errorf("energy %.4f kWh exceeds target %.4f kWh beyond tolerance",
			u.session.TotalKWh(), u.session.TargetKWh)
	}
	return nil
}

func (u *Unit) updateTemperatureLocked(dt time.Duration) {
	target := u.set.ambientC
	if u.status == model.StatusCharging {
		target = chargingTempC
	}
	frac := dt.Seconds() / tempTau.Seconds()
	if frac > 1 {
		frac = 1
	}
	u.temperatureC += (target - u.temperatureC) * frac
	if u.temperatureC < minTempC {
		u.temperatureC = minTempC
	}
	if u.temperatureC > maxTempC {
		u.temperatureC = maxTempC
	}
}

func (u *Unit) telemetryLocked(now time.Time, src model.Source) model.Telemetry {
	tel := model.Telemetry{
		Timestamp:    now,
		UnitID:       u.cfg.ID,
		CurrentA:     u.currentA,
		TemperatureC: u.temperatureC,
		Status:       u.status,
		Source:       src,
	}
	if u.currentA > 0 {
		tel.VoltageV = u.voltageLocked()
		tel.PowerW = tel.VoltageV * u.currentA
	}
	if u.session != nil {
		tel.SessionID = u.session.ID
		tel.RenewableKWh = u.session.RenewableKWh
		tel.UtilityKWh = u.session.UtilityKWh
		tel.TotalKWh = u.session.TotalKWh()
	}
	return tel
}

func (u *Unit) classLocked() model.ConnectorClass {
	if u.classOverride != 0 {
		return u.classOverride
	}
	return u.cfg.Class
}

func (u *Unit) voltageLocked() float64 { return u.classLocked().VoltageV() }

func (u *Unit) nominalCurrentLocked() float64 { return u.classLocked().MaxCurrentA() }

func (u *Unit) nominalPowerLocked() float64 { return u.classLocked().NominalPowerW() }

// phaseProgress maps elapsed time in a ramp window to [0,1].
func phaseProgress(now, start time.Time, window time.Duration) float64 {
	if window <= 0 {
		return 1
	}
	frac := float64(now.Sub(start)) / float64(window)
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}

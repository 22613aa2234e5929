package model

import (
	"fmt"
	"time"
)

// TerminationReason explains why a session was finalized.
type TerminationReason string

const (
	ReasonComplete TerminationReason = "complete"
	ReasonStopped  TerminationReason = "stopped"
	ReasonFault    TerminationReason = "fault"
	ReasonShutdown TerminationReason = "shutdown"
)

// Tariff holds the fixed per-kWh billing rates for the two energy origins.
type Tariff struct {
	RenewableRatePerKWh float64 `json:"renewable_rate_per_kwh"`
	UtilityRatePerKWh   float64 `json:"utility_rate_per_kwh"`
}

// Cost computes the monetary cost of the given energy split.
func (t Tariff) Cost(renewableKWh, utilityKWh float64) float64 {
	return renewableKWh*t.RenewableRatePerKWh + utilityKWh*t.UtilityRatePerKWh
}

// Validate checks that both rates are non-negative.
func (t Tariff) Validate() error {
	if t.RenewableRatePerKWh < 0 || t.UtilityRatePerKWh < 0 {
		return fmt.Errorf("tariff rates must be non-negative")
	}
	return nil
}

// ChargingSession is one charging event on a unit, from admission to
// finalization. Energy totals only ever grow while the session is open; cost
// is never stored, always derived from the split and the tariff.
type ChargingSession struct {
	ID           string    `json:"session_id"`
	UnitID       string    `json:"unit_id"`
	StartTime    time.Time `json:"start_time"`
	TargetKWh    float64   `json:"target_energy_kwh"`
	RenewableKWh float64   `json:"energy_renewable_kwh"`
	UtilityKWh   float64   `json:"energy_utility_kwh"`
}

// Accumulate integrates the delivered power over the tick into the bucket of
// the active source. The whole tick is attributed to a single source; there
// is no baseline split to the other bucket. Power must already include any
// derate applied by the caller. A zero source or non-positive duration adds
// nothing.
func (s *ChargingSession) Accumulate(powerW float64, src Source, dt time.Duration) {
	if powerW <= 0 || dt <= 0 {
		return
	}
	kwh := powerW / 1000 * dt.Hours()
	switch src {
	case SourceRenewable:
		s.RenewableKWh += kwh
	case SourceUtility:
		s.UtilityKWh += kwh
	}
}

// TotalKWh returns the accumulated energy across both buckets.
func (s ChargingSession) TotalKWh() float64 {
	return s.RenewableKWh + s.UtilityKWh
}

// Cost derives the current session cost under the given tariff.
func (s ChargingSession) Cost(t Tariff) float64 {
	return t.Cost(s.RenewableKWh, s.UtilityKWh)
}

// FinalizedSession is the immutable record handed to the persistence
// collaborator when a session closes.
type FinalizedSession struct {
	SessionID    string            `json:"session_id"`
	UnitID       string            `json:"unit_id"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      time.Time         `json:"end_time"`
	RenewableKWh float64           `json:"energy_renewable_kwh"`
	UtilityKWh   float64           `json:"energy_utility_kwh"`
	TotalCost    float64           `json:"total_cost"`
	Reason       TerminationReason `json:"termination_reason"`
}

// Finalize closes the session at the given time with the given reason.
func (s ChargingSession) Finalize(end time.Time, reason TerminationReason, t Tariff) FinalizedSession {
	return FinalizedSession{
		SessionID:    s.ID,
		UnitID:       s.UnitID,
		StartTime:    s.StartTime,
		EndTime:      end,
		RenewableKWh: s.RenewableKWh,
		UtilityKWh:   s.UtilityKWh,
		TotalCost:    s.Cost(t),
		Reason:       reason,
	}
}

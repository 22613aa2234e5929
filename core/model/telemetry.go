package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Source is the energy origin a unit draws from during a tick.
type Source int

const (
	SourceNone Source = iota
	SourceRenewable
	SourceUtility
)

// String returns the wire representation of the source.
func (s Source) String() string {
	switch s {
	case SourceRenewable:
		return "renewable"
	case SourceUtility:
		return "utility"
	default:
		return "none"
	}
}

// MarshalJSON encodes the source as its wire string.
func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the wire string form.
func (s *Source) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v {
	case "none":
		*s = SourceNone
	case "renewable":
		*s = SourceRenewable
	case "utility":
		*s = SourceUtility
	default:
		return fmt.Errorf("unknown source %q", v)
	}
	return nil
}

// Telemetry is one immutable snapshot of a unit, produced fresh each tick and
// superseded, never edited.
type Telemetry struct {
	Timestamp    time.Time `json:"timestamp"`
	UnitID       string    `json:"unit_id"`
	SessionID    string    `json:"session_id,omitempty"`
	VoltageV     float64   `json:"voltage_v"`
	CurrentA     float64   `json:"current_a"`
	PowerW       float64   `json:"power_w"`
	RenewableKWh float64   `json:"session_energy_kwh_renewable"`
	UtilityKWh   float64   `json:"session_energy_kwh_utility"`
	TotalKWh     float64   `json:"session_total_energy_kwh"`
	Source       Source    `json:"source"`
	TemperatureC float64   `json:"temperature_c"`
	Status       Status    `json:"status"`
}

// FleetStats is the per-tick aggregate over the whole fleet, derived entirely
// from the tick's telemetry snapshots.
type FleetStats struct {
	TotalPowerW         float64   `json:"total_power_w"`
	TotalRenewableKWh   float64   `json:"total_renewable_kwh"`
	TotalUtilityKWh     float64   `json:"total_utility_kwh"`
	TotalEnergyKWh      float64   `json:"total_energy_kwh"`
	AvgTemperatureC     float64   `json:"avg_temperature_c"`
	RenewablePercentage float64   `json:"renewable_percentage"`
	ActiveSessions      int       `json:"active_sessions"`
	AvailableUnits      int       `json:"available_units"`
	ChargingUnits       int       `json:"charging_units"`
	FaultedUnits        int       `json:"faulted_units"`
	LastUpdated         time.Time `json:"last_updated"`
}

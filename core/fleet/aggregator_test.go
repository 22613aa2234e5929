package fleet

import (
	"math"
	"testing"
	"time"

	"github.com/kilianp07/solarfleet/core/model"
)

func TestAggregateEmptyFleet(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	stats := Aggregate(nil, now)
	if stats.RenewablePercentage != 0 {
		t.Errorf("zero energy must yield 0%% renewable, got %.1f", stats.RenewablePercentage)
	}
	if !stats.LastUpdated.Equal(now) {
		t.Errorf("timestamp not set: %s", stats.LastUpdated)
	}
}

func TestAggregateSums(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	snaps := []model.Telemetry{
		{
			UnitID: "evse_unit_01", SessionID: "sess_a", PowerW: 7360,
			RenewableKWh: 3, UtilityKWh: 1, TemperatureC: 50,
			Status: model.StatusCharging,
		},
		{
			UnitID: "evse_unit_02", TemperatureC: 22,
			Status: model.StatusAvailable,
		},
		{
			UnitID: "evse_unit_03", TemperatureC: 30,
			Status: model.StatusFaulted,
		},
	}
	stats := Aggregate(snaps, now)

	if stats.TotalPowerW != 7360 {
		t.Errorf("total power: got %.1f", stats.TotalPowerW)
	}
	if stats.TotalEnergyKWh != 4 {
		t.Errorf("total energy: got %.2f", stats.TotalEnergyKWh)
	}
	if math.Abs(stats.RenewablePercentage-75) > 1e-9 {
		t.Errorf("renewable percentage: got %.2f", stats.RenewablePercentage)
	}
	if math.Abs(stats.AvgTemperatureC-34) > 1e-9 {
		t.Errorf("avg temperature: got %.2f", stats.AvgTemperatureC)
	}
	if stats.ActiveSessions != 1 {
		t.Errorf("active sessions: got %d", stats.ActiveSessions)
	}
	if stats.AvailableUnits != 1 || stats.ChargingUnits != 1 || stats.FaultedUnits != 1 {
		t.Errorf("status counts wrong: %+v", stats)
	}
}

func TestAggregateZeroEnergyFleet(t *testing.T) {
	snaps := []model.Telemetry{
		{UnitID: "evse_unit_01", TemperatureC: 22, Status: model.StatusAvailable},
	}
	stats := Aggregate(snaps, time.Now())
	if stats.RenewablePercentage != 0 {
		t.Errorf("idle fleet must report 0%% renewable, got %.1f", stats.RenewablePercentage)
	}
}

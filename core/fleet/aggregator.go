// Package fleet reduces one tick's telemetry snapshots into fleet-wide
// statistics. The reduction is pure: it reads only the immutable snapshots,
// never unit internals, so it can run right after the tick barrier without
// racing the units.
package fleet

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/solarfleet/core/model"
)

// Aggregate computes the FleetStats for one tick from the telemetry of every
// unit. The renewable percentage is defined as zero when no energy has been
// delivered at all.
func Aggregate(snaps []model.Telemetry, now time.Time) model.FleetStats {
	stats := model.FleetStats{LastUpdated: now}
	if len(snaps) == 0 {
		return stats
	}
	temps := make([]float64, 0, len(snaps))
	for _, t := range snaps {
		stats.TotalPowerW += t.PowerW
		stats.TotalRenewableKWh += t.RenewableKWh
		stats.TotalUtilityKWh += t.UtilityKWh
		temps = append(temps, t.TemperatureC)
		if t.SessionID != "" {
			stats.ActiveSessions++
		}
		switch t.Status {
		case model.StatusAvailable:
			stats.AvailableUnits++
		case model.StatusCharging:
			stats.ChargingUnits++
		case model.StatusFaulted:
			stats.FaultedUnits++
		}
	}
	stats.TotalEnergyKWh = stats.TotalRenewableKWh + stats.TotalUtilityKWh
	if stats.TotalEnergyKWh > 0 {
		stats.RenewablePercentage = stats.TotalRenewableKWh / stats.TotalEnergyKWh * 100
	}
	stats.AvgTemperatureC = stat.Mean(temps, nil)
	return stats
}

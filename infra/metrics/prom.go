package metrics

import (
	coremetrics "github.com/kilianp07/solarfleet/core/metrics"
	"github.com/kilianp07/solarfleet/core/model"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink exposes fleet state as Prometheus metrics.
type PromSink struct {
	unitPower    *prometheus.GaugeVec
	unitTemp     *prometheus.GaugeVec
	fleetPower   prometheus.Gauge
	renewablePct prometheus.Gauge
	avgTemp      prometheus.Gauge
	unitsByState *prometheus.GaugeVec
	sessions     prometheus.Gauge
	finalized    *prometheus.CounterVec
	energy       *prometheus.CounterVec
}

// NewPromSink registers fleet metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		unitPower: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "evse_unit_power_watts",
			Help: "Instantaneous charging power per unit",
		}, []string{"unit_id", "source"}),
		unitTemp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "evse_unit_temperature_celsius",
			Help: "Unit temperature",
		}, []string{"unit_id"}),
		fleetPower: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evse_fleet_power_watts",
			Help: "Total fleet charging power",
		}),
		renewablePct: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evse_fleet_renewable_percentage",
			Help: "Share of session energy drawn from the renewable source",
		}),
		avgTemp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evse_fleet_avg_temperature_celsius",
			Help: "Average unit temperature",
		}),
		unitsByState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "evse_fleet_units",
			Help: "Number of units per lifecycle status",
		}, []string{"status"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evse_fleet_active_sessions",
			Help: "Number of open charging sessions",
		}),
		finalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evse_sessions_finalized_total",
			Help: "Finalized charging sessions by termination reason",
		}, []string{"reason"}),
		energy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evse_session_energy_kwh_total",
			Help: "Energy delivered by finalized sessions, per source",
		}, []string{"source"}),
	}
	collectors := []prometheus.Collector{
		s.unitPower, s.unitTemp, s.fleetPower, s.renewablePct,
		s.avgTemp, s.unitsByState, s.sessions, s.finalized, s.energy,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordTelemetry updates the per-unit gauges.
func (s *PromSink) RecordTelemetry(batch []model.Telemetry) error {
	for _, t := range batch {
		s.unitPower.WithLabelValues(t.UnitID, t.Source.String()).Set(t.PowerW)
		s.unitTemp.WithLabelValues(t.UnitID).Set(t.TemperatureC)
	}
	return nil
}

// RecordFleetStats updates the fleet-level gauges.
func (s *PromSink) RecordFleetStats(stats model.FleetStats) error {
	s.fleetPower.Set(stats.TotalPowerW)
	s.renewablePct.Set(stats.RenewablePercentage)
	s.avgTemp.Set(stats.AvgTemperatureC)
	s.sessions.Set(float64(stats.ActiveSessions))
	s.unitsByState.WithLabelValues(model.StatusAvailable.String()).Set(float64(stats.AvailableUnits))
	s.unitsByState.WithLabelValues(model.StatusCharging.String()).Set(float64(stats.ChargingUnits))
	s.unitsByState.WithLabelValues(model.StatusFaulted.String()).Set(float64(stats.FaultedUnits))
	return nil
}

// RecordSessionEnd counts the finalized session and its energy split.
func (s *PromSink) RecordSessionEnd(rec model.FinalizedSession) error {
	s.finalized.WithLabelValues(string(rec.Reason)).Inc()
	s.energy.WithLabelValues(model.SourceRenewable.String()).Add(rec.RenewableKWh)
	s.energy.WithLabelValues(model.SourceUtility.String()).Add(rec.UtilityKWh)
	return nil
}

package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/solarfleet/core/logger"
	coremetrics "github.com/kilianp07/solarfleet/core/metrics"
	"github.com/kilianp07/solarfleet/core/model"
	infralogger "github.com/kilianp07/solarfleet/infra/logger"
)

// InfluxSink writes telemetry and session records to an InfluxDB instance
// using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	base := strings.TrimSuffix(cfg.InfluxURL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      infralogger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns
// a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordTelemetry writes one point per unit snapshot.
func (s *InfluxSink) RecordTelemetry(batch []model.Telemetry) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, t := range batch {
		p := write.NewPointWithMeasurement("evse_telemetry").
			AddTag("unit_id", t.UnitID).
			AddTag("status", t.Status.String()).
			AddTag("source", t.Source.String()).
			AddField("voltage_v", t.VoltageV).
			AddField("current_a", t.CurrentA).
			AddField("power_w", t.PowerW).
			AddField("session_energy_kwh_renewable", t.RenewableKWh).
			AddField("session_energy_kwh_utility", t.UtilityKWh).
			AddField("temperature_c", t.TemperatureC).
			SetTime(t.Timestamp)
		if t.SessionID != "" {
			p.AddTag("session_id", t.SessionID)
		}
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordFleetStats writes the per-tick aggregate.
func (s *InfluxSink) RecordFleetStats(stats model.FleetStats) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("fleet_stats").
		AddField("total_power_w", stats.TotalPowerW).
		AddField("total_renewable_kwh", stats.TotalRenewableKWh).
		AddField("total_utility_kwh", stats.TotalUtilityKWh).
		AddField("renewable_percentage", stats.RenewablePercentage).
		AddField("avg_temperature_c", stats.AvgTemperatureC).
		AddField("active_sessions", stats.ActiveSessions).
		AddField("available_units", stats.AvailableUnits).
		AddField("charging_units", stats.ChargingUnits).
		AddField("faulted_units", stats.FaultedUnits).
		SetTime(stats.LastUpdated)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSessionEnd writes the finalized session record.
func (s *InfluxSink) RecordSessionEnd(rec model.FinalizedSession) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("charging_session").
		AddTag("unit_id", rec.UnitID).
		AddTag("session_id", rec.SessionID).
		AddTag("termination_reason", string(rec.Reason)).
		AddField("energy_renewable_kwh", rec.RenewableKWh).
		AddField("energy_utility_kwh", rec.UtilityKWh).
		AddField("total_cost", rec.TotalCost).
		AddField("duration_seconds", rec.EndTime.Sub(rec.StartTime).Seconds()).
		SetTime(rec.EndTime)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

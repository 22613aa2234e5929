package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/solarfleet/core/metrics"
	"github.com/kilianp07/solarfleet/core/model"
)

func newTestSink(t *testing.T) *PromSink {
	t.Helper()
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected *PromSink, got %T", sinkIf)
	}
	return sink
}

func TestPromSinkRecordTelemetry(t *testing.T) {
	sink := newTestSink(t)
	batch := []model.Telemetry{
		{UnitID: "evse_unit_01", PowerW: 7360, Source: model.SourceRenewable, TemperatureC: 48.5},
		{UnitID: "evse_unit_02", PowerW: 0, Source: model.SourceNone, TemperatureC: 22},
	}
	if err := sink.RecordTelemetry(batch); err != nil {
		t.Fatalf("record: %v", err)
	}
	got := testutil.ToFloat64(sink.unitPower.WithLabelValues("evse_unit_01", "renewable"))
	if got != 7360 {
		t.Errorf("unit power: got %.1f", got)
	}
	if got := testutil.ToFloat64(sink.unitTemp.WithLabelValues("evse_unit_02")); got != 22 {
		t.Errorf("unit temperature: got %.1f", got)
	}
}

func TestPromSinkRecordFleetStats(t *testing.T) {
	sink := newTestSink(t)
	err := sink.RecordFleetStats(model.FleetStats{
		TotalPowerW:         14720,
		RenewablePercentage: 75,
		AvgTemperatureC:     34,
		ActiveSessions:      2,
		AvailableUnits:      1,
		ChargingUnits:       2,
		FaultedUnits:        0,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	expected := `
# HELP evse_fleet_power_watts Total fleet charging power
# TYPE evse_fleet_power_watts gauge
evse_fleet_power_watts 14720
`
	if err := testutil.CollectAndCompare(sink.fleetPower, strings.NewReader(expected)); err != nil {
		t.Errorf("fleet power: %v", err)
	}
	if got := testutil.ToFloat64(sink.unitsByState.WithLabelValues("charging")); got != 2 {
		t.Errorf("charging units: got %.0f", got)
	}
	if got := testutil.ToFloat64(sink.sessions); got != 2 {
		t.Errorf("active sessions: got %.0f", got)
	}
}

func TestPromSinkRecordSessionEnd(t *testing.T) {
	sink := newTestSink(t)
	rec := model.FinalizedSession{
		SessionID: "sess_1", UnitID: "evse_unit_01",
		RenewableKWh: 3, UtilityKWh: 1, Reason: model.ReasonComplete,
	}
	if err := sink.RecordSessionEnd(rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := sink.RecordSessionEnd(rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(sink.finalized.WithLabelValues("complete")); got != 2 {
		t.Errorf("finalized counter: got %.0f", got)
	}
	if got := testutil.ToFloat64(sink.energy.WithLabelValues("renewable")); got != 6 {
		t.Errorf("renewable energy counter: got %.1f", got)
	}
	if got := testutil.ToFloat64(sink.energy.WithLabelValues("utility")); got != 2 {
		t.Errorf("utility energy counter: got %.1f", got)
	}
}

func TestMultiSinkFansOut(t *testing.T) {
	a := newTestSink(t)
	b := newTestSink(t)
	multi := NewMultiSink(a, b)
	if err := multi.RecordFleetStats(model.FleetStats{TotalPowerW: 100}); err != nil {
		t.Fatalf("record: %v", err)
	}
	for _, s := range []*PromSink{a, b} {
		if got := testutil.ToFloat64(s.fleetPower); got != 100 {
			t.Errorf("sink missed the record: got %.0f", got)
		}
	}
}

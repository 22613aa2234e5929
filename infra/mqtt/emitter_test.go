package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/kilianp07/solarfleet/core/model"
	"github.com/kilianp07/solarfleet/core/sim"
	"github.com/kilianp07/solarfleet/infra/logger"
)

func TestTelemetryTopic(t *testing.T) {
	if got := TelemetryTopic("evse_unit_01"); got != "evse/evse_unit_01/telemetry" {
		t.Errorf("topic: got %s", got)
	}
}

func TestEmitterPublishesSnapshot(t *testing.T) {
	pub := NewMockPublisher()
	emitter := NewEmitter(pub, 1, logger.NopLogger{})

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	snap := sim.FleetSnapshot{
		Telemetry: []model.Telemetry{
			{Timestamp: now, UnitID: "evse_unit_01", PowerW: 7360, Status: model.StatusCharging, Source: model.SourceRenewable},
			{Timestamp: now, UnitID: "evse_unit_02", Status: model.StatusAvailable},
		},
		Stats: model.FleetStats{TotalPowerW: 7360, LastUpdated: now},
	}

	ch := make(chan sim.FleetSnapshot, 1)
	ch <- snap
	close(ch)
	emitter.Run(context.Background(), ch)

	msgs := pub.Published("evse/evse_unit_01/telemetry")
	if len(msgs) != 1 {
		t.Fatalf("expected 1 telemetry message, got %d", len(msgs))
	}
	var tel model.Telemetry
	if err := json.Unmarshal(msgs[0], &tel); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tel.UnitID != "evse_unit_01" || tel.Status != model.StatusCharging || tel.Source != model.SourceRenewable {
		t.Errorf("telemetry payload wrong: %+v", tel)
	}

	if len(pub.Published("evse/evse_unit_02/telemetry")) != 1 {
		t.Error("second unit not published")
	}

	stats := pub.Published("evse/fleet/stats")
	if len(stats) != 1 {
		t.Fatalf("expected 1 stats message, got %d", len(stats))
	}
	var fs model.FleetStats
	if err := json.Unmarshal(stats[0], &fs); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if fs.TotalPowerW != 7360 {
		t.Errorf("stats payload wrong: %+v", fs)
	}
}

func TestEmitterStopsOnContextCancel(t *testing.T) {
	pub := NewMockPublisher()
	emitter := NewEmitter(pub, 1, logger.NopLogger{})
	ch := make(chan sim.FleetSnapshot)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		emitter.Run(ctx, ch)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("emitter did not stop on cancel")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Enabled: true}
	if err := cfg.Validate(); err == nil {
		t.Error("enabled without broker should fail")
	}
	cfg.Broker = "tcp://localhost:1883"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
	disabled := Config{}
	if err := disabled.Validate(); err != nil {
		t.Errorf("disabled config should not require a broker: %v", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if cfg.ClientID == "" {
		t.Error("client id default missing")
	}
	if cfg.TelemetryQoS != 1 {
		t.Errorf("telemetry QoS default: got %d", cfg.TelemetryQoS)
	}
}

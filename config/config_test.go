package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/solarfleet/core/model"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `simulation:
  tick_seconds: 2
  units:
    - id: "evse_unit_01"
      class: 2
    - id: "evse_unit_02"
      class: 3
  tariff:
    renewable_rate_per_kwh: 10
    utility_rate_per_kwh: 50
  fault:
    probability_per_tick: 0
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  use_tls: false
metrics:
  prometheus_enabled: true
  prometheus_port: "9091"
session_log:
  path: "sessions.log"
api:
  enabled: true
  addr: ":8081"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"tick_seconds", cfg.Simulation.TickSeconds, 2},
		{"units", len(cfg.Simulation.Units), 2},
		{"unit_class", cfg.Simulation.Units[1].Class, model.Level3},
		{"renewable_rate", cfg.Simulation.Tariff.RenewableRatePerKWh, 10.0},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"telemetry_qos_default", cfg.MQTT.TelemetryQoS, byte(1)},
		{"prometheus_port", cfg.Metrics.PrometheusPort, "9091"},
		{"session_path", cfg.SessionLog.Path, "sessions.log"},
		{"api_addr", cfg.API.Addr, ":8081"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("api:\n  enabled: false\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Simulation.TickSeconds != 5 {
		t.Errorf("tick default mismatch: %d", cfg.Simulation.TickSeconds)
	}
	if len(cfg.Simulation.Units) != 3 {
		t.Errorf("demo fleet expected, got %d units", len(cfg.Simulation.Units))
	}
	if cfg.API.Addr != ":8080" {
		t.Errorf("api addr default mismatch: %s", cfg.API.Addr)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

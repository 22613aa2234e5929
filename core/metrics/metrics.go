// Package metrics defines the observability sink contracts for the
// simulation pipeline. Implementations live in infra/metrics.
package metrics

import "github.com/kilianp07/solarfleet/core/model"

// Sink records telemetry batches, fleet aggregates and finalized sessions.
type Sink interface {
	RecordTelemetry(batch []model.Telemetry) error
	RecordFleetStats(stats model.FleetStats) error
	RecordSessionEnd(rec model.FinalizedSession) error
}

// NopSink ignores all records.
type NopSink struct{}

func (NopSink) RecordTelemetry([]model.Telemetry) error       { return nil }
func (NopSink) RecordFleetStats(model.FleetStats) error       { return nil }
func (NopSink) RecordSessionEnd(model.FinalizedSession) error { return nil }

package metrics

import (
	"errors"

	coremetrics "github.com/kilianp07/solarfleet/core/metrics"
	"github.com/kilianp07/solarfleet/core/model"
)

// MultiSink fans records out to several sinks and joins their errors.
type MultiSink struct {
	sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink over the given sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordTelemetry(batch []model.Telemetry) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordTelemetry(batch); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordFleetStats(stats model.FleetStats) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordFleetStats(stats); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordSessionEnd(rec model.FinalizedSession) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordSessionEnd(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kilianp07/solarfleet/core/logger"
	"github.com/kilianp07/solarfleet/core/sim"
)

const (
	topicPrefix     = "evse"
	fleetStatsTopic = topicPrefix + "/fleet/stats"
)

// TelemetryTopic returns the per-unit telemetry topic, matching the
// evse/<unit_id>/telemetry shape consumed by the dashboard backend.
func TelemetryTopic(unitID string) string {
	return fmt.Sprintf("%s/%s/telemetry", topicPrefix, unitID)
}

// Emitter forwards fleet snapshots from the distribution hub to MQTT. It is
// a hub subscriber like any other: if it falls behind the engine it only
// ever skips to the latest snapshot.
type Emitter struct {
	pub Publisher
	qos byte
	log logger.Logger
}

// NewEmitter creates an Emitter publishing at the given QoS.
func NewEmitter(pub Publisher, qos byte, log logger.Logger) *Emitter {
	return &Emitter{pub: pub, qos: qos, log: log}
}

// Run consumes snapshots until the channel closes or the context is
// cancelled. The channel close on engine shutdown flushes naturally: the
// final snapshot is delivered before the close is observed.
func (e *Emitter) Run(ctx context.Context, snapshots <-chan sim.FleetSnapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			e.publish(snap)
		}
	}
}

func (e *Emitter) publish(snap sim.FleetSnapshot) {
	for _, t := range snap.Telemetry {
		payload, err := json.Marshal(t)
		if err != nil {
			e.log.Errorf("marshal telemetry %s: %v", t.UnitID, err)
			continue
		}
		if err := e.pub.Publish(TelemetryTopic(t.UnitID), e.qos, false, payload); err != nil {
			e.log.Errorf("publish telemetry %s: %v", t.UnitID, err)
		}
	}
	payload, err := json.Marshal(snap.Stats)
	if err != nil {
		e.log.Errorf("marshal fleet stats: %v", err)
		return
	}
	if err := e.pub.Publish(fleetStatsTopic, e.qos, false, payload); err != nil {
		e.log.Errorf("publish fleet stats: %v", err)
	}
}

// Package scenarios replays scripted fleet days against the engine with a
// fake clock, for QA presets and regression runs.
package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/solarfleet/core/model"
)

type UnitDef struct {
	ID    string `yaml:"id"`
	Class int    `yaml:"class"`
}

func (u UnitDef) ToModel() model.UnitConfig {
	return model.UnitConfig{ID: u.ID, Class: model.ConnectorClass(u.Class)}
}

// StartDef schedules a session start before the given tick executes.
type StartDef struct {
	Tick      int     `yaml:"tick"`
	UnitID    string  `yaml:"unit_id"`
	TargetKWh float64 `yaml:"target_kwh"`
	Class     int     `yaml:"class,omitempty"`
}

// StopDef schedules a session stop before the given tick executes.
type StopDef struct {
	Tick   int    `yaml:"tick"`
	UnitID string `yaml:"unit_id"`
}

type FaultDef struct {
	ProbabilityPerTick float64 `yaml:"probability_per_tick"`
	Seed               int64   `yaml:"seed"`
}

type Expected struct {
	Completed       int      `yaml:"completed"`
	Stopped         int      `yaml:"stopped,omitempty"`
	Faulted         int      `yaml:"faulted,omitempty"`
	MinRenewablePct *float64 `yaml:"min_renewable_pct,omitempty"`
	MaxRenewablePct *float64 `yaml:"max_renewable_pct,omitempty"`
}

type Scenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	StartTime   time.Time  `yaml:"start_time"`
	TickSeconds int        `yaml:"tick_seconds"`
	Ticks       int        `yaml:"ticks"`
	Units       []UnitDef  `yaml:"units"`
	Starts      []StartDef `yaml:"starts"`
	Stops       []StopDef  `yaml:"stops,omitempty"`
	Fault       *FaultDef  `yaml:"fault,omitempty"`
	Expected    Expected   `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Ticks <= 0 {
		return nil, fmt.Errorf("scenario %s: ticks must be positive", sc.Name)
	}
	if len(sc.Units) == 0 {
		return nil, fmt.Errorf("scenario %s: at least one unit is required", sc.Name)
	}
	return &sc, nil
}

package sim

import (
	"fmt"
	"time"

	"github.com/kilianp07/solarfleet/core/model"
)

// Config defines the simulation engine parameters.
type Config struct {
	// TickSeconds is the cadence of the simulation clock.
	TickSeconds int `json:"tick_seconds" yaml:"tick_seconds"`
	// Units lists the charging units managed by the engine.
	Units []model.UnitConfig `json:"units" yaml:"units"`
	// Tariff holds the fixed billing rates per energy origin.
	Tariff model.Tariff `json:"tariff" yaml:"tariff"`
	// Policy parameterizes energy source selection and peak throttling.
	Policy PolicyConfig `json:"policy" yaml:"policy"`
	// Fault parameterizes random fault injection.
	Fault FaultConfig `json:"fault" yaml:"fault"`
	// MaxSessionHours caps the admissible session target relative to the
	// unit's rated power.
	MaxSessionHours float64 `json:"max_session_hours" yaml:"max_session_hours"`
	// WarmupSeconds is the preparing-phase current ramp window.
	WarmupSeconds int `json:"warmup_seconds" yaml:"warmup_seconds"`
	// RampDownSeconds is the finishing-phase current ramp window.
	RampDownSeconds int `json:"ramp_down_seconds" yaml:"ramp_down_seconds"`
	// TargetToleranceKWh avoids oscillation at the target boundary.
	TargetToleranceKWh float64 `json:"target_tolerance_kwh" yaml:"target_tolerance_kwh"`
	// AmbientTemperatureC is the idle equilibrium temperature of a unit.
	AmbientTemperatureC float64 `json:"ambient_temperature_c" yaml:"ambient_temperature_c"`
}

// SetDefaults applies sane defaults, including a three-unit demo fleet when
// no units are configured.
func (c *Config) SetDefaults() {
	if c.TickSeconds == 0 {
		c.TickSeconds = 5
	}
	if len(c.Units) == 0 {
		c.Units = []model.UnitConfig{
			{ID: "evse_unit_01", Class: model.Level2},
			{ID: "evse_unit_02", Class: model.Level2},
			{ID: "evse_unit_03", Class: model.Level3},
		}
	}
	if c.Tariff.RenewableRatePerKWh == 0 && c.Tariff.UtilityRatePerKWh == 0 {
		c.Tariff = model.Tariff{RenewableRatePerKWh: 10, UtilityRatePerKWh: 50}
	}
	c.Policy.SetDefaults()
	c.Fault.SetDefaults()
	if c.MaxSessionHours == 0 {
		c.MaxSessionHours = 12
	}
	if c.WarmupSeconds == 0 {
		c.WarmupSeconds = 10
	}
	if c.RampDownSeconds == 0 {
		c.RampDownSeconds = 10
	}
	if c.TargetToleranceKWh == 0 {
		c.TargetToleranceKWh = 0.05
	}
	if c.AmbientTemperatureC == 0 {
		c.AmbientTemperatureC = 22
	}
}

// Validate checks mandatory fields and delegates to sub-configs.
func (c Config) Validate() error {
	if c.TickSeconds <= 0 {
		return fmt.Errorf("tick_seconds must be positive")
	}
	if len(c.Units) == 0 {
		return fmt.Errorf("at least one unit is required")
	}
	seen := make(map[string]struct{}, len(c.Units))
	for _, u := range c.Units {
		if err := u.Validate(); err != nil {
			return err
		}
		if _, dup := seen[u.ID]; dup {
			return fmt.Errorf("duplicate unit id %s", u.ID)
		}
		seen[u.ID] = struct{}{}
	}
	if err := c.Tariff.Validate(); err != nil {
		return err
	}
	if err := c.Policy.Validate(); err != nil {
		return err
	}
	if err := c.Fault.Validate(); err != nil {
		return err
	}
	if c.MaxSessionHours <= 0 {
		return fmt.Errorf("max_session_hours must be positive")
	}
	return nil
}

// Tick returns the tick cadence as a duration.
func (c Config) Tick() time.Duration {
	return time.Duration(c.TickSeconds) * time.Second
}

// settings captures the per-unit knobs derived from the engine config.
type settings struct {
	tariff       model.Tariff
	policy       PolicyConfig
	warmup       time.Duration
	rampDown     time.Duration
	maxHours     float64
	toleranceKWh float64
	ambientC     float64
}

func (c Config) settings() settings {
	return settings{
		tariff:       c.Tariff,
		policy:       c.Policy,
		warmup:       time.Duration(c.WarmupSeconds) * time.Second,
		rampDown:     time.Duration(c.RampDownSeconds) * time.Second,
		maxHours:     c.MaxSessionHours,
		toleranceKWh: c.TargetToleranceKWh,
		ambientC:     c.AmbientTemperatureC,
	}
}

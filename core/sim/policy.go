package sim

import (
	"fmt"
	"time"

	"github.com/kilianp07/solarfleet/core/model"
)

// PolicyConfig parameterizes the energy source policy. Renewable
// availability follows a bell-shaped window between DawnHour and DuskHour,
// rising linearly to 1.0 at the window midpoint and falling back to zero.
// The policy is fully deterministic: identical inputs always yield identical
// outputs.
type PolicyConfig struct {
	// DawnHour and DuskHour bound the renewable production window.
	DawnHour int `json:"dawn_hour" yaml:"dawn_hour"`
	DuskHour int `json:"dusk_hour" yaml:"dusk_hour"`
	// RenewableThreshold is the minimum availability fraction required to
	// serve a unit from the renewable source.
	RenewableThreshold float64 `json:"renewable_threshold" yaml:"renewable_threshold"`
	// PeakStartHour and PeakEndHour bound the evening demand-management
	// window during which the derate may apply.
	PeakStartHour int `json:"peak_start_hour" yaml:"peak_start_hour"`
	PeakEndHour   int `json:"peak_end_hour" yaml:"peak_end_hour"`
	// PeakLoadThresholdW is the fleet load above which throttling kicks in.
	PeakLoadThresholdW float64 `json:"peak_load_threshold_w" yaml:"peak_load_threshold_w"`
	// PeakDerate is the multiplicative power reduction applied while
	// throttled. Must be in (0,1].
	PeakDerate float64 `json:"peak_derate" yaml:"peak_derate"`
}

// SetDefaults applies the production window and throttling defaults.
func (c *PolicyConfig) SetDefaults() {
	if c.DawnHour == 0 && c.DuskHour == 0 {
		c.DawnHour, c.DuskHour = 6, 18
	}
	if c.RenewableThreshold == 0 {
		c.RenewableThreshold = 0.4
	}
	if c.PeakStartHour == 0 && c.PeakEndHour == 0 {
		c.PeakStartHour, c.PeakEndHour = 17, 20
	}
	if c.PeakLoadThresholdW == 0 {
		c.PeakLoadThresholdW = 20000
	}
	if c.PeakDerate == 0 {
		c.PeakDerate = 0.7
	}
}

// Validate checks window ordering and factor ranges.
func (c PolicyConfig) Validate() error {
	if c.DawnHour < 0 || c.DuskHour > 24 || c.DawnHour >= c.DuskHour {
		return fmt.Errorf("invalid renewable window [%d,%d]", c.DawnHour, c.DuskHour)
	}
	if c.RenewableThreshold <= 0 || c.RenewableThreshold > 1 {
		return fmt.Errorf("renewable_threshold must be in (0,1]")
	}
	if c.PeakStartHour < 0 || c.PeakEndHour > 24 || c.PeakStartHour >= c.PeakEndHour {
		return fmt.Errorf("invalid peak window [%d,%d]", c.PeakStartHour, c.PeakEndHour)
	}
	if c.PeakDerate <= 0 || c.PeakDerate > 1 {
		return fmt.Errorf("peak_derate must be in (0,1]")
	}
	return nil
}

// RenewableAvailability returns the renewable production fraction [0,1] for
// the given instant.
func (c PolicyConfig) RenewableAvailability(at time.Time) float64 {
	h := float64(at.Hour()) + float64(at.Minute())/60
	dawn, dusk := float64(c.DawnHour), float64(c.DuskHour)
	if h < dawn || h > dusk {
		return 0
	}
	mid := (dawn + dusk) / 2
	if h <= mid {
		return (h - dawn) / (mid - dawn)
	}
	return (dusk - h) / (dusk - mid)
}

// SelectSource decides the energy source and the derate factor for one unit
// at the given instant under the given fleet-wide load.
func (c PolicyConfig) SelectSource(at time.Time, fleetLoadW float64) (model.Source, float64) {
	src := model.SourceUtility
	if c.RenewableAvailability(at) >= c.RenewableThreshold {
		src = model.SourceRenewable
	}
	derate := 1.0
	h := at.Hour()
	if h >= c.PeakStartHour && h < c.PeakEndHour && fleetLoadW > c.PeakLoadThresholdW {
		derate = c.PeakDerate
	}
	return src, derate
}

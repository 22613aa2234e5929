package sim

// Charging power follows the usual CC/CV-like profile: full power until 80%
// of the target energy has been delivered, then a linear taper down to 20%
// of nominal at 100%.
const (
	taperStartFraction = 0.8
	taperFloorFactor   = 0.2
)

// ChargePower returns the instantaneous charging power in watts for the
// given elapsed fraction of the session target. Fractions above 1 should not
// occur given the >=-target transition rule and are clamped to zero power.
func ChargePower(elapsedFraction, nominalW float64) float64 {
	if nominalW <= 0 {
		return 0
	}
	if elapsedFraction > 1 {
		return 0
	}
	if elapsedFraction < 0 {
		elapsedFraction = 0
	}
	if elapsedFraction < taperStartFraction {
		return nominalW
	}
	factor := 1 - 4*(elapsedFraction-taperStartFraction)
	if factor < taperFloorFactor {
		factor = taperFloorFactor
	}
	return nominalW * factor
}

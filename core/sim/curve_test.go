package sim

import (
	"math"
	"testing"
)

func TestChargePowerFlatRegion(t *testing.T) {
	nominal := 7360.0
	for _, f := range []float64{0, 0.1, 0.5, 0.79} {
		if got := ChargePower(f, nominal); got != nominal {
			t.Errorf("fraction %.2f: expected full power, got %.1f", f, got)
		}
	}
}

func TestChargePowerTaper(t *testing.T) {
	nominal := 7360.0
	cases := []struct {
		fraction float64
		factor   float64
	}{
		{0.8, 1.0},
		{0.9, 0.6},
		{0.95, 0.4},
		{1.0, 0.2},
	}
	for _, c := range cases {
		want := nominal * c.factor
		if got := ChargePower(c.fraction, nominal); math.Abs(got-want) > 1e-9 {
			t.Errorf("fraction %.2f: expected %.1f, got %.1f", c.fraction, want, got)
		}
	}
}

func TestChargePowerBounds(t *testing.T) {
	if got := ChargePower(1.01, 7360); got != 0 {
		t.Errorf("beyond target: expected zero power, got %.1f", got)
	}
	if got := ChargePower(-0.5, 7360); got != 7360 {
		t.Errorf("negative fraction: expected full power, got %.1f", got)
	}
	if got := ChargePower(0.5, 0); got != 0 {
		t.Errorf("zero nominal: expected zero power, got %.1f", got)
	}
}

func TestChargePowerMonotoneNonIncreasing(t *testing.T) {
	prev := math.Inf(1)
	for f := 0.0; f <= 1.0; f += 0.01 {
		got := ChargePower(f, 7360)
		if got > prev {
			t.Fatalf("power increased at fraction %.2f: %.1f > %.1f", f, got, prev)
		}
		prev = got
	}
}

package sim

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/kilianp07/solarfleet/core/model"
)

// FaultModel decides whether a unit develops an equipment fault on the
// current tick and how long it takes to recover. Implementations draw from
// their own random source so that production randomness and test determinism
// share one interface.
type FaultModel interface {
	// ShouldFault reports whether a fault begins this tick. It is only
	// consulted while the unit is in an active (session-bound) state.
	ShouldFault(status model.Status) bool
	// RecoveryDelay returns the downtime drawn for a fault that just began.
	RecoveryDelay() time.Duration
}

// FaultConfig parameterizes the random fault model.
type FaultConfig struct {
	// ProbabilityPerTick is the chance of a fault starting on any active
	// tick.
	ProbabilityPerTick float64 `json:"probability_per_tick" yaml:"probability_per_tick"`
	// MinRecoverySeconds and MaxRecoverySeconds bound the recovery delay.
	MinRecoverySeconds int `json:"min_recovery_seconds" yaml:"min_recovery_seconds"`
	MaxRecoverySeconds int `json:"max_recovery_seconds" yaml:"max_recovery_seconds"`
	// Seed fixes the random source; zero seeds from the wall clock.
	Seed int64 `json:"seed" yaml:"seed"`
}

// SetDefaults applies the production fault rates.
func (c *FaultConfig) SetDefaults() {
	if c.ProbabilityPerTick == 0 {
		c.ProbabilityPerTick = 0.005
	}
	if c.MinRecoverySeconds == 0 && c.MaxRecoverySeconds == 0 {
		c.MinRecoverySeconds, c.MaxRecoverySeconds = 30, 120
	}
}

// Validate checks probability and delay ranges.
func (c FaultConfig) Validate() error {
	if c.ProbabilityPerTick < 0 || c.ProbabilityPerTick >= 1 {
		return fmt.Errorf("probability_per_tick must be in [0,1)")
	}
	if c.MinRecoverySeconds < 0 || c.MaxRecoverySeconds < c.MinRecoverySeconds {
		return fmt.Errorf("invalid recovery delay range [%d,%d]", c.MinRecoverySeconds, c.MaxRecoverySeconds)
	}
	return nil
}

// RandomFaultModel injects faults with a fixed per-tick probability and
// draws recovery delays uniformly from the configured range.
type RandomFaultModel struct {
	mu   sync.Mutex
	rng  *rand.Rand
	cfg  FaultConfig
	span time.Duration
}

// NewRandomFaultModel creates a seeded fault model. A zero seed falls back
// to the wall clock, which is the production behaviour.
func NewRandomFaultModel(cfg FaultConfig) *RandomFaultModel {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomFaultModel{
		rng:  rand.New(rand.NewSource(seed)),
		cfg:  cfg,
		span: time.Duration(cfg.MaxRecoverySeconds-cfg.MinRecoverySeconds) * time.Second,
	}
}

func (m *RandomFaultModel) ShouldFault(status model.Status) bool {
	if !status.Active() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Float64() < m.cfg.ProbabilityPerTick
}

func (m *RandomFaultModel) RecoveryDelay() time.Duration {
	min := time.Duration(m.cfg.MinRecoverySeconds) * time.Second
	if m.span <= 0 {
		return min
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return min + time.Duration(m.rng.Int63n(int64(m.span)))
}

// NopFaultModel never faults. Used by scenario presets and tests that need a
// fault-free run.
type NopFaultModel struct{}

func (NopFaultModel) ShouldFault(model.Status) bool { return false }
func (NopFaultModel) RecoveryDelay() time.Duration  { return 0 }

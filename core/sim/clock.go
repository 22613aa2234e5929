package sim

import (
	"sync"
	"time"
)

// Clock is the shared time reference driving the simulation. Production code
// uses the real clock; tests inject a fake one to pin the wall-clock hour.
type Clock interface {
	Now() time.Time
}

// NewRealClock returns a Clock backed by time.Now.
func NewRealClock() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// FakeClock is a manually advanced Clock for tests and scenario runs.
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewFakeClock creates a FakeClock starting at t.
func NewFakeClock(t time.Time) *FakeClock { return &FakeClock{t: t} }

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward by d and returns the new time.
func (c *FakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	return c.t
}

package policytest

import "time"

// FakeSleeper records every requested sleep instead of actually blocking, so
// tests run at full speed while still observing delay behavior.
type FakeSleeper struct {
	Sleeps []time.Duration
}

// Sleep records d without blocking.
func (s *FakeSleeper) Sleep(d time.Duration) {
	s.Sleeps = append(s.Sleeps, d)
}

// FakeClock is a settable Clock for deterministic circuit-breaker and
// rate-limiter tests, modeled on the TestClock fixture used throughout the
// reference implementation's own test suite.
type FakeClock struct {
	Current time.Time
}

// Now returns the clock's current, caller-controlled time.
func (c *FakeClock) Now() time.Time { return c.Current }

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) { c.Current = c.Current.Add(d) }

// Package testutils provides in-module test helpers.
package testutils

import (
	"sort"
	"sync"
	"time"

	"github.com/espalier-dev/espalier/pkg/ports"
)

// ManualClock implements ports.Clock with explicitly advanced time, making
// debounce and deferred-removal tests deterministic.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

// NewManualClock creates a clock starting at an arbitrary fixed instant.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the clock's current instant.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc registers fn to run once the clock has been advanced past d.
func (c *ManualClock) AfterFunc(d time.Duration, fn func()) ports.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward, firing due timers in deadline order.
// Callbacks run synchronously on the caller's goroutine, outside the clock
// lock, so they may schedule new timers.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	deadline := c.now
	c.mu.Unlock()

	for {
		t := c.popDue(deadline)
		if t == nil {
			return
		}
		t.fn()
	}
}

func (c *ManualClock) popDue(deadline time.Time) *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	sort.SliceStable(c.timers, func(i, j int) bool {
		return c.timers[i].at.Before(c.timers[j].at)
	})
	for i, t := range c.timers {
		if t.stopped || t.at.After(deadline) {
			continue
		}
		c.timers = append(c.timers[:i], c.timers[i+1:]...)
		return t
	}
	return nil
}

type manualTimer struct {
	clock   *ManualClock
	at      time.Time
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Package generator provides the identifier and time sources of the domain.
package generator

import (
	"sync"
	"time"

	"etwin/internal/domain/service"

	"github.com/google/uuid"
)

type uuidV4Generator struct{}

// NewUUIDGenerator returns a generator of random (version 4) UUIDs.
func NewUUIDGenerator() service.UUIDGenerator {
	return uuidV4Generator{}
}

func (uuidV4Generator) Next() uuid.UUID {
	return uuid.New()
}

type systemClock struct{}

// NewSystemClock returns the wall clock, in UTC.
func NewSystemClock() service.Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// VirtualClock is a manually driven clock.
type VirtualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewVirtualClock creates a clock frozen at start.
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{now: start}
}

func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Advance moves the clock forward. Negative durations are ignored.
func (c *VirtualClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

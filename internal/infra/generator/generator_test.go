package generator

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUUIDGenerator_Next(t *testing.T) {
	gen := NewUUIDGenerator()

	first, second := gen.Next(), gen.Next()
	assert.NotEqual(t, first, second)
	assert.Equal(t, uuid.Version(4), first.Version())
}

func TestVirtualClock_Advance(t *testing.T) {
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewVirtualClock(start)

	assert.Equal(t, start, clock.Now())

	clock.Advance(time.Minute)
	assert.Equal(t, start.Add(time.Minute), clock.Now())

	clock.Advance(-time.Hour)
	assert.Equal(t, start.Add(time.Minute), clock.Now())
}

func TestSystemClock_UTC(t *testing.T) {
	assert.Equal(t, time.UTC, NewSystemClock().Now().Location())
}

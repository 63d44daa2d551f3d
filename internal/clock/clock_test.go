package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStubClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 999, time.FixedZone("X", 3600))
	c := NewStubClock(start)

	assert.Equal(t, time.UTC, c.NowUtc().Location())
	assert.Equal(t, 0, c.NowUtc().Nanosecond()%1000)
	assert.True(t, c.NowUtc().Equal(start.Truncate(time.Microsecond)))

	next := c.Advance(time.Minute)
	assert.Equal(t, next, c.NowUtc())
}

func TestRealClockIsUTC(t *testing.T) {
	now := NewRealClock().NowUtc()
	assert.Equal(t, time.UTC, now.Location())
}

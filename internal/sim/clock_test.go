package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClockAccumulatesFraction(t *testing.T) {
	c := NewGameClock(600)

	assert.Zero(t, c.Update(300))
	assert.Equal(t, 1, c.Day)

	assert.Equal(t, 1, c.Update(300))
	assert.Equal(t, 2, c.Day)
	assert.Zero(t, c.ElapsedSec)
}

func TestClockBatchesMultipleDays(t *testing.T) {
	c := NewGameClock(600)

	// A long stall: 2.5 days of real time in one update.
	days := c.Update(1500)
	assert.Equal(t, 2, days)
	assert.Equal(t, 3, c.Day)
	assert.InDelta(t, 300.0, c.ElapsedSec, 0.001)
}

func TestClockIgnoresNonPositiveDt(t *testing.T) {
	c := NewGameClock(600)
	assert.Zero(t, c.Update(0))
	assert.Zero(t, c.Update(-5))
	assert.Zero(t, c.ElapsedSec)
}

func TestTimeOfDayStartsAtEight(t *testing.T) {
	c := NewGameClock(600)
	assert.Equal(t, "08:00", c.TimeOfDay())

	c.Update(300) // half a day = 12 sim hours
	assert.Equal(t, "20:00", c.TimeOfDay())

	c.Update(250) // 22 of 24 hours in: 8 + 22 = 30 → 06:00
	assert.Equal(t, "06:00", c.TimeOfDay())
}

func TestClockDefaultDayLength(t *testing.T) {
	c := NewGameClock(0)
	assert.Equal(t, DefaultDayLengthSec, c.DayLengthSec)
}

func TestClockPauseFreezesTime(t *testing.T) {
	c := NewGameClock(600)
	c.Paused = true

	assert.Zero(t, c.Update(900))
	assert.Equal(t, 1, c.Day)
	assert.Zero(t, c.ElapsedSec)

	c.Paused = false
	assert.Equal(t, 1, c.Update(600))
}

func TestClockForceNextDay(t *testing.T) {
	c := NewGameClock(600)
	c.Update(450)

	c.ForceNextDay()
	assert.Equal(t, 2, c.Day)
	assert.Zero(t, c.ElapsedSec, "partial day progress should be discarded")
}

// Package sim owns the running game session: the clock that turns real time
// into sim days, the day pipeline that ticks every city market and the NPC
// trade layer, player trading and progression, and the combat lifecycle.
package sim

import "fmt"

// Clock defaults. A sim day passes in ten real minutes and the displayed
// time starts at morning harbor hours.
const (
	DefaultDayLengthSec = 600.0
	clockStartHour      = 8
)

// GameClock accumulates real seconds and converts them into whole sim days.
// Fractional progress carries over, so uneven frame times never lose time.
type GameClock struct {
	DayLengthSec float64
	ElapsedSec   float64 // within the current day
	Day          int     // 1-based
	Paused       bool
}

// NewGameClock creates a clock on day 1. Non-positive day lengths fall back
// to the default.
func NewGameClock(dayLengthSec float64) *GameClock {
	if dayLengthSec <= 0 {
		dayLengthSec = DefaultDayLengthSec
	}
	return &GameClock{DayLengthSec: dayLengthSec, Day: 1}
}

// Update advances the clock by dt real seconds and returns how many day
// boundaries were crossed. A long stall can roll several days at once; the
// caller runs the day pipeline once per returned day.
func (c *GameClock) Update(dt float64) int {
	if c.Paused || dt <= 0 {
		return 0
	}
	c.ElapsedSec += dt

	days := 0
	for c.ElapsedSec >= c.DayLengthSec {
		c.ElapsedSec -= c.DayLengthSec
		c.Day++
		days++
	}
	return days
}

// ForceNextDay jumps straight to the next day boundary, discarding the
// partial progress of the current day. Works while paused.
func (c *GameClock) ForceNextDay() {
	c.ElapsedSec = 0
	c.Day++
}

// DayFraction is progress through the current day in [0, 1).
func (c *GameClock) DayFraction() float64 {
	return c.ElapsedSec / c.DayLengthSec
}

// TimeOfDay renders the current sim time as HH:MM, with each day starting
// at 08:00.
func (c *GameClock) TimeOfDay() string {
	totalMinutes := int(c.DayFraction() * 24 * 60)
	hour := (clockStartHour + totalMinutes/60) % 24
	minute := totalMinutes % 60
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

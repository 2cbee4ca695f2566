package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDifficultyPresets(t *testing.T) {
	cases := []struct {
		difficulty string
		money      int
		lives      int
		eventFreq  float64
		spread     float64
	}{
		{"easy", 1500, 4, 0.8, 0.94},
		{"normal", 1000, 3, 1.0, 1.0},
		{"hard", 700, 2, 1.3, 1.06},
		{"legendary", 400, 1, 1.6, 1.12},
	}
	for _, tc := range cases {
		t.Run(tc.difficulty, func(t *testing.T) {
			cfg := RunConfig{Difficulty: tc.difficulty}
			cfg.Normalize()

			assert.Equal(t, tc.money, cfg.StartingMoney)
			assert.Equal(t, tc.lives, cfg.MasterLives)
			assert.InDelta(t, tc.eventFreq, cfg.EventFreqMult, 0.0001)
			assert.InDelta(t, tc.spread, cfg.PriceSpreadMult, 0.0001)
		})
	}
}

func TestUnknownDifficultyFallsBackToNormal(t *testing.T) {
	cfg := RunConfig{Difficulty: "nightmare"}
	cfg.Normalize()

	assert.Equal(t, "normal", cfg.Difficulty)
	assert.Equal(t, 1000, cfg.StartingMoney)
}

func TestExplicitValuesSurviveNormalize(t *testing.T) {
	cfg := RunConfig{
		Difficulty:    "easy",
		StartingMoney: 50,
		MasterLives:   9,
		EventFreqMult: 2.5,
		Seed:          7,
	}
	cfg.Normalize()

	assert.Equal(t, 50, cfg.StartingMoney)
	assert.Equal(t, 9, cfg.MasterLives)
	assert.InDelta(t, 2.5, cfg.EventFreqMult, 0.0001)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, DefaultDayLengthSec, cfg.DayLengthSec)
	assert.Equal(t, 1, cfg.AutosaveEveryDays)
}

package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXPNeedCurve(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{1, 100}, {2, 200}, {3, 350}, {4, 550}, {5, 800},
		{6, 1100}, {7, 1450}, {8, 1850}, {9, 2300},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, XPNeedForLevel(tt.level), "level %d", tt.level)
	}
	assert.Zero(t, XPNeedForLevel(MaxLevel), "no need past max level")
	assert.Zero(t, XPNeedForLevel(0))
}

func TestLevelForXP(t *testing.T) {
	level, cur, need := LevelForXP(0)
	assert.Equal(t, 1, level)
	assert.Zero(t, cur)
	assert.Equal(t, 100, need)

	level, cur, need = LevelForXP(99)
	assert.Equal(t, 1, level)
	assert.Equal(t, 99, cur)

	level, cur, _ = LevelForXP(100)
	assert.Equal(t, 2, level)
	assert.Zero(t, cur)

	level, cur, need = LevelForXP(150)
	assert.Equal(t, 2, level)
	assert.Equal(t, 50, cur)
	assert.Equal(t, 200, need)
}

func TestMaxLevelProgressReadsFull(t *testing.T) {
	level, cur, need := LevelForXP(TotalXPCap())
	assert.Equal(t, MaxLevel, level)
	assert.Equal(t, need, cur, "progress bar at max level must read full")
}

func TestCapXP(t *testing.T) {
	cap := TotalXPCap()
	assert.Equal(t, cap, CapXP(cap+99999))
	assert.Equal(t, 500, CapXP(500))
	assert.Zero(t, CapXP(-10))
}

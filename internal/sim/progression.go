package sim

// MaxLevel caps captain progression. XP keeps accumulating up to the total
// needed to finish the last level and no further.
const MaxLevel = 10

// XPNeedForLevel is the XP required to advance from level to level+1. The
// curve is quadratic so late levels take meaningfully longer.
func XPNeedForLevel(level int) int {
	if level < 1 || level >= MaxLevel {
		return 0
	}
	k := level - 1
	return 100 + 75*k + 25*k*k
}

// TotalXPCap is the lifetime XP at which a captain reaches max level.
func TotalXPCap() int {
	total := 0
	for l := 1; l < MaxLevel; l++ {
		total += XPNeedForLevel(l)
	}
	return total
}

// LevelForXP resolves total accumulated XP into (level, progress into the
// current level, need for the next). At max level progress equals need, so
// progress bars render full.
func LevelForXP(xp int) (level, cur, need int) {
	if xp < 0 {
		xp = 0
	}
	level = 1
	for level < MaxLevel {
		n := XPNeedForLevel(level)
		if xp < n {
			return level, xp, n
		}
		xp -= n
		level++
	}
	last := XPNeedForLevel(MaxLevel - 1)
	return MaxLevel, last, last
}

// CapXP clamps lifetime XP to the progression ceiling.
func CapXP(xp int) int {
	if xp < 0 {
		return 0
	}
	if cap := TotalXPCap(); xp > cap {
		return cap
	}
	return xp
}

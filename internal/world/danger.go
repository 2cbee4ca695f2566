package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// DangerField maps sea positions to encounter danger using layered simplex
// noise, so pirate waters form coherent regions instead of uniform risk.
// The field is deterministic from the seed and regenerated on load, never
// persisted.
type DangerField struct {
	noise opensimplex.Noise
	scale float64
}

// Encounter zone thresholds on the normalized danger value.
const (
	dangerZoneEdge = 0.60 // below this the sea is calm
	dangerZoneHot  = 0.80 // above this charge rate doubles
)

// NewDangerField builds the field for a map seed.
func NewDangerField(seed int64) *DangerField {
	return &DangerField{
		noise: opensimplex.NewNormalized(seed),
		scale: 1.0 / 220.0, // region size in map pixels
	}
}

// DangerAt returns the danger in [0, 1] at a map position. Two octaves:
// broad regions with finer local variation.
func (f *DangerField) DangerAt(pos Vec2) float64 {
	x, y := pos.X*f.scale, pos.Y*f.scale
	v := f.noise.Eval2(x, y)*0.7 + f.noise.Eval2(x*2.7, y*2.7)*0.3
	return clamp01(v)
}

// InZone reports whether a position lies inside an encounter zone.
func (f *DangerField) InZone(pos Vec2) bool {
	return f.DangerAt(pos) >= dangerZoneEdge
}

// EncounterMeter charges toward a guaranteed encounter while the ship sails
// dangerous water and decays in calm water. The meter value persists in
// saves; when it reaches 1.0 the caller triggers an encounter and resets it.
type EncounterMeter struct {
	Value       float64 // 0..1
	CooldownSec float64 // no charging while > 0
}

const (
	meterChargePerSec = 0.035
	meterDecayPerSec  = 0.05
	meterCooldownSec  = 6.0
)

// Update advances the meter for dt seconds of sailing at pos. Returns true
// when an encounter fires; the meter is then reset and put on cooldown.
func (em *EncounterMeter) Update(f *DangerField, pos Vec2, dt float64) bool {
	if em.CooldownSec > 0 {
		em.CooldownSec = math.Max(0, em.CooldownSec-dt)
		return false
	}

	danger := f.DangerAt(pos)
	if danger < dangerZoneEdge {
		em.Value = math.Max(0, em.Value-meterDecayPerSec*dt)
		return false
	}

	rate := meterChargePerSec
	if danger >= dangerZoneHot {
		rate *= 2
	}
	em.Value = math.Min(1.0, em.Value+rate*dt)

	if em.Value >= 1.0 {
		em.Value = 0
		em.CooldownSec = meterCooldownSec
		return true
	}
	return false
}

// Clamp normalizes a loaded meter value.
func (em *EncounterMeter) Clamp() {
	em.Value = clamp01(em.Value)
	if em.CooldownSec < 0 {
		em.CooldownSec = 0
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

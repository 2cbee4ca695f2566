// Package combat implements the turn-based 1v1 naval combat engine:
// initiative-ordered rounds, stances, morale tiers, an ability registry
// with per-side cooldowns, and reward computation. Presentation observes
// intermediate effects only by draining the event queue.
package combat

import (
	"github.com/seafall/tradewind/internal/content"
)

// Side identifies a combatant within an engine.
type Side string

const (
	SidePlayer Side = "player"
	SideEnemy  Side = "enemy"
	SideNone   Side = "none"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SidePlayer {
		return SideEnemy
	}
	return SidePlayer
}

// Stance is the once-per-round combat posture.
type Stance string

const (
	StanceOffensive Stance = "offensive"
	StanceBalanced  Stance = "balanced"
	StanceDefensive Stance = "defensive"
)

// MoraleTier bands morale into behavioral regimes.
type MoraleTier string

const (
	MoraleBonus   MoraleTier = "bonus"   // >= 80
	MoraleNeutral MoraleTier = "neutral" // 40..79
	MoraleMalus   MoraleTier = "malus"   // 20..39
	MoralePanic   MoraleTier = "panic"   // < 20
)

// Combatant is the runtime state of one side for the duration of a combat
// session. Built from content CombatStats at entry; player HP persists back
// to the ship at exit.
type Combatant struct {
	Name string

	HP            int
	HPMax         int
	ArmorPhysical float64 // percent
	ArmorAbyssal  float64 // percent, may exceed 100 or go negative after penetration

	DamageMin      int
	DamageMax      int
	DamageType     content.DamageType
	Penetration    float64 // percent
	CritChance     float64 // 0..1
	CritMultiplier float64

	InitiativeBase float64

	Morale float64 // 0..100
	Stance Stance

	DifficultyTier int
	ThreatLevel    int

	// VulnerableRounds > 0 marks +35% incoming damage (quick repair
	// aftermath). Decremented at round start.
	VulnerableRounds int
}

// NewCombatant builds a combatant from content stats. hp <= 0 starts at
// full health.
func NewCombatant(name string, cs *content.CombatStats, hp int) *Combatant {
	if hp <= 0 || hp > cs.HPMax {
		hp = cs.HPMax
	}
	return &Combatant{
		Name:           name,
		HP:             hp,
		HPMax:          cs.HPMax,
		ArmorPhysical:  cs.ArmorPhysical,
		ArmorAbyssal:   cs.ArmorAbyssal,
		DamageMin:      cs.DamageMin,
		DamageMax:      cs.DamageMax,
		DamageType:     cs.DamageType,
		Penetration:    cs.Penetration,
		CritChance:     cs.CritChance,
		CritMultiplier: cs.CritMultiplier,
		InitiativeBase: cs.InitiativeBase,
		Morale:         70,
		Stance:         StanceBalanced,
		DifficultyTier: cs.DifficultyTier,
		ThreatLevel:    cs.ThreatLevel,
	}
}

// Tier returns the combatant's current morale band.
func (c *Combatant) Tier() MoraleTier {
	switch {
	case c.Morale >= 80:
		return MoraleBonus
	case c.Morale >= 40:
		return MoraleNeutral
	case c.Morale >= 20:
		return MoraleMalus
	default:
		return MoralePanic
	}
}

// HPFraction is current HP as a fraction of max.
func (c *Combatant) HPFraction() float64 {
	if c.HPMax <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.HPMax)
}

// Vulnerable reports whether incoming damage is amplified this round.
func (c *Combatant) Vulnerable() bool { return c.VulnerableRounds > 0 }

// mods is the live modifier set combining stance and morale. Hit is
// additive on hit chance, the rest are multipliers.
type mods struct {
	hit    float64
	damage float64
	repair float64
}

// liveMods resolves the combatant's current modifiers.
func (c *Combatant) liveMods() mods {
	m := mods{damage: 1.0, repair: 1.0}

	switch c.Stance {
	case StanceOffensive:
		m.hit += 0.10
		m.damage *= 1.20
		m.repair *= 0.85
	case StanceDefensive:
		m.hit -= 0.10
		m.damage *= 0.90
		m.repair *= 1.20
	}

	switch c.Tier() {
	case MoraleBonus:
		m.hit += 0.10
	case MoraleMalus:
		m.hit -= 0.15
	case MoralePanic:
		m.hit -= 0.35
	}

	return m
}

// fleeStanceTerm is the stance contribution to flee chance.
func (c *Combatant) fleeStanceTerm() float64 {
	switch c.Stance {
	case StanceDefensive:
		return 0.10
	case StanceOffensive:
		return -0.08
	default:
		return 0
	}
}

// shiftMorale moves morale by delta within [0, 100] and returns the old and
// new tiers so callers can emit transition events.
func (c *Combatant) shiftMorale(delta float64) (from, to MoraleTier) {
	from = c.Tier()
	c.Morale += delta
	if c.Morale < 0 {
		c.Morale = 0
	}
	if c.Morale > 100 {
		c.Morale = 100
	}
	return from, c.Tier()
}

// armorAgainst is the defender's armor value for an incoming damage type.
func (c *Combatant) armorAgainst(dt content.DamageType) float64 {
	if dt == content.DamageAbyssal {
		return c.ArmorAbyssal
	}
	return c.ArmorPhysical
}

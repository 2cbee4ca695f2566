package combat

import (
	"math"
	"math/rand/v2"
)

// Ability ids. Every action a side takes on its turn is an ability; the
// basic attack is just the zero-cooldown "fire" ability.
const (
	AbilityFire        = "fire"
	AbilityRepair      = "repair"
	AbilityFlee        = "flee"
	AbilityQuickRepair = "quick_repair"
)

// Ability is one executable combat action. Execute consumes the acting
// side's turn; it is only called when the cooldown gate has already passed.
type Ability interface {
	ID() string
	Cooldown() int // rounds between uses, 0 = every turn
	// PanicBlocked abilities can fail outright while the actor is panicking.
	PanicBlocked() bool
	Execute(e *Engine, actor, target *Combatant, side Side)
}

// abilityRegistry maps ability ids to implementations. Shared by both
// sides; per-side cooldown state lives on the engine.
var abilityRegistry = map[string]Ability{
	AbilityFire:        fireAbility{},
	AbilityRepair:      repairAbility{},
	AbilityFlee:        fleeAbility{},
	AbilityQuickRepair: quickRepairAbility{},
}

const (
	baseHitChance = 0.85

	// Morale swing per resolved attack.
	moraleDefenderHit  = -4
	moraleDefenderCrit = -8
	moraleAttackerHit  = 2
	moraleAttackerCrit = 4

	counterRepairMult = 0.35
	counterFleeMult   = 0.60

	fleeBase        = 0.20
	fleeMin         = 0.05
	fleeMax         = 0.85
	fleeFailMorale  = -6
	panicFailChance = 0.25

	repairBaseChance  = 0.35
	repairMoraleScale = 0.55
	repairChanceMin   = 0.10
	repairChanceMax   = 0.95
	repairHealFrac    = 0.10
	repairFailMorale  = -3

	quickRepairHealFrac = 0.30
	quickRepairMorale   = -18
	vulnerableMult      = 1.35
)

// fireAbility is the standard attack.
type fireAbility struct{}

func (fireAbility) ID() string         { return AbilityFire }
func (fireAbility) Cooldown() int      { return 0 }
func (fireAbility) PanicBlocked() bool { return false }

func (fireAbility) Execute(e *Engine, actor, target *Combatant, side Side) {
	e.resolveAttack(actor, target, side, 1.0, false)
}

// repairAbility attempts an in-battle hull patch. Repairing exposes the
// crew: the enemy always lands a chip-damage counter shot.
type repairAbility struct{}

func (repairAbility) ID() string         { return AbilityRepair }
func (repairAbility) Cooldown() int      { return 0 }
func (repairAbility) PanicBlocked() bool { return true }

func (repairAbility) Execute(e *Engine, actor, target *Combatant, side Side) {
	m := actor.liveMods()

	chance := repairBaseChance + repairMoraleScale*(actor.Morale/100.0)
	chance = clampF(chance, repairChanceMin, repairChanceMax)

	if e.rng.Float64() < chance {
		heal := int(math.Round(float64(actor.HPMax) * repairHealFrac * m.repair))
		if heal < 1 {
			heal = 1
		}
		actor.HP += heal
		if actor.HP > actor.HPMax {
			actor.HP = actor.HPMax
		}
		e.pushEvent(Event{Type: EventRepair, Side: side, Amount: heal})
	} else {
		e.applyMoraleShift(actor, side, repairFailMorale)
		e.pushEvent(Event{Type: EventRepair, Side: side, Miss: true})
	}

	if target.HP > 0 {
		e.resolveAttack(target, actor, side.Opponent(), counterRepairMult, true)
	}
}

// fleeAbility tries to disengage. Success ends combat without rewards;
// failure draws a heavy counter shot.
type fleeAbility struct{}

func (fleeAbility) ID() string         { return AbilityFlee }
func (fleeAbility) Cooldown() int      { return 0 }
func (fleeAbility) PanicBlocked() bool { return true }

func (fleeAbility) Execute(e *Engine, actor, target *Combatant, side Side) {
	chance := FleeChance(actor, target)

	if e.rng.Float64() < chance {
		e.pushEvent(Event{Type: EventFlee, Side: side})
		outcome := OutcomePlayerFled
		if side == SideEnemy {
			outcome = OutcomeEnemyFled
		}
		// A panicking crew that runs may not all come back aboard.
		if side == SidePlayer && actor.Tier() == MoralePanic {
			e.pushEvent(Event{Type: EventCrewScatter, Side: side})
		}
		e.finish(outcome)
		return
	}

	e.applyMoraleShift(actor, side, fleeFailMorale)
	e.pushEvent(Event{Type: EventFlee, Side: side, Miss: true})
	if target.HP > 0 {
		e.resolveAttack(target, actor, side.Opponent(), counterFleeMult, true)
	}
}

// FleeChance computes the escape probability for actor against target:
// base plus morale and stance terms, minus pressure from the opponent's
// remaining strength. Exported for balance tests.
func FleeChance(actor, target *Combatant) float64 {
	moraleTerm := -0.10 + 0.30*(actor.Morale/100.0)
	pressure := target.HPFraction()*0.20 + (target.Morale/100.0)*0.15
	return clampF(fleeBase+moraleTerm+actor.fleeStanceTerm()-pressure, fleeMin, fleeMax)
}

// quickRepairAbility is the emergency patch: a large guaranteed heal paid
// for with crew morale and a round of exposed hull.
type quickRepairAbility struct{}

func (quickRepairAbility) ID() string         { return AbilityQuickRepair }
func (quickRepairAbility) Cooldown() int      { return 4 }
func (quickRepairAbility) PanicBlocked() bool { return true }

func (quickRepairAbility) Execute(e *Engine, actor, _ *Combatant, side Side) {
	heal := int(math.Round(float64(actor.HPMax) * quickRepairHealFrac))
	if heal < 1 {
		heal = 1
	}
	actor.HP += heal
	if actor.HP > actor.HPMax {
		actor.HP = actor.HPMax
	}

	e.applyMoraleShift(actor, side, quickRepairMorale)

	// Two decrements span the remainder of this round plus all of the next.
	actor.VulnerableRounds = 2

	e.pushEvent(Event{Type: EventQuickRepair, Side: side, Amount: heal})
}

// resolveAttack rolls one shot from attacker to defender. damageMult scales
// the final damage (counter-fire uses reduced multipliers). Counter shots
// skip the hit roll: they model unavoidable chip damage.
func (e *Engine) resolveAttack(attacker, defender *Combatant, side Side, damageMult float64, counter bool) {
	m := attacker.liveMods()

	if !counter {
		hitChance := clampF(baseHitChance+m.hit, 0.05, 0.99)
		if e.rng.Float64() >= hitChance {
			e.pushEvent(Event{Type: EventFire, Side: side, Miss: true, Counter: counter})
			return
		}
	}

	base := attacker.DamageMin
	if attacker.DamageMax > attacker.DamageMin {
		base += e.rng.IntN(attacker.DamageMax - attacker.DamageMin + 1)
	}
	dmg := float64(base)

	crit := false
	critChance := clampF(attacker.CritChance*(1.0+m.hit), 0, 1)
	if e.rng.Float64() < critChance {
		crit = true
		dmg *= attacker.CritMultiplier
	}

	effArmor := defender.armorAgainst(attacker.DamageType) - attacker.Penetration
	armorMult := math.Max(0.1, 1.0-effArmor/100.0)

	dmg *= m.damage * armorMult * damageMult
	if defender.Vulnerable() {
		dmg *= vulnerableMult
	}

	final := int(math.Round(dmg))
	if final < 1 {
		final = 1
	}

	defender.HP -= final
	if defender.HP < 0 {
		defender.HP = 0
	}

	e.recordDamage(side, final)
	e.pushEvent(Event{Type: EventFire, Side: side, Amount: final, Crit: crit, Counter: counter})

	if crit {
		e.applyMoraleShift(defender, side.Opponent(), moraleDefenderCrit)
		e.applyMoraleShift(attacker, side, moraleAttackerCrit)
	} else {
		e.applyMoraleShift(defender, side.Opponent(), moraleDefenderHit)
		e.applyMoraleShift(attacker, side, moraleAttackerHit)
	}
}

// applyMoraleShift moves morale and emits a morale_shift event when the
// tier band changes.
func (e *Engine) applyMoraleShift(c *Combatant, side Side, delta float64) {
	from, to := c.shiftMorale(delta)
	if from != to {
		e.pushEvent(Event{Type: EventMoraleShift, Side: side, TierFrom: from, TierTo: to})
	}
}

func clampF(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// rollPanic checks whether a panicking crew botches a non-attack action.
func rollPanic(rng *rand.Rand, c *Combatant) bool {
	return c.Tier() == MoralePanic && rng.Float64() < panicFailChance
}

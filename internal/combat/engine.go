package combat

import (
	"math/rand/v2"
)

// Outcome is the terminal state of a combat session.
type Outcome string

const (
	OutcomeNone       Outcome = ""
	OutcomeVictory    Outcome = "victory"
	OutcomeDefeat     Outcome = "defeat"
	OutcomePlayerFled Outcome = "player_fled"
	OutcomeEnemyFled  Outcome = "enemy_fled"
)

const initiativeJitter = 0.08

// Engine runs one 1v1 combat to completion. Rounds resolve in initiative
// order; within a round each side acts exactly once. The engine owns no
// presentation: callers poll TurnOwner, submit player abilities, call
// Update to let the enemy act, and drain events.
type Engine struct {
	Player *Combatant
	Enemy  *Combatant

	rng *rand.Rand

	round     int
	queue     []Side // sides yet to act this round, front acts next
	stanceSet bool   // player stance change already spent this round

	cooldowns map[Side]map[string]int
	dmgDealt  map[Side]int

	events []Event

	finished bool
	outcome  Outcome
}

// NewEngine starts a combat between player and enemy. The rng drives every
// roll, so a seeded source makes the whole fight reproducible.
func NewEngine(player, enemy *Combatant, rng *rand.Rand) *Engine {
	e := &Engine{
		Player: player,
		Enemy:  enemy,
		rng:    rng,
		cooldowns: map[Side]map[string]int{
			SidePlayer: {},
			SideEnemy:  {},
		},
		dmgDealt: map[Side]int{},
	}
	e.startRound()
	return e
}

// Round is the current round number, starting at 1.
func (e *Engine) Round() int { return e.round }

// Finished reports whether the combat has reached a terminal state.
func (e *Engine) Finished() bool { return e.finished }

// Outcome returns the terminal state, or OutcomeNone while running.
func (e *Engine) Outcome() Outcome { return e.outcome }

// DamageDealt is the total damage a side has inflicted so far.
func (e *Engine) DamageDealt(side Side) int { return e.dmgDealt[side] }

// TurnOwner returns the side whose action is pending, or SideNone when the
// combat is over.
func (e *Engine) TurnOwner() Side {
	if e.finished || len(e.queue) == 0 {
		return SideNone
	}
	return e.queue[0]
}

// CooldownLeft returns the rounds remaining before a side can use an
// ability again.
func (e *Engine) CooldownLeft(side Side, abilityID string) int {
	return e.cooldowns[side][abilityID]
}

// startRound rolls initiative with jitter, resets per-round state, and
// ticks cooldowns and vulnerability windows down.
func (e *Engine) startRound() {
	e.round++
	e.stanceSet = false

	for _, cds := range e.cooldowns {
		for id, v := range cds {
			if v > 0 {
				cds[id] = v - 1
			}
		}
	}
	for _, c := range []*Combatant{e.Player, e.Enemy} {
		if c.VulnerableRounds > 0 {
			c.VulnerableRounds--
		}
	}

	pInit := e.Player.InitiativeBase * (1 + e.jitter())
	eInit := e.Enemy.InitiativeBase * (1 + e.jitter())
	if pInit >= eInit {
		e.queue = []Side{SidePlayer, SideEnemy}
	} else {
		e.queue = []Side{SideEnemy, SidePlayer}
	}

	e.pushEvent(Event{Type: EventRound, Side: SideNone})
}

func (e *Engine) jitter() float64 {
	return (e.rng.Float64()*2 - 1) * initiativeJitter
}

// SetStance changes the player's stance. Allowed once per round at any
// point and does not consume the turn.
func (e *Engine) SetStance(s Stance) bool {
	if e.finished || e.stanceSet || s == e.Player.Stance {
		return false
	}
	switch s {
	case StanceOffensive, StanceBalanced, StanceDefensive:
	default:
		return false
	}
	e.Player.Stance = s
	e.stanceSet = true
	return true
}

// PlayerAction executes an ability for the player. Returns false without
// side effects when it is not the player's turn, the combat is over, the
// ability is unknown or on cooldown, or a repair is attempted at full hull.
func (e *Engine) PlayerAction(abilityID string) bool {
	if e.finished || e.TurnOwner() != SidePlayer {
		return false
	}
	return e.act(SidePlayer, e.Player, e.Enemy, abilityID)
}

// Update lets the enemy take its turn when it owns one. Safe to call every
// frame; does nothing while waiting on the player or after the end.
func (e *Engine) Update() {
	for !e.finished && e.TurnOwner() == SideEnemy {
		e.act(SideEnemy, e.Enemy, e.Player, e.chooseEnemyAbility())
	}
}

// act runs one ability for a side and advances the turn order.
func (e *Engine) act(side Side, actor, target *Combatant, abilityID string) bool {
	ab, ok := abilityRegistry[abilityID]
	if !ok {
		return false
	}
	if e.cooldowns[side][abilityID] > 0 {
		return false
	}
	if (abilityID == AbilityRepair || abilityID == AbilityQuickRepair) && actor.HP >= actor.HPMax {
		return false
	}

	if cd := ab.Cooldown(); cd > 0 {
		e.cooldowns[side][abilityID] = cd
	}

	if ab.PanicBlocked() && rollPanic(e.rng, actor) {
		// The crew freezes: the action is spent with no effect.
		e.pushEvent(Event{Type: EventPanic, Side: side})
	} else {
		ab.Execute(e, actor, target, side)
	}

	e.checkDeaths()
	if !e.finished {
		e.advanceTurn()
	}
	return true
}

// chooseEnemyAbility is the NPC policy: patch up when badly hurt, run when
// hopeless, otherwise shoot.
func (e *Engine) chooseEnemyAbility() string {
	hp := e.Enemy.HPFraction()

	if hp < 0.25 && e.cooldowns[SideEnemy][AbilityQuickRepair] == 0 {
		return AbilityQuickRepair
	}
	if hp < 0.15 && e.Enemy.Morale < 30 && e.rng.Float64() < 0.40 {
		return AbilityFlee
	}
	if hp < 0.35 && e.rng.Float64() < 0.50 {
		return AbilityRepair
	}
	return AbilityFire
}

func (e *Engine) advanceTurn() {
	e.queue = e.queue[1:]
	if len(e.queue) == 0 {
		e.startRound()
	}
}

// checkDeaths resolves lethal damage from any source, including
// counter-fire during the victim's own action.
func (e *Engine) checkDeaths() {
	if e.finished {
		return
	}
	switch {
	case e.Player.HP <= 0:
		e.finish(OutcomeDefeat)
	case e.Enemy.HP <= 0:
		e.finish(OutcomeVictory)
	}
}

func (e *Engine) finish(o Outcome) {
	if e.finished {
		return
	}
	e.finished = true
	e.outcome = o
	e.queue = nil
	e.pushEvent(Event{Type: EventFinished, Side: SideNone, Outcome: o})
}

func (e *Engine) recordDamage(side Side, amount int) {
	e.dmgDealt[side] += amount
}

package combat

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seafall/tradewind/internal/content"
)

func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

func playerStats() *content.CombatStats {
	return &content.CombatStats{
		HPMax: 100, ArmorPhysical: 20, DamageMin: 8, DamageMax: 14,
		DamageType: content.DamagePhysical, CritChance: 0.10,
		CritMultiplier: 1.5, InitiativeBase: 1.2,
		DifficultyTier: 1, ThreatLevel: 1,
	}
}

func enemyStats() *content.CombatStats {
	return &content.CombatStats{
		HPMax: 80, ArmorPhysical: 10, DamageMin: 6, DamageMax: 10,
		DamageType: content.DamagePhysical, CritChance: 0.08,
		CritMultiplier: 1.5, InitiativeBase: 1.0,
		DifficultyTier: 1, ThreatLevel: 1,
	}
}

func newTestEngine(seed uint64) *Engine {
	p := NewCombatant("player", playerStats(), 0)
	e := NewCombatant("enemy", enemyStats(), 0)
	return NewEngine(p, e, testRNG(seed))
}

func TestArmorDamageReduction(t *testing.T) {
	// 10 base damage into 30% armor, no penetration, no crit: floor at 7.
	attacker := &Combatant{
		HP: 50, HPMax: 50, DamageMin: 10, DamageMax: 10,
		DamageType: content.DamagePhysical, CritChance: 0,
		CritMultiplier: 1.5, Morale: 70, Stance: StanceBalanced,
	}
	defender := &Combatant{
		HP: 100, HPMax: 100, ArmorPhysical: 30,
		Morale: 70, Stance: StanceBalanced,
	}

	e := &Engine{
		Player: attacker, Enemy: defender, rng: testRNG(1),
		cooldowns: map[Side]map[string]int{SidePlayer: {}, SideEnemy: {}},
		dmgDealt:  map[Side]int{},
	}

	// Counter shots skip the hit roll, so the damage math is isolated.
	e.resolveAttack(attacker, defender, SidePlayer, 1.0, true)
	assert.Equal(t, 93, defender.HP)
}

func TestDamageNeverBelowOne(t *testing.T) {
	attacker := &Combatant{
		HP: 50, HPMax: 50, DamageMin: 1, DamageMax: 1,
		DamageType: content.DamagePhysical, CritChance: 0,
		CritMultiplier: 1.5, Morale: 70, Stance: StanceBalanced,
	}
	defender := &Combatant{
		HP: 100, HPMax: 100, ArmorPhysical: 500,
		Morale: 70, Stance: StanceBalanced,
	}

	e := &Engine{
		Player: attacker, Enemy: defender, rng: testRNG(2),
		cooldowns: map[Side]map[string]int{SidePlayer: {}, SideEnemy: {}},
		dmgDealt:  map[Side]int{},
	}

	e.resolveAttack(attacker, defender, SidePlayer, 1.0, true)
	assert.Equal(t, 99, defender.HP, "over-armored hit should still chip 1")
}

func TestTurnIntegrity(t *testing.T) {
	e := newTestEngine(7)

	if e.TurnOwner() == SideEnemy {
		hp := e.Player.HP
		ok := e.PlayerAction(AbilityFire)
		assert.False(t, ok, "player acted out of turn")
		assert.Equal(t, hp, e.Player.HP)
		e.Update()
	}

	require.Equal(t, SidePlayer, e.TurnOwner())
	assert.True(t, e.PlayerAction(AbilityFire))
}

func TestFleeChanceClamped(t *testing.T) {
	// Full morale, defensive stance, full-strength enemy: 0.20 + 0.20 +
	// 0.10 - 0.35 = 0.15.
	actor := &Combatant{HP: 100, HPMax: 100, Morale: 100, Stance: StanceDefensive}
	target := &Combatant{HP: 80, HPMax: 80, Morale: 100, Stance: StanceBalanced}
	assert.InDelta(t, 0.15, FleeChance(actor, target), 0.001)

	// Zero morale, offensive stance, full pressure: clamps to the floor.
	actor.Morale = 0
	actor.Stance = StanceOffensive
	assert.InDelta(t, 0.05, FleeChance(actor, target), 0.001)

	// Broken enemy and high morale: clamps to the ceiling.
	target.HP = 1
	target.Morale = 0
	actor.Morale = 100
	actor.Stance = StanceDefensive
	got := FleeChance(actor, target)
	assert.LessOrEqual(t, got, 0.85)
	assert.Greater(t, got, 0.40)
}

func TestCombatRunsToCompletion(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		e := newTestEngine(seed)

		for rounds := 0; !e.Finished() && rounds < 500; rounds++ {
			e.Update()
			if e.TurnOwner() == SidePlayer {
				require.True(t, e.PlayerAction(AbilityFire))
			}
		}

		require.True(t, e.Finished(), "seed %d never finished", seed)
		require.NotEqual(t, OutcomeNone, e.Outcome())
		assert.GreaterOrEqual(t, e.Player.HP, 0)
		assert.GreaterOrEqual(t, e.Enemy.HP, 0)
		assert.LessOrEqual(t, e.Player.HP, e.Player.HPMax)
		assert.LessOrEqual(t, e.Enemy.HP, e.Enemy.HPMax)
	}
}

func TestStanceOncePerRound(t *testing.T) {
	e := newTestEngine(3)
	require.True(t, e.SetStance(StanceOffensive))
	assert.False(t, e.SetStance(StanceDefensive), "second stance change in one round")
	assert.Equal(t, StanceOffensive, e.Player.Stance)
}

func TestQuickRepairCooldownAndVulnerability(t *testing.T) {
	e := newTestEngine(11)
	e.Update()
	require.Equal(t, SidePlayer, e.TurnOwner())

	e.Player.HP = 40
	e.Player.Morale = 70 // above panic, ability cannot be panic-blocked

	require.True(t, e.PlayerAction(AbilityQuickRepair))
	assert.GreaterOrEqual(t, e.Player.HP, 40+int(0.30*100)-1)
	assert.InDelta(t, 52.0, e.Player.Morale, 0.001) // 70 - 18
	assert.True(t, e.Player.Vulnerable())
	assert.Greater(t, e.CooldownLeft(SidePlayer, AbilityQuickRepair), 0)

	// Immediate reuse is rejected even on the player's next turn.
	e.Update()
	if e.TurnOwner() == SidePlayer {
		assert.False(t, e.PlayerAction(AbilityQuickRepair))
	}
}

func TestMoraleClampedToRange(t *testing.T) {
	c := &Combatant{Morale: 5}
	c.shiftMorale(-50)
	assert.Equal(t, 0.0, c.Morale)
	c.shiftMorale(500)
	assert.Equal(t, 100.0, c.Morale)
}

func TestMoraleTiers(t *testing.T) {
	tests := []struct {
		morale float64
		want   MoraleTier
	}{
		{100, MoraleBonus}, {80, MoraleBonus},
		{79, MoraleNeutral}, {40, MoraleNeutral},
		{39, MoraleMalus}, {20, MoraleMalus},
		{19, MoralePanic}, {0, MoralePanic},
	}
	for _, tt := range tests {
		c := &Combatant{Morale: tt.morale}
		assert.Equal(t, tt.want, c.Tier(), "morale %v", tt.morale)
	}
}

func TestEventQueueBounded(t *testing.T) {
	e := newTestEngine(5)

	// Run a long fight without draining events.
	for rounds := 0; !e.Finished() && rounds < 500; rounds++ {
		e.Update()
		if e.TurnOwner() == SidePlayer {
			e.PlayerAction(AbilityFire)
		}
	}

	count := 0
	for e.PopEvent() != nil {
		count++
		require.LessOrEqual(t, count, maxQueuedEvents)
	}
}

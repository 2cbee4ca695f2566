package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/seafall/tradewind/internal/combat"
	"github.com/seafall/tradewind/internal/content"
)

var (
	ErrNoCombat      = errors.New("no active combat")
	ErrCombatRunning = errors.New("combat still running")
	ErrUnknownEnemy  = errors.New("unknown enemy")
)

// startEncounter fires when the encounter meter fills: pick an enemy suited
// to the local danger and open combat. Caller holds the lock.
func (s *Session) startEncounter() {
	enemy := s.pickEnemy(s.Danger.DangerAt(s.Player.Ship.Pos))
	if enemy == nil {
		return
	}
	if err := s.enterCombatLocked(enemy.ID); err != nil {
		slog.Warn("encounter failed to start", "enemy", enemy.ID, "error", err)
	}
}

// pickEnemy selects a random enemy whose difficulty tier fits the local
// danger: calm edges spawn tier 1, the hottest water allows tier 3+.
func (s *Session) pickEnemy(danger float64) *content.EnemyDef {
	maxTier := 1 + int(danger*2.5)

	var pool []*content.EnemyDef
	for _, e := range s.Content.Enemies {
		if e.Combat.DifficultyTier <= maxTier {
			pool = append(pool, e)
		}
	}
	if len(pool) == 0 {
		for _, e := range s.Content.Enemies {
			pool = append(pool, e)
		}
	}
	if len(pool) == 0 {
		return nil
	}
	// Map iteration order is random; sort by id so the rng pick is
	// reproducible across runs.
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool[s.rng.IntN(len(pool))]
}

// EnterCombat starts a fight against a specific enemy definition. Used by
// the encounter system and by scripted boarding actions.
func (s *Session) EnterCombat(enemyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enterCombatLocked(enemyID)
}

func (s *Session) enterCombatLocked(enemyID string) error {
	if s.Combat != nil {
		return ErrCombatRunning
	}
	enemyDef, ok := s.Content.Enemies[enemyID]
	if !ok {
		return fmt.Errorf("%q: %w", enemyID, ErrUnknownEnemy)
	}
	shipDef, ok := s.Content.Ships[s.Player.Ship.TypeID]
	if !ok {
		return fmt.Errorf("ship type %q: %w", s.Player.Ship.TypeID, ErrUnknownEnemy)
	}

	player := combat.NewCombatant(s.Player.Ship.Name, shipDef.Combat, s.Player.Ship.HP)
	enemy := combat.NewCombatant(enemyDef.Name, enemyDef.Combat, 0)

	s.Combat = combat.NewEngine(player, enemy, s.rng)
	s.combatEnemy = enemyDef
	s.combatDone = false
	s.pushEvent(EventCombat, fmt.Sprintf("%s closes in", enemyDef.Name))

	slog.Info("combat started",
		"day", s.Clock.Day,
		"enemy", enemyDef.ID,
		"tier", enemyDef.Combat.DifficultyTier,
		"player_hp", player.HP)
	return nil
}

// CombatAction submits a player ability to the running combat.
func (s *Session) CombatAction(abilityID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Combat == nil {
		return false
	}
	return s.Combat.PlayerAction(abilityID)
}

// SetCombatStance changes the player stance for the current round.
func (s *Session) SetCombatStance(st combat.Stance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Combat == nil {
		return false
	}
	return s.Combat.SetStance(st)
}

// PopCombatEvent drains the combat event queue for presentation.
func (s *Session) PopCombatEvent() *combat.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Combat == nil {
		return nil
	}
	return s.Combat.PopEvent()
}

// ResolveCombat applies the outcome of a finished combat and closes it:
// rewards on victory, a master life on defeat, nothing extra on a flee.
// Player hull persists back to the ship.
func (s *Session) ResolveCombat() (*combat.Rewards, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Combat == nil {
		return nil, ErrNoCombat
	}
	if !s.Combat.Finished() {
		return nil, ErrCombatRunning
	}
	if s.combatDone {
		return nil, ErrNoCombat
	}
	s.combatDone = true

	eng := s.Combat
	outcome := eng.Outcome()
	s.Player.Ship.HP = eng.Player.HP

	var rewards *combat.Rewards

	switch outcome {
	case combat.OutcomeVictory:
		r := combat.ComputeRewards(eng.Enemy, s.combatEnemy.Loot, s.rng)
		s.Player.Money += r.Gold
		s.addXP(r.XP)
		for _, drop := range r.Cargo {
			tons := math.Min(drop.Tons, s.Player.FreeCapacity())
			if tons > 0.001 {
				s.Player.Cargo.AddLot(drop.GoodID, tons)
			}
		}
		rewards = &r
		s.pushEvent(EventCombat, fmt.Sprintf("defeated %s (+%d gold, +%d xp)", s.combatEnemy.Name, r.Gold, r.XP))
		slog.Info("combat won",
			"enemy", s.combatEnemy.ID,
			"gold", r.Gold, "xp", r.XP, "drops", len(r.Cargo))

	case combat.OutcomeDefeat:
		s.pushEvent(EventCombat, fmt.Sprintf("lost to %s", s.combatEnemy.Name))
		s.applyDefeat()

	default:
		s.pushEvent(EventCombat, fmt.Sprintf("combat ended: %s", outcome))
		slog.Info("combat ended", "outcome", string(outcome))
	}

	s.Combat = nil
	s.combatEnemy = nil
	s.Meter.Value = 0
	return rewards, nil
}

// applyDefeat spends a master life: the crew's second wind restores the
// hull to max and the ship is towed to the nearest harbor. With no lives
// left the run is over.
func (s *Session) applyDefeat() {
	s.Player.MasterLives--
	if s.Player.MasterLives < 0 {
		s.Player.MasterLives = 0
	}

	if s.Player.MasterLives <= 0 {
		s.GameOver = true
		slog.Info("game over", "day", s.Clock.Day)
		return
	}

	s.Player.Ship.HP = s.Player.Ship.HPMax

	// Tow to the nearest city.
	var nearest *struct {
		id   string
		dist float64
	}
	for _, c := range s.World.Cities {
		d := c.Pos.Dist(s.Player.Ship.Pos)
		if nearest == nil || d < nearest.dist {
			nearest = &struct {
				id   string
				dist float64
			}{c.ID, d}
		}
	}
	if nearest != nil {
		city := s.World.City(nearest.id)
		s.Player.Ship.Pos = city.Pos
		s.Player.DockedCityID = city.ID
	}

	slog.Info("defeat survived",
		"lives_left", s.Player.MasterLives,
		"hull", s.Player.Ship.HP,
		"towed_to", s.Player.DockedCityID)
}

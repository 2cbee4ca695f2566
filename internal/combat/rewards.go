package combat

import (
	"math"
	"math/rand/v2"

	"github.com/seafall/tradewind/internal/content"
)

// CargoDrop is a cargo reward rolled from an enemy's loot table.
type CargoDrop struct {
	GoodID string
	Tons   float64
}

// Rewards is the payout for defeating an enemy.
type Rewards struct {
	Gold  int
	XP    int
	Cargo []CargoDrop
}

// DangerScore rates an enemy's overall threat from its combat stats. Gold
// and XP scale off this single number so new enemy content self-balances.
func DangerScore(c *Combatant) float64 {
	avgDmg := float64(c.DamageMin+c.DamageMax) / 2.0
	avgArmor := (c.ArmorPhysical + c.ArmorAbyssal) / 2.0
	return float64(c.HPMax)*0.35 +
		avgDmg*6.0 +
		avgArmor*1.2 +
		float64(c.ThreatLevel)*35.0 +
		float64(c.DifficultyTier)*25.0
}

// ComputeRewards rolls the full victory payout: danger-scaled gold and XP
// plus the enemy's loot table scaled by tier.
func ComputeRewards(enemy *Combatant, loot content.LootTable, rng *rand.Rand) Rewards {
	danger := DangerScore(enemy)

	mult := 1.0 +
		0.15*float64(enemy.ThreatLevel-1) +
		0.10*float64(enemy.DifficultyTier-1)
	if mult < 1.0 {
		mult = 1.0
	}

	r := Rewards{
		Gold: int(math.Round(8 + 0.12*danger)),
		XP:   int(math.Round(4 + 0.09*danger)),
	}

	if loot.GoldBase > 0 {
		r.Gold += int(math.Round(float64(loot.GoldBase) * (1 + loot.GoldMult*mult)))
	}
	if loot.XPBase > 0 {
		r.XP += int(math.Round(float64(loot.XPBase) * (1 + loot.XPMult*mult)))
	}

	for _, entry := range loot.Cargo {
		if rng.Float64() >= entry.Chance {
			continue
		}
		tons := entry.MinTons
		if entry.MaxTons > entry.MinTons {
			tons += rng.Float64() * (entry.MaxTons - entry.MinTons)
		}
		tons = math.Round(tons*100) / 100
		if tons <= 0 {
			continue
		}
		r.Cargo = append(r.Cargo, CargoDrop{GoodID: entry.GoodID, Tons: tons})
	}

	return r
}

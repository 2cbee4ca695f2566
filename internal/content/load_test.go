package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validGoods = `
goods:
  - id: grain
    category: food
    base_price: 10
    spoil_rate_per_day: 0.01
    target_stock: 100
  - id: tools
    category: craft
    base_price: 45
    target_stock: 30
`

const validShips = `
ships:
  - id: sloop
    name: Sloop
    capacity_tons: 40
    speed: 120
    combat:
      hp_max: 80
      damage_min: 6
      damage_max: 12
    visual:
      sprite: ships/sloop.png
`

const validCities = `
city_types:
  - id: farm_city
    market_size: medium
    needs:
      food: low
      craft: high
cities:
  - id: graincoast
    city_type_id: farm_city
    x: 100
    y: 200
    harbor_radius: 50
`

const validEnemies = `
enemies:
  - id: pirate
    name: Pirate
    combat:
      hp_max: 60
      damage_min: 5
      damage_max: 10
    visual:
      sprite: enemies/pirate.png
    loot:
      gold_base: 20
      cargo:
        - good_id: grain
          min_tons: 1
          max_tons: 3
          chance: 0.5
`

func writeContentDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	defaults := map[string]string{
		"goods.yaml":   validGoods,
		"ships.yaml":   validShips,
		"cities.yaml":  validCities,
		"enemies.yaml": validEnemies,
	}
	for name, body := range files {
		defaults[name] = body
	}
	for name, body := range defaults {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestLoadValidContent(t *testing.T) {
	c, err := Load(writeContentDir(t, nil))
	require.NoError(t, err)

	assert.Len(t, c.Goods, 2)
	assert.Len(t, c.GoodsOrdered, 2)
	assert.Equal(t, "grain", c.GoodsOrdered[0].ID, "file order not preserved")
	assert.Len(t, c.Cities, 1)
	assert.Len(t, c.Enemies, 1)

	// Defaults applied.
	cs := c.Ships["sloop"].Combat
	assert.Equal(t, DamagePhysical, cs.DamageType)
	assert.Equal(t, 1.5, cs.CritMultiplier)
	assert.Equal(t, 1.0, cs.InitiativeBase)
	assert.Equal(t, 1, cs.DifficultyTier)

	ct := c.CityTypes["farm_city"]
	assert.Equal(t, 5.0, ct.LotSizeTons)
	assert.Equal(t, NeedNormal, ct.Need(CategoryRaw), "unlisted category must read normal")
	assert.Equal(t, NeedLow, ct.Need(CategoryFood))
}

func TestLoadMissingFile(t *testing.T) {
	dir := writeContentDir(t, nil)
	require.NoError(t, os.Remove(filepath.Join(dir, "enemies.yaml")))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadShipWithoutCombatBlock(t *testing.T) {
	_, err := Load(writeContentDir(t, map[string]string{
		"ships.yaml": `
ships:
  - id: ghost
    name: Ghost
    visual:
      sprite: g.png
`,
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "combat")
}

func TestLoadEnemyWithoutVisualBlock(t *testing.T) {
	_, err := Load(writeContentDir(t, map[string]string{
		"enemies.yaml": `
enemies:
  - id: shade
    combat:
      hp_max: 10
`,
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "visual")
}

func TestLoadUnknownCityType(t *testing.T) {
	_, err := Load(writeContentDir(t, map[string]string{
		"cities.yaml": `
city_types:
  - id: farm_city
cities:
  - id: lost
    city_type_id: atlantis
`,
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "atlantis")
}

func TestLoadLootWithUnknownGood(t *testing.T) {
	_, err := Load(writeContentDir(t, map[string]string{
		"enemies.yaml": `
enemies:
  - id: pirate
    combat:
      hp_max: 60
    visual:
      sprite: p.png
    loot:
      cargo:
        - good_id: unobtainium
          min_tons: 1
          max_tons: 2
          chance: 0.5
`,
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unobtainium")
}

func TestLoadEmptyContent(t *testing.T) {
	_, err := Load(writeContentDir(t, map[string]string{
		"goods.yaml": "goods: []",
	}))
	assert.Error(t, err)
}

package content

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads all definition files from dir. Content-integrity problems
// (missing files, unknown references, absent combat/visual blocks) are fatal
// here so a broken install aborts before a session starts.
func Load(dir string) (*Content, error) {
	var goodsFile struct {
		Goods []*GoodDef `yaml:"goods"`
	}
	if err := readYAML(filepath.Join(dir, "goods.yaml"), &goodsFile); err != nil {
		return nil, err
	}

	var shipsFile struct {
		Ships []*ShipDef `yaml:"ships"`
	}
	if err := readYAML(filepath.Join(dir, "ships.yaml"), &shipsFile); err != nil {
		return nil, err
	}

	var citiesFile struct {
		CityTypes []*CityTypeDef `yaml:"city_types"`
		Cities    []*CityDef     `yaml:"cities"`
	}
	if err := readYAML(filepath.Join(dir, "cities.yaml"), &citiesFile); err != nil {
		return nil, err
	}

	var enemiesFile struct {
		Enemies []*EnemyDef `yaml:"enemies"`
	}
	if err := readYAML(filepath.Join(dir, "enemies.yaml"), &enemiesFile); err != nil {
		return nil, err
	}

	c := &Content{
		Goods:     make(map[string]*GoodDef, len(goodsFile.Goods)),
		Ships:     make(map[string]*ShipDef, len(shipsFile.Ships)),
		CityTypes: make(map[string]*CityTypeDef, len(citiesFile.CityTypes)),
		Cities:    make(map[string]*CityDef, len(citiesFile.Cities)),
		Enemies:   make(map[string]*EnemyDef, len(enemiesFile.Enemies)),
	}

	for _, g := range goodsFile.Goods {
		if g.ID == "" {
			return nil, fmt.Errorf("content: good with empty id in goods.yaml")
		}
		applyGoodDefaults(g)
		c.Goods[g.ID] = g
		c.GoodsOrdered = append(c.GoodsOrdered, g)
	}

	for _, s := range shipsFile.Ships {
		if s.Combat == nil {
			return nil, fmt.Errorf("content: ship %q missing required combat block", s.ID)
		}
		if s.Visual == nil {
			return nil, fmt.Errorf("content: ship %q missing required visual block", s.ID)
		}
		applyCombatDefaults(s.Combat)
		c.Ships[s.ID] = s
	}

	for _, ct := range citiesFile.CityTypes {
		if ct.LotSizeTons <= 0 {
			ct.LotSizeTons = 5.0
		}
		if ct.MarketSize == "" {
			ct.MarketSize = MarketMedium
		}
		c.CityTypes[ct.ID] = ct
	}

	for _, cd := range citiesFile.Cities {
		if _, ok := c.CityTypes[cd.CityTypeID]; !ok {
			return nil, fmt.Errorf("content: city %q references unknown city type %q", cd.ID, cd.CityTypeID)
		}
		if cd.MapID == "" {
			cd.MapID = "world_01"
		}
		c.Cities[cd.ID] = cd
		c.CitiesOrdered = append(c.CitiesOrdered, cd)
	}

	for _, e := range enemiesFile.Enemies {
		if e.Combat == nil {
			return nil, fmt.Errorf("content: enemy %q missing required combat block", e.ID)
		}
		if e.Visual == nil {
			return nil, fmt.Errorf("content: enemy %q missing required visual block", e.ID)
		}
		applyCombatDefaults(e.Combat)
		for _, entry := range e.Loot.Cargo {
			if _, ok := c.Goods[entry.GoodID]; !ok {
				return nil, fmt.Errorf("content: enemy %q loot references unknown good %q", e.ID, entry.GoodID)
			}
		}
		c.Enemies[e.ID] = e
	}

	if len(c.Goods) == 0 {
		return nil, fmt.Errorf("content: no goods defined")
	}
	if len(c.Cities) == 0 {
		return nil, fmt.Errorf("content: no cities defined")
	}

	return c, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("content: read %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("content: parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func applyGoodDefaults(g *GoodDef) {
	if g.Name == "" {
		g.Name = g.ID
	}
	if g.Category == "" {
		g.Category = CategoryRaw
	}
}

func applyCombatDefaults(cs *CombatStats) {
	if cs.HPMax < 1 {
		cs.HPMax = 1
	}
	if cs.DamageMax < cs.DamageMin {
		cs.DamageMax = cs.DamageMin
	}
	if cs.DamageType == "" {
		cs.DamageType = DamagePhysical
	}
	if cs.CritMultiplier == 0 {
		cs.CritMultiplier = 1.5
	}
	if cs.InitiativeBase == 0 {
		cs.InitiativeBase = 1.0
	}
	if cs.DifficultyTier == 0 {
		cs.DifficultyTier = 1
	}
	if cs.ThreatLevel == 0 {
		cs.ThreatLevel = 1
	}
}

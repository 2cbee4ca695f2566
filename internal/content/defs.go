// Package content loads the immutable static definitions the simulation
// runs on: goods, ships, city types, cities, and enemies. Definitions are
// loaded once at startup and never mutated during play.
package content

// Category classifies a good for need levels, production bias, and shocks.
type Category string

const (
	CategoryFood   Category = "food"
	CategoryRaw    Category = "raw"
	CategoryCraft  Category = "craft"
	CategorySea    Category = "sea"
	CategoryLuxury Category = "luxury"
)

// Categories lists all good categories in canonical order.
var Categories = []Category{CategoryFood, CategoryRaw, CategoryCraft, CategorySea, CategoryLuxury}

// NeedLevel classifies how badly a city type wants a good category.
type NeedLevel string

const (
	NeedCritical   NeedLevel = "critical"
	NeedHigh       NeedLevel = "high"
	NeedNormal     NeedLevel = "normal"
	NeedLow        NeedLevel = "low"
	NeedIrrelevant NeedLevel = "irrelevant"
)

// MarketSize scales a city's capacity and production/consumption rates.
type MarketSize string

const (
	MarketSmall  MarketSize = "small"
	MarketMedium MarketSize = "medium"
	MarketLarge  MarketSize = "large"
)

// DamageType selects which armor value a hit is resolved against.
type DamageType string

const (
	DamagePhysical DamageType = "physical"
	DamageAbyssal  DamageType = "abyssal"
)

// GoodDef is a tradeable good.
type GoodDef struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Category        Category `yaml:"category"`
	BasePrice       float64  `yaml:"base_price"`
	SpoilRatePerDay float64  `yaml:"spoil_rate_per_day"`
	TargetStock     float64  `yaml:"target_stock"`
}

// CombatStats is the shared combat block for ships and enemies.
type CombatStats struct {
	HPMax          int        `yaml:"hp_max"`
	ArmorPhysical  float64    `yaml:"armor_physical"` // percent
	ArmorAbyssal   float64    `yaml:"armor_abyssal"`  // percent
	DamageMin      int        `yaml:"damage_min"`
	DamageMax      int        `yaml:"damage_max"`
	DamageType     DamageType `yaml:"damage_type"`
	Penetration    float64    `yaml:"penetration"` // percent, may exceed 100
	CritChance     float64    `yaml:"crit_chance"` // 0..1
	CritMultiplier float64    `yaml:"crit_multiplier"`
	InitiativeBase float64    `yaml:"initiative_base"`
	DifficultyTier int        `yaml:"difficulty_tier"`
	ThreatLevel    int        `yaml:"threat_level"`
}

// VisualDef is the sprite block consumed by the presentation layer.
// The core validates its presence but never interprets it.
type VisualDef struct {
	Sprite string  `yaml:"sprite"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Scale  float64 `yaml:"scale"`
	FlipX  bool    `yaml:"flip_x"`
}

// ShipDef is a playable ship hull.
type ShipDef struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name"`
	CapacityTons float64 `yaml:"capacity_tons"`
	Speed        float64 `yaml:"speed"`
	CrewMax      int     `yaml:"crew_max"`
	CrewRequired int     `yaml:"crew_required"`
	UpkeepPerDay int     `yaml:"upkeep_per_day"`

	Combat *CombatStats `yaml:"combat"`
	Visual *VisualDef   `yaml:"visual"`
}

// CityTypeDef describes a city's market character.
type CityTypeDef struct {
	ID                      string                 `yaml:"id"`
	Name                    string                 `yaml:"name"`
	MarketSize              MarketSize             `yaml:"market_size"`
	LotSizeTons             float64                `yaml:"lot_size_tons"`
	Needs                   map[Category]NeedLevel `yaml:"needs"`
	InitialStockMultiplier  float64                `yaml:"initial_stock_multiplier"`
}

// Need returns the need level for a category, defaulting to normal when the
// category is not listed.
func (ct *CityTypeDef) Need(cat Category) NeedLevel {
	if ct == nil {
		return NeedNormal
	}
	if n, ok := ct.Needs[cat]; ok && n != "" {
		return n
	}
	return NeedNormal
}

// CityDef places a city on the world map.
type CityDef struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name"`
	CityTypeID   string  `yaml:"city_type_id"`
	X            float64 `yaml:"x"`
	Y            float64 `yaml:"y"`
	HarborRadius float64 `yaml:"harbor_radius"`
	MapID        string  `yaml:"map_id"`
}

// LootCargoEntry is one probabilistic cargo drop in an enemy's loot table.
type LootCargoEntry struct {
	GoodID  string  `yaml:"good_id"`
	MinTons float64 `yaml:"min_tons"`
	MaxTons float64 `yaml:"max_tons"`
	Chance  float64 `yaml:"chance"` // 0..1, rolled independently
}

// LootTable scales combat rewards for one enemy.
type LootTable struct {
	GoldBase int              `yaml:"gold_base"`
	GoldMult float64          `yaml:"gold_mult"`
	XPBase   int              `yaml:"xp_base"`
	XPMult   float64          `yaml:"xp_mult"`
	Cargo    []LootCargoEntry `yaml:"cargo"`
}

// EnemyDef is a combat encounter opponent.
type EnemyDef struct {
	ID     string       `yaml:"id"`
	Name   string       `yaml:"name"`
	Tags   []string     `yaml:"tags"`
	Combat *CombatStats `yaml:"combat"`
	Visual *VisualDef   `yaml:"visual"`
	Loot   LootTable    `yaml:"loot"`
}

// Content bundles all loaded definitions. Maps are keyed by id; the ordered
// slices preserve file order for deterministic iteration.
type Content struct {
	Goods     map[string]*GoodDef
	Ships     map[string]*ShipDef
	CityTypes map[string]*CityTypeDef
	Cities    map[string]*CityDef
	Enemies   map[string]*EnemyDef

	GoodsOrdered  []*GoodDef
	CitiesOrdered []*CityDef
}

// CityType resolves a city's type definition, or nil when either lookup
// misses. Callers are expected to skip such cities rather than fail.
func (c *Content) CityType(cityID string) *CityTypeDef {
	cd, ok := c.Cities[cityID]
	if !ok {
		return nil
	}
	return c.CityTypes[cd.CityTypeID]
}

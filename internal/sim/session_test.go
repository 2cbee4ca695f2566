package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seafall/tradewind/internal/content"
	"github.com/seafall/tradewind/internal/world"
)

func fixtureContent() *content.Content {
	goods := []*content.GoodDef{
		{ID: "grain", Name: "Grain", Category: content.CategoryFood, BasePrice: 10, TargetStock: 100, SpoilRatePerDay: 0.01},
		{ID: "tools", Name: "Tools", Category: content.CategoryCraft, BasePrice: 45, TargetStock: 30},
		{ID: "rum", Name: "Rum", Category: content.CategoryLuxury, BasePrice: 60, TargetStock: 20},
	}
	cityTypes := []*content.CityTypeDef{
		{
			ID: "farm_city", MarketSize: content.MarketMedium, LotSizeTons: 5, InitialStockMultiplier: 1.0,
			Needs: map[content.Category]content.NeedLevel{
				content.CategoryFood:   content.NeedLow,
				content.CategoryCraft:  content.NeedHigh,
				content.CategoryLuxury: content.NeedLow,
			},
		},
		{
			ID: "harbor_city", MarketSize: content.MarketLarge, LotSizeTons: 10, InitialStockMultiplier: 1.0,
			Needs: map[content.Category]content.NeedLevel{
				content.CategoryFood:   content.NeedHigh,
				content.CategoryLuxury: content.NeedHigh,
			},
		},
	}
	cities := []*content.CityDef{
		{ID: "porto", Name: "Porto", CityTypeID: "harbor_city", X: 100, Y: 100, HarborRadius: 50},
		{ID: "graincoast", Name: "Graincoast", CityTypeID: "farm_city", X: 500, Y: 300, HarborRadius: 50},
	}
	ships := []*content.ShipDef{
		{
			ID: "sloop", Name: "Sloop", CapacityTons: 40, Speed: 120,
			CrewMax: 12, CrewRequired: 4, UpkeepPerDay: 6,
			Combat: &content.CombatStats{
				HPMax: 80, ArmorPhysical: 10, DamageMin: 6, DamageMax: 12,
				DamageType: content.DamagePhysical, CritChance: 0.1,
				CritMultiplier: 1.5, InitiativeBase: 1.2,
				DifficultyTier: 1, ThreatLevel: 1,
			},
			Visual: &content.VisualDef{Sprite: "s.png"},
		},
	}
	enemies := []*content.EnemyDef{
		{
			ID: "pirate", Name: "Pirate",
			Combat: &content.CombatStats{
				HPMax: 30, ArmorPhysical: 5, DamageMin: 3, DamageMax: 6,
				DamageType: content.DamagePhysical, CritChance: 0.05,
				CritMultiplier: 1.5, InitiativeBase: 1.0,
				DifficultyTier: 1, ThreatLevel: 1,
			},
			Visual: &content.VisualDef{Sprite: "p.png"},
			Loot: content.LootTable{
				GoldBase: 20, GoldMult: 1.0, XPBase: 10, XPMult: 1.0,
				Cargo: []content.LootCargoEntry{{GoodID: "rum", MinTons: 1, MaxTons: 2, Chance: 1.0}},
			},
		},
	}

	c := &content.Content{
		Goods:     map[string]*content.GoodDef{},
		Ships:     map[string]*content.ShipDef{},
		CityTypes: map[string]*content.CityTypeDef{},
		Cities:    map[string]*content.CityDef{},
		Enemies:   map[string]*content.EnemyDef{},
	}
	for _, g := range goods {
		c.Goods[g.ID] = g
		c.GoodsOrdered = append(c.GoodsOrdered, g)
	}
	for _, s := range ships {
		c.Ships[s.ID] = s
	}
	for _, ct := range cityTypes {
		c.CityTypes[ct.ID] = ct
	}
	for _, cd := range cities {
		c.Cities[cd.ID] = cd
		c.CitiesOrdered = append(c.CitiesOrdered, cd)
	}
	for _, e := range enemies {
		c.Enemies[e.ID] = e
	}
	return c
}

func fixtureConfig() RunConfig {
	cfg := RunConfig{
		Difficulty:     "normal",
		Seed:           42,
		StartCityID:    "porto",
		StartingShipID: "sloop",
	}
	cfg.Normalize()
	return cfg
}

func newFixtureSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(fixtureContent(), fixtureConfig())
	require.NoError(t, err)
	return s
}

func TestNewSessionSeedsEverything(t *testing.T) {
	s := newFixtureSession(t)

	assert.Equal(t, "porto", s.Player.DockedCityID)
	assert.Equal(t, 1000, s.Player.Money) // normal preset
	assert.Equal(t, 3, s.Player.MasterLives)
	assert.Equal(t, 80, s.Player.Ship.HP)

	require.Len(t, s.Markets, 2)
	for id, m := range s.Markets {
		for _, g := range s.Content.GoodsOrdered {
			assert.Greater(t, m.StockOf(g.ID), 0.0, "city %s good %s unseeded", id, g.ID)
		}
		assert.NotEmpty(t, m.TopNeeds)
	}
}

func TestDayPipelineRunsOnRollover(t *testing.T) {
	s := newFixtureSession(t)
	money := s.Player.Money

	s.Update(s.Cfg.DayLengthSec + 1)

	assert.Equal(t, 2, s.Day())
	assert.Equal(t, money-6, s.Player.Money, "daily upkeep not charged")
}

func TestCargoSpoilsAndAges(t *testing.T) {
	s := newFixtureSession(t)
	s.Player.Cargo.AddLot("grain", 10)
	s.Player.Cargo.AddLot("tools", 5)

	s.Update(s.Cfg.DayLengthSec + 1)

	byGood := s.Player.Cargo.TonsByGood()
	assert.InDelta(t, 9.9, byGood["grain"], 0.001, "perishable cargo should spoil")
	assert.InDelta(t, 5.0, byGood["tools"], 0.001, "durable cargo should not")
	for _, lot := range s.Player.Cargo.Lots {
		assert.Equal(t, 1, lot.AgeDays)
	}
}

func TestBuyChunkedAndPriced(t *testing.T) {
	s := newFixtureSession(t)
	moneyBefore := s.Player.Money
	stockBefore := s.Markets["porto"].StockOf("grain")

	res, err := s.Buy("grain", 20)
	require.NoError(t, err)

	assert.InDelta(t, 20.0, res.Tons, 0.001)
	assert.Equal(t, 2, res.Chunks, "20t at lot size 10 should fill in 2 chunks")
	assert.Greater(t, res.Gold, 0)
	assert.Equal(t, moneyBefore-res.Gold, s.Player.Money)
	assert.InDelta(t, stockBefore-20, s.Markets["porto"].StockOf("grain"), 0.01)
	assert.InDelta(t, 20.0, s.Player.Cargo.TonsByGood()["grain"], 0.001)
}

func TestBuyWalksThePriceUp(t *testing.T) {
	s := newFixtureSession(t)

	r1, err := s.Buy("grain", 10)
	require.NoError(t, err)
	r2, err := s.Buy("grain", 10)
	require.NoError(t, err)

	assert.Greater(t, r2.AvgPrice, r1.AvgPrice, "successive buys should get more expensive")
}

func TestBuyCapsAtCapacityAndStock(t *testing.T) {
	s := newFixtureSession(t)

	res, err := s.Buy("grain", 10000)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Tons, s.Player.Ship.CapacityTons+0.001)
}

func TestSellRoundTrip(t *testing.T) {
	s := newFixtureSession(t)

	bought, err := s.Buy("grain", 10)
	require.NoError(t, err)

	sold, err := s.Sell("grain", 10)
	require.NoError(t, err)

	assert.InDelta(t, bought.Tons, sold.Tons, 0.001)
	assert.Less(t, sold.Gold, bought.Gold, "immediate round trip should lose the spread")
	assert.Empty(t, s.Player.Cargo.TonsByGood()["grain"])
}

func TestTradeRequiresDocking(t *testing.T) {
	s := newFixtureSession(t)
	s.MoveShip(world.Vec2{X: 5000, Y: 5000})
	require.Empty(t, s.Player.DockedCityID)

	_, err := s.Buy("grain", 5)
	assert.ErrorIs(t, err, ErrNotDocked)
	_, err = s.Sell("grain", 5)
	assert.ErrorIs(t, err, ErrNotDocked)
}

func TestSellWithoutCargo(t *testing.T) {
	s := newFixtureSession(t)
	_, err := s.Sell("rum", 5)
	assert.ErrorIs(t, err, ErrNoCargo)
}

func TestBuyUnknownGood(t *testing.T) {
	s := newFixtureSession(t)
	_, err := s.Buy("unobtainium", 5)
	assert.ErrorIs(t, err, ErrUnknownGood)
}

func TestBuyDiscountPerkLowersCost(t *testing.T) {
	plain := newFixtureSession(t)

	cfg := fixtureConfig()
	cfg.BuyDiscounts = map[string]float64{"food": 0.85}
	perked, err := NewSession(fixtureContent(), cfg)
	require.NoError(t, err)

	a, err := plain.Buy("grain", 10)
	require.NoError(t, err)
	b, err := perked.Buy("grain", 10)
	require.NoError(t, err)

	assert.Less(t, b.Gold, a.Gold, "category perk should cut the purchase price")
}

func TestHardDifficultyWidensSpread(t *testing.T) {
	normal := newFixtureSession(t)

	hardCfg := RunConfig{Difficulty: "hard", Seed: 42, StartCityID: "porto", StartingShipID: "sloop"}
	hardCfg.Normalize()
	hard, err := NewSession(fixtureContent(), hardCfg)
	require.NoError(t, err)

	nb, err := normal.Buy("grain", 10)
	require.NoError(t, err)
	hb, err := hard.Buy("grain", 10)
	require.NoError(t, err)
	assert.Greater(t, hb.AvgPrice, nb.AvgPrice, "hard mode buys should cost more per ton")
}

func TestForceNextDayRunsPipeline(t *testing.T) {
	s := newFixtureSession(t)
	money := s.Player.Money

	s.ForceNextDay()

	assert.Equal(t, 2, s.Day())
	assert.Equal(t, money-6, s.Player.Money, "skipped day must still charge upkeep")
}

func TestPausedSessionFreezes(t *testing.T) {
	s := newFixtureSession(t)

	s.SetPaused(true)
	s.Update(s.Cfg.DayLengthSec * 2)
	assert.Equal(t, 1, s.Day())

	s.SetPaused(false)
	s.Update(s.Cfg.DayLengthSec + 1)
	assert.Equal(t, 2, s.Day())
}

func TestEventLogRecordsDocking(t *testing.T) {
	s := newFixtureSession(t)

	s.MoveShip(world.Vec2{X: 5000, Y: 5000}) // out to sea
	s.MoveShip(world.Vec2{X: 500, Y: 300})   // into graincoast harbor

	events := s.RecentEvents(0)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, EventTravel, last.Category)
	assert.Contains(t, last.Message, "Graincoast")

	assert.Len(t, s.RecentEvents(1), 1)
}

func TestCombatLifecycle(t *testing.T) {
	s := newFixtureSession(t)
	require.NoError(t, s.EnterCombat("pirate"))
	assert.Error(t, s.EnterCombat("pirate"), "double combat entry")

	_, err := s.ResolveCombat()
	assert.ErrorIs(t, err, ErrCombatRunning)

	for i := 0; i < 1000 && !s.Combat.Finished(); i++ {
		s.Update(0.1) // drives enemy turns
		if s.Combat != nil && !s.Combat.Finished() {
			s.CombatAction("fire")
		}
	}
	require.True(t, s.Combat.Finished())

	moneyBefore := s.Player.Money
	xpBefore := s.Player.XP
	outcome := s.Combat.Outcome()

	rewards, err := s.ResolveCombat()
	require.NoError(t, err)
	assert.Nil(t, s.Combat)

	if outcome == "victory" {
		require.NotNil(t, rewards)
		assert.Equal(t, moneyBefore+rewards.Gold, s.Player.Money)
		assert.Greater(t, s.Player.XP, xpBefore)
	}
}

func TestCombatFreezesClock(t *testing.T) {
	s := newFixtureSession(t)
	require.NoError(t, s.EnterCombat("pirate"))

	day := s.Day()
	s.Update(s.Cfg.DayLengthSec * 3)
	assert.Equal(t, day, s.Day(), "clock advanced during combat")
}

func TestDefeatRestoresHullToMax(t *testing.T) {
	s := newFixtureSession(t)
	s.Player.Ship.HP = 24

	s.applyDefeat()

	assert.Equal(t, 2, s.Player.MasterLives)
	assert.Equal(t, s.Player.Ship.HPMax, s.Player.Ship.HP)
	assert.False(t, s.GameOver)
}

func TestDefeatSpendsMasterLife(t *testing.T) {
	s := newFixtureSession(t)
	s.Player.Cargo.AddLot("tools", 4)
	require.NoError(t, s.EnterCombat("pirate"))

	// Force the loss.
	s.Combat.Player.HP = 0
	s.CombatAction("fire") // rejected or not, Update will close it out
	s.Update(0.1)
	if !s.Combat.Finished() {
		// Death check runs on the next resolved action.
		for i := 0; i < 50 && !s.Combat.Finished(); i++ {
			s.Update(0.1)
			if s.Combat != nil && !s.Combat.Finished() {
				s.CombatAction("fire")
			}
		}
	}

	if s.Combat.Finished() && s.Combat.Outcome() == "defeat" {
		_, err := s.ResolveCombat()
		require.NoError(t, err)
		assert.Equal(t, 2, s.Player.MasterLives)
		assert.NotEmpty(t, s.Player.DockedCityID, "defeated ship should be towed to harbor")
		assert.Equal(t, s.Player.Ship.HPMax, s.Player.Ship.HP, "surviving a defeat must restore the hull to max")
		assert.InDelta(t, 4.0, s.Player.Cargo.TonsByGood()["tools"], 0.001, "cargo survives a defeat")
	}
}

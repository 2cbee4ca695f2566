package sim

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/seafall/tradewind/internal/combat"
	"github.com/seafall/tradewind/internal/content"
	"github.com/seafall/tradewind/internal/economy"
	"github.com/seafall/tradewind/internal/trade"
	"github.com/seafall/tradewind/internal/world"
)

// Session is one running game: the live world, every city market, the NPC
// trade layer, the player, and at most one active combat. All mutation goes
// through Update and the player-action methods; readers take the lock via
// Snapshot-style accessors.
type Session struct {
	mu sync.RWMutex

	Content *content.Content
	Cfg     RunConfig

	World   *world.World
	Player  *world.Player
	Markets map[string]*economy.MarketState

	Shipments []*trade.Shipment
	Supply    economy.SupplyIndex

	Clock  *GameClock
	Danger *world.DangerField
	Meter  world.EncounterMeter

	// Combat is non-nil while an encounter runs. The world clock freezes
	// for its duration.
	Combat       *combat.Engine
	combatEnemy  *content.EnemyDef
	combatDone   bool // rewards/penalties already applied
	GameOver     bool

	events []Event

	rng *rand.Rand
}

// NewSession builds a fresh game from loaded content and a normalized run
// config: world placement, seeded markets, the starting ship docked at the
// start city.
func NewSession(c *content.Content, cfg RunConfig) (*Session, error) {
	cfg.Normalize()

	shipDef, ok := c.Ships[cfg.StartingShipID]
	if !ok {
		// Fall back to the first defined ship so a missing config value
		// does not kill a new game.
		for _, sd := range c.Ships {
			shipDef = sd
			break
		}
		if shipDef == nil {
			return nil, fmt.Errorf("new session: no ship definitions loaded")
		}
	}

	w := &world.World{}
	for _, cd := range c.CitiesOrdered {
		w.Cities = append(w.Cities, &world.City{
			ID:           cd.ID,
			Name:         cd.Name,
			Pos:          world.Vec2{X: cd.X, Y: cd.Y},
			HarborRadius: cd.HarborRadius,
			CityTypeID:   cd.CityTypeID,
			MapID:        cd.MapID,
		})
	}
	if len(w.Cities) == 0 {
		return nil, fmt.Errorf("new session: no cities loaded")
	}

	startCity := w.City(cfg.StartCityID)
	if startCity == nil {
		startCity = w.Cities[0]
	}

	s := &Session{
		Content: c,
		Cfg:     cfg,
		World:   w,
		Markets: make(map[string]*economy.MarketState, len(w.Cities)),
		Supply:  make(economy.SupplyIndex),
		Clock:   NewGameClock(cfg.DayLengthSec),
		Danger:  world.NewDangerField(cfg.Seed),
		rng:     rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)^0x9E3779B97F4A7C15)),
	}

	for _, city := range w.Cities {
		m := economy.NewMarketState(city.ID)
		if ct := c.CityTypes[city.CityTypeID]; ct != nil {
			m.SeedInitial(ct, c.GoodsOrdered)
			economy.UpdateTopNeeds(m, ct, c.GoodsOrdered)
		}
		s.Markets[city.ID] = m
	}

	s.Player = &world.Player{
		Money:          cfg.StartingMoney,
		Houses:         make(map[string]bool),
		DockedCityID:   startCity.ID,
		MasterLives:    cfg.MasterLives,
		MasterLivesMax: cfg.MasterLives,
		Ship: &world.Ship{
			TypeID:       shipDef.ID,
			Name:         shipDef.Name,
			Pos:          startCity.Pos,
			Speed:        shipDef.Speed,
			CapacityTons: shipDef.CapacityTons,
			HP:           shipDef.Combat.HPMax,
			HPMax:        shipDef.Combat.HPMax,
			CrewMax:      shipDef.CrewMax,
			CrewRequired: shipDef.CrewRequired,
			UpkeepPerDay: shipDef.UpkeepPerDay,
		},
	}

	slog.Info("session started",
		"difficulty", cfg.Difficulty,
		"seed", cfg.Seed,
		"cities", len(w.Cities),
		"start_city", startCity.ID,
		"ship", shipDef.ID,
		"money", cfg.StartingMoney)
	return s, nil
}

// Day is the current sim day.
func (s *Session) Day() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Clock.Day
}

// Update advances the session by dt real seconds: the clock, any day
// rollovers, sailing danger, and the active combat. Frozen while a combat
// waits on player input and after game over.
func (s *Session) Update(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.GameOver || s.Clock.Paused {
		return
	}

	if s.Combat != nil {
		s.Combat.Update()
		return
	}

	// A long stall can roll several days; each runs under its own day
	// number so the deterministic per-day streams stay aligned.
	days := s.Clock.Update(dt)
	for i := days - 1; i >= 0; i-- {
		s.runDay(s.Clock.Day - i)
	}

	// The encounter meter only charges at sea.
	if s.Player.DockedCityID == "" {
		if s.Meter.Update(s.Danger, s.Player.Ship.Pos, dt) {
			s.startEncounter()
		}
	}
}

// SetPaused freezes or resumes the whole session, combat included.
func (s *Session) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Clock.Paused = paused
}

// ForceNextDay skips the rest of the current day and runs the next day
// pipeline immediately. No-op during combat or after game over.
func (s *Session) ForceNextDay() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.GameOver || s.Combat != nil {
		return
	}
	s.Clock.ForceNextDay()
	s.runDay(s.Clock.Day)
}

// runDay executes the full day pipeline in fixed order: city market ticks,
// the NPC trade pass, need recomputation, then player-side upkeep.
func (s *Session) runDay(day int) {
	shocks := 0
	disruptions := 0
	for _, city := range s.Content.CitiesOrdered {
		m, ok := s.Markets[city.ID]
		if !ok {
			continue
		}
		sum := economy.TickCity(m, city, s.Content.CityTypes[city.CityTypeID], s.Content.GoodsOrdered, s.Supply, day, s.Cfg.EventFreqMult)
		if sum.ShockCategory != "" {
			shocks++
			s.pushEvent(EventMarket, fmt.Sprintf("%s shortage hits %s", sum.ShockCategory, city.ID))
			slog.Debug("market shock",
				"day", day, "city", city.ID,
				"category", string(sum.ShockCategory),
				"factor", fmt.Sprintf("%.2f", sum.ShockFactor))
		}
		if sum.Disrupted {
			disruptions++
		}
	}

	var report trade.TickReport
	s.Shipments, report = trade.Tick(day, s.Content, s.Markets, s.Shipments)

	for _, city := range s.Content.CitiesOrdered {
		if m, ok := s.Markets[city.ID]; ok {
			economy.UpdateTopNeeds(m, s.Content.CityTypes[city.CityTypeID], s.Content.GoodsOrdered)
		}
	}

	s.ageCargo()

	if up := s.Player.Ship.UpkeepPerDay; up > 0 {
		s.Player.Money -= up
		if s.Player.Money < 0 {
			s.Player.Money = 0
		}
	}

	slog.Info("day complete",
		"day", day,
		"shocks", shocks,
		"disruptions", disruptions,
		"npc_deals", report.NewDeals,
		"npc_arrived", report.Arrived,
		"in_transit", report.InTransit,
		"money", humanize.Comma(int64(s.Player.Money)))
}

// ageCargo ages every lot one day and applies per-good spoilage to the
// player's hold, mirroring what warehouses suffer.
func (s *Session) ageCargo() {
	s.Player.Cargo.AgeOneDay()

	kept := s.Player.Cargo.Lots[:0]
	for _, lot := range s.Player.Cargo.Lots {
		if g, ok := s.Content.Goods[lot.GoodID]; ok && g.SpoilRatePerDay > 0 {
			lot.QtyTons = economy.Round3(lot.QtyTons * (1.0 - g.SpoilRatePerDay))
		}
		if lot.QtyTons > 0.0001 {
			kept = append(kept, lot)
		}
	}
	s.Player.Cargo.Lots = kept
}

// MoveShip sets the player ship position and resolves docking: inside a
// harbor radius the ship is docked, otherwise it is at sea. No-op during
// combat.
func (s *Session) MoveShip(pos world.Vec2) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Combat != nil || s.GameOver {
		return
	}
	s.Player.Ship.Pos = pos
	if city := s.World.FindCityInRange(pos); city != nil {
		if s.Player.DockedCityID != city.ID {
			s.pushEvent(EventTravel, fmt.Sprintf("docked at %s", city.Name))
			slog.Info("docked", "city", city.ID, "day", s.Clock.Day)
		}
		s.Player.DockedCityID = city.ID
	} else {
		s.Player.DockedCityID = ""
	}
}

// addXP grants experience, clamped to the progression ceiling. Caller
// holds the lock.
func (s *Session) addXP(n int) {
	if n <= 0 {
		return
	}
	before, _, _ := LevelForXP(s.Player.XP)
	s.Player.XP = CapXP(s.Player.XP + n)
	after, _, _ := LevelForXP(s.Player.XP)
	if after > before {
		s.pushEvent(EventProgress, fmt.Sprintf("reached level %d", after))
		slog.Info("level up", "level", after, "xp", s.Player.XP)
	}
}

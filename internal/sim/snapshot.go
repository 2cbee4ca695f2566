package sim

import (
	"sort"

	"github.com/seafall/tradewind/internal/economy"
)

// Snapshot DTOs for the read-only HTTP API. Every accessor copies under the
// read lock so handlers never see torn state.

// StatusSnapshot is the top-level session summary.
type StatusSnapshot struct {
	Day        int     `json:"day"`
	TimeOfDay  string  `json:"time_of_day"`
	Difficulty string  `json:"difficulty"`
	Seed       int64   `json:"seed"`
	Cities     int     `json:"cities"`
	InTransit  int     `json:"shipments_in_transit"`
	InCombat   bool    `json:"in_combat"`
	GameOver   bool    `json:"game_over"`
	Danger     float64 `json:"danger_here"`
}

// CitySnapshot is one city with its market headline.
type CitySnapshot struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	TypeID   string   `json:"type_id"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	TopNeeds []string `json:"top_needs"`
}

// GoodQuote is one market line: physical stock plus the prices the player
// would actually see.
type GoodQuote struct {
	GoodID string  `json:"good_id"`
	Stock  float64 `json:"stock"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
}

// MarketSnapshot is the full quote board of one city.
type MarketSnapshot struct {
	CityID   string      `json:"city_id"`
	TopNeeds []string    `json:"top_needs"`
	Quotes   []GoodQuote `json:"quotes"`
}

// ShipmentSnapshot is one in-transit NPC shipment.
type ShipmentSnapshot struct {
	ID        string  `json:"id"`
	SrcCityID string  `json:"src_city_id"`
	DstCityID string  `json:"dst_city_id"`
	GoodID    string  `json:"good_id"`
	Qty       float64 `json:"qty"`
	ETADays   int     `json:"eta_days"`
}

// PlayerSnapshot is the player panel.
type PlayerSnapshot struct {
	Money        int                `json:"money"`
	XP           int                `json:"xp"`
	Level        int                `json:"level"`
	XPCur        int                `json:"xp_cur"`
	XPNeed       int                `json:"xp_need"`
	MasterLives  int                `json:"master_lives"`
	DockedCityID string             `json:"docked_city_id,omitempty"`
	ShipTypeID   string             `json:"ship_type_id"`
	HP           int                `json:"hp"`
	HPMax        int                `json:"hp_max"`
	CargoTons    float64            `json:"cargo_tons"`
	CapacityTons float64            `json:"capacity_tons"`
	Cargo        map[string]float64 `json:"cargo"`
}

// Status returns the session summary.
func (s *Session) Status() StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StatusSnapshot{
		Day:        s.Clock.Day,
		TimeOfDay:  s.Clock.TimeOfDay(),
		Difficulty: s.Cfg.Difficulty,
		Seed:       s.Cfg.Seed,
		Cities:     len(s.World.Cities),
		InTransit:  len(s.Shipments),
		InCombat:   s.Combat != nil,
		GameOver:   s.GameOver,
		Danger:     s.Danger.DangerAt(s.Player.Ship.Pos),
	}
}

// Cities returns every city, sorted by id.
func (s *Session) Cities() []CitySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CitySnapshot, 0, len(s.World.Cities))
	for _, c := range s.World.Cities {
		snap := CitySnapshot{
			ID:     c.ID,
			Name:   c.Name,
			TypeID: c.CityTypeID,
			X:      c.Pos.X,
			Y:      c.Pos.Y,
		}
		if m, ok := s.Markets[c.ID]; ok {
			snap.TopNeeds = append([]string(nil), m.TopNeeds...)
		}
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Market returns the quote board for a city, or nil when unknown.
func (s *Session) Market(cityID string) *MarketSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.Markets[cityID]
	if !ok {
		return nil
	}
	ct := s.Content.CityType(cityID)

	snap := &MarketSnapshot{
		CityID:   cityID,
		TopNeeds: append([]string(nil), m.TopNeeds...),
	}
	for _, g := range s.Content.GoodsOrdered {
		target := economy.TargetFor(ct, g)
		bid, ask := economy.ComputeBidAsk(g.BasePrice, m.PriceStockOf(g.ID), target, ct.Need(g.Category))
		snap.Quotes = append(snap.Quotes, GoodQuote{
			GoodID: g.ID,
			Stock:  m.StockOf(g.ID),
			Bid:    bid,
			Ask:    ask,
		})
	}
	return snap
}

// ShipmentList returns all in-transit shipments.
func (s *Session) ShipmentList() []ShipmentSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ShipmentSnapshot, 0, len(s.Shipments))
	for _, sh := range s.Shipments {
		out = append(out, ShipmentSnapshot{
			ID:        sh.ID,
			SrcCityID: sh.SrcCityID,
			DstCityID: sh.DstCityID,
			GoodID:    sh.GoodID,
			Qty:       sh.Qty,
			ETADays:   sh.ETADays,
		})
	}
	return out
}

// PlayerState returns the player panel.
func (s *Session) PlayerState() PlayerSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	level, cur, need := LevelForXP(s.Player.XP)
	return PlayerSnapshot{
		Money:        s.Player.Money,
		XP:           s.Player.XP,
		Level:        level,
		XPCur:        cur,
		XPNeed:       need,
		MasterLives:  s.Player.MasterLives,
		DockedCityID: s.Player.DockedCityID,
		ShipTypeID:   s.Player.Ship.TypeID,
		HP:           s.Player.Ship.HP,
		HPMax:        s.Player.Ship.HPMax,
		CargoTons:    s.Player.Cargo.TotalTons(),
		CapacityTons: s.Player.Ship.CapacityTons,
		Cargo:        s.Player.Cargo.TonsByGood(),
	}
}

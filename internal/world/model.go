// Package world holds the runtime world model: cities on the sea map, the
// player's ship and cargo, and the encounter danger field.
package world

import "math"

// Vec2 is a 2D map position in pixels.
type Vec2 struct {
	X float64
	Y float64
}

// Dist returns the euclidean distance to another point.
func (v Vec2) Dist(o Vec2) float64 {
	dx, dy := v.X-o.X, v.Y-o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// City is an immutable placement on the map. Market state lives separately
// and is associated by id.
type City struct {
	ID           string
	Name         string
	Pos          Vec2
	HarborRadius float64
	CityTypeID   string
	MapID        string
}

// World is the set of cities on the current map.
type World struct {
	Cities []*City
}

// FindCityInRange returns the first city whose harbor contains pos, or nil.
func (w *World) FindCityInRange(pos Vec2) *City {
	for _, c := range w.Cities {
		if c.Pos.Dist(pos) <= c.HarborRadius {
			return c
		}
	}
	return nil
}

// City returns a city by id, or nil.
func (w *World) City(id string) *City {
	for _, c := range w.Cities {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Ship is the player's vessel at runtime. Definition stats come from
// content; HP is the only combat-mutable field.
type Ship struct {
	TypeID       string
	Name         string
	Pos          Vec2
	Speed        float64
	CapacityTons float64

	HP    int
	HPMax int

	CrewMax      int
	CrewRequired int
	UpkeepPerDay int
}

// CargoLot is one acquisition of a good, aged daily. Lots are consumed
// oldest-first.
type CargoLot struct {
	GoodID  string
	QtyTons float64
	AgeDays int
}

// CargoHold is the ship's FIFO cargo inventory.
type CargoHold struct {
	Lots []*CargoLot
}

// TotalTons sums all lots.
func (h *CargoHold) TotalTons() float64 {
	total := 0.0
	for _, l := range h.Lots {
		total += l.QtyTons
	}
	return total
}

// AddLot appends a fresh lot. Non-positive quantities are ignored.
func (h *CargoHold) AddLot(goodID string, qtyTons float64) {
	if qtyTons <= 0 {
		return
	}
	h.Lots = append(h.Lots, &CargoLot{GoodID: goodID, QtyTons: qtyTons})
}

// RemoveFIFO takes up to qtyTons of a good from the oldest lots first and
// returns the amount actually removed.
func (h *CargoHold) RemoveFIFO(goodID string, qtyTons float64) float64 {
	if qtyTons <= 0 {
		return 0
	}

	removed := 0.0
	kept := h.Lots[:0]
	for _, lot := range h.Lots {
		if lot.GoodID != goodID || removed >= qtyTons {
			kept = append(kept, lot)
			continue
		}
		take := math.Min(lot.QtyTons, qtyTons-removed)
		lot.QtyTons -= take
		removed += take
		if lot.QtyTons > 0.0001 {
			kept = append(kept, lot)
		}
	}
	h.Lots = kept
	return removed
}

// TonsByGood aggregates lot quantities per good id.
func (h *CargoHold) TonsByGood() map[string]float64 {
	out := make(map[string]float64)
	for _, l := range h.Lots {
		out[l.GoodID] += l.QtyTons
	}
	return out
}

// AgeOneDay increments the age of every lot. Called on each day rollover.
func (h *CargoHold) AgeOneDay() {
	for _, l := range h.Lots {
		l.AgeDays++
	}
}

// Player is the human-controlled state of a session.
type Player struct {
	Money        int
	XP           int
	Houses       map[string]bool // city ids; reserved for property ownership
	DockedCityID string          // empty while at sea
	Ship         *Ship
	Cargo        CargoHold

	MasterLives    int
	MasterLivesMax int
}

// ClampMasterLives normalizes the extra-lives pair after construction or
// load: max is at least 1, current stays within [0, max].
func (p *Player) ClampMasterLives() {
	if p.MasterLivesMax <= 0 {
		p.MasterLivesMax = 3
	}
	if p.MasterLives < 0 {
		p.MasterLives = 0
	}
	if p.MasterLives > p.MasterLivesMax {
		p.MasterLives = p.MasterLivesMax
	}
}

// FreeCapacity is the unused cargo space in tons.
func (p *Player) FreeCapacity() float64 {
	return math.Max(0, p.Ship.CapacityTons-p.Cargo.TotalTons())
}

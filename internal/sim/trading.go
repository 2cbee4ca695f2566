package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/seafall/tradewind/internal/content"
	"github.com/seafall/tradewind/internal/economy"
	"github.com/seafall/tradewind/internal/world"
)

// Player trade errors. Callers match with errors.Is.
var (
	ErrNotDocked   = errors.New("not docked at a city")
	ErrUnknownGood = errors.New("unknown good")
	ErrNoStock     = errors.New("market has no stock")
	ErrNoCargo     = errors.New("no such cargo aboard")
	ErrNoFunds     = errors.New("insufficient funds")
	ErrNoCapacity  = errors.New("no cargo capacity")
)

// Haggling margin on purchases: the effective buy price sits slightly under
// the posted ask.
const buyDiscount = 0.98

// TradeResult reports what a buy or sell actually moved after chunking and
// all the caps.
type TradeResult struct {
	GoodID   string
	Tons     float64
	Gold     int     // total paid or received
	AvgPrice float64 // gold per ton actually realized
	Chunks   int
}

// buyPriceMult combines the haggling discount, the difficulty spread, and
// any per-category perk from the run config.
func (s *Session) buyPriceMult(cat content.Category) float64 {
	mult := buyDiscount * s.Cfg.PriceSpreadMult
	if perk, ok := s.Cfg.BuyDiscounts[string(cat)]; ok && perk > 0 && perk <= 1 {
		mult *= perk
	}
	return mult
}

// Buy purchases up to wantTons of a good at the docked city. The order
// executes in lot-sized chunks and the market re-prices between chunks, so
// large orders walk the price up against the buyer. Partial fills are not
// an error.
func (s *Session) Buy(goodID string, wantTons float64) (TradeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := TradeResult{GoodID: goodID}

	city, m, g, err := s.tradeContext(goodID)
	if err != nil {
		return res, err
	}
	ct := s.Content.CityTypes[city.CityTypeID]
	if ct == nil {
		return res, fmt.Errorf("buy %s: %w", goodID, ErrNotDocked)
	}

	if m.StockOf(goodID) <= 0 {
		return res, fmt.Errorf("buy %s at %s: %w", goodID, city.ID, ErrNoStock)
	}
	if s.Player.FreeCapacity() <= 0 {
		return res, fmt.Errorf("buy %s: %w", goodID, ErrNoCapacity)
	}

	lot := ct.LotSizeTons
	if lot <= 0 {
		lot = 1
	}
	immediacy := economy.TradeImmediacy(ct.MarketSize)
	target := economy.TargetFor(ct, g)
	need := ct.Need(g.Category)

	totalCost := 0.0
	remaining := wantTons

	for remaining > 0 {
		chunk := math.Min(lot, remaining)
		chunk = math.Min(chunk, m.StockOf(goodID))
		chunk = math.Min(chunk, s.Player.FreeCapacity()-res.Tons)
		if chunk < 0.001 {
			break
		}

		_, ask := economy.ComputeBidAsk(g.BasePrice, m.PriceStockOf(goodID), target, need)
		price := ask * s.buyPriceMult(g.Category)

		cost := price * chunk
		affordable := float64(s.Player.Money) - totalCost
		if cost > affordable {
			chunk = affordable / price
			if chunk < 0.001 {
				if res.Chunks == 0 {
					return res, fmt.Errorf("buy %s: %w", goodID, ErrNoFunds)
				}
				break
			}
			cost = price * chunk
		}

		m.Stock[goodID] = economy.Round3(m.StockOf(goodID) - chunk)
		m.NudgePriceStock(goodID, immediacy)

		totalCost += cost
		res.Tons += chunk
		res.Chunks++
		remaining -= chunk
	}

	if res.Tons <= 0 {
		return res, fmt.Errorf("buy %s at %s: %w", goodID, city.ID, ErrNoStock)
	}

	res.Tons = economy.Round3(res.Tons)
	res.Gold = int(math.Ceil(totalCost))
	res.AvgPrice = totalCost / res.Tons

	s.Player.Money -= res.Gold
	s.Player.Cargo.AddLot(goodID, res.Tons)

	slog.Info("bought",
		"city", city.ID, "good", goodID,
		"tons", res.Tons, "gold", res.Gold, "chunks", res.Chunks)
	return res, nil
}

// Sell unloads up to wantTons of a good at the docked city, oldest lots
// first. Chunked like Buy: dumping a large order walks the bid down.
func (s *Session) Sell(goodID string, wantTons float64) (TradeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := TradeResult{GoodID: goodID}

	city, m, g, err := s.tradeContext(goodID)
	if err != nil {
		return res, err
	}
	ct := s.Content.CityTypes[city.CityTypeID]
	if ct == nil {
		return res, fmt.Errorf("sell %s: %w", goodID, ErrNotDocked)
	}

	aboard := s.Player.Cargo.TonsByGood()[goodID]
	if aboard <= 0 {
		return res, fmt.Errorf("sell %s: %w", goodID, ErrNoCargo)
	}

	lot := ct.LotSizeTons
	if lot <= 0 {
		lot = 1
	}
	immediacy := economy.TradeImmediacy(ct.MarketSize)
	target := economy.TargetFor(ct, g)
	need := ct.Need(g.Category)

	totalProceeds := 0.0
	remaining := math.Min(wantTons, aboard)

	for remaining > 0.001 {
		chunk := math.Min(lot, remaining)

		bid, _ := economy.ComputeBidAsk(g.BasePrice, m.PriceStockOf(goodID), target, need)
		bid /= s.Cfg.PriceSpreadMult

		removed := s.Player.Cargo.RemoveFIFO(goodID, chunk)
		if removed <= 0 {
			break
		}

		m.Stock[goodID] = economy.Round3(m.StockOf(goodID) + removed)
		m.NudgePriceStock(goodID, immediacy)

		totalProceeds += bid * removed
		res.Tons += removed
		res.Chunks++
		remaining -= removed
	}

	if res.Tons <= 0 {
		return res, fmt.Errorf("sell %s: %w", goodID, ErrNoCargo)
	}

	res.Tons = economy.Round3(res.Tons)
	res.Gold = int(math.Floor(totalProceeds))
	res.AvgPrice = totalProceeds / res.Tons

	s.Player.Money += res.Gold

	slog.Info("sold",
		"city", city.ID, "good", goodID,
		"tons", res.Tons, "gold", res.Gold, "chunks", res.Chunks)
	return res, nil
}

// tradeContext resolves the docked city, its market, and the good, with the
// shared validation both trade directions need.
func (s *Session) tradeContext(goodID string) (*world.City, *economy.MarketState, *content.GoodDef, error) {
	if s.Player.DockedCityID == "" {
		return nil, nil, nil, ErrNotDocked
	}
	city := s.World.City(s.Player.DockedCityID)
	if city == nil {
		return nil, nil, nil, ErrNotDocked
	}
	m, ok := s.Markets[city.ID]
	if !ok {
		return nil, nil, nil, ErrNotDocked
	}
	g, ok := s.Content.Goods[goodID]
	if !ok {
		return nil, nil, nil, fmt.Errorf("%q: %w", goodID, ErrUnknownGood)
	}
	return city, m, g, nil
}

package economy

import (
	"hash/fnv"

	"github.com/seafall/tradewind/internal/content"
)

// MarketState is the mutable per-city market. Stock is the physical
// inventory; PriceStock lags behind it and is what pricing reads, so
// displayed prices react slower than raw stock moves.
type MarketState struct {
	CityID     string
	Stock      map[string]float64 // good id -> tons, >= 0
	PriceStock map[string]float64 // good id -> tons, >= 0, lags Stock
	TopNeeds   []string           // up to 3 good ids, most scarce first
}

// NewMarketState creates an empty market for a city.
func NewMarketState(cityID string) *MarketState {
	return &MarketState{
		CityID:     cityID,
		Stock:      make(map[string]float64),
		PriceStock: make(map[string]float64),
	}
}

// StockOf returns the physical stock of a good, 0 when untracked.
func (m *MarketState) StockOf(goodID string) float64 {
	return m.Stock[goodID]
}

// PriceStockOf returns the perceived stock used for pricing, falling back
// to physical stock for goods the lag has never seen.
func (m *MarketState) PriceStockOf(goodID string) float64 {
	if ps, ok := m.PriceStock[goodID]; ok {
		return ps
	}
	return m.Stock[goodID]
}

// NudgePriceStock pulls PriceStock toward current Stock by pct. Player
// trades use market-size-dependent immediacy here; the daily tick uses the
// slow smoothing constant.
func (m *MarketState) NudgePriceStock(goodID string, pct float64) {
	stock := m.Stock[goodID]
	ps := m.PriceStockOf(goodID)
	ps += pct * (stock - ps)
	if ps < 0 {
		ps = 0
	}
	m.PriceStock[goodID] = round3(ps)
}

// SeedInitial fills a fresh market from the city type's initial stock
// multiplier, with a deterministic per-(city,good) tweak of up to ±10% so
// cities of the same type do not start identical.
func (m *MarketState) SeedInitial(ct *content.CityTypeDef, goods []*content.GoodDef) {
	for _, g := range goods {
		target := TargetFor(ct, g)
		stock := target * ct.InitialStockMultiplier

		tweak := float64(int(seedHash(m.CityID+g.ID)%21)-10) / 100.0
		stock *= 1.0 + tweak

		if stock < 0 {
			stock = 0
		}
		m.Stock[g.ID] = round3(stock)
		m.PriceStock[g.ID] = m.Stock[g.ID]
	}
}

func seedHash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// marketSizeParams returns (capacityMult, prodBase, consBase).
func marketSizeParams(ms content.MarketSize) (float64, float64, float64) {
	switch ms {
	case content.MarketSmall:
		return 1.25, 0.08, 0.09
	case content.MarketLarge:
		return 1.60, 0.12, 0.11
	default:
		return 1.40, 0.10, 0.10
	}
}

// TradeImmediacy is how hard a single player transaction yanks PriceStock
// toward Stock: shallow markets move on big orders, deep ones barely notice.
func TradeImmediacy(ms content.MarketSize) float64 {
	switch ms {
	case content.MarketSmall:
		return 0.60
	case content.MarketLarge:
		return 0.25
	default:
		return 0.40
	}
}

// productionBias is the city-type specialization: >1 produces more of the
// category, <1 less.
func productionBias(cityTypeID string, cat content.Category) float64 {
	var table map[content.Category]float64
	switch cityTypeID {
	case "farm_city":
		table = map[content.Category]float64{
			content.CategoryFood: 1.60, content.CategoryRaw: 1.05,
			content.CategoryCraft: 0.70, content.CategorySea: 0.55,
			content.CategoryLuxury: 0.70,
		}
	case "mining_city":
		table = map[content.Category]float64{
			content.CategoryRaw: 1.70, content.CategoryCraft: 0.85,
			content.CategoryFood: 0.65, content.CategorySea: 0.55,
			content.CategoryLuxury: 0.55,
		}
	case "harbor_city":
		table = map[content.Category]float64{
			content.CategorySea: 1.55, content.CategoryCraft: 1.25,
			content.CategoryFood: 0.95, content.CategoryRaw: 0.95,
			content.CategoryLuxury: 1.05,
		}
	default:
		return 1.0
	}
	if b, ok := table[cat]; ok {
		return b
	}
	return 1.0
}

// externalFlowParams returns (importMult, exportMult) for a city type.
// Harbors trade more in both directions; farm and mining towns lean export.
func externalFlowParams(cityTypeID string) (float64, float64) {
	switch cityTypeID {
	case "harbor_city":
		return 1.25, 1.25
	case "farm_city":
		return 0.85, 1.20
	case "mining_city":
		return 0.85, 1.25
	default:
		return 1.00, 1.00
	}
}

// categoryExternalBias returns (importBias, exportBias) per category for a
// city type: specializations export what they make and import what they lack.
func categoryExternalBias(cityTypeID string, cat content.Category) (float64, float64) {
	type pair struct{ imp, exp float64 }
	var table map[content.Category]pair
	switch cityTypeID {
	case "farm_city":
		table = map[content.Category]pair{
			content.CategoryFood:   {0.45, 1.55},
			content.CategoryRaw:    {1.05, 1.00},
			content.CategoryCraft:  {1.20, 0.70},
			content.CategorySea:    {1.10, 0.60},
			content.CategoryLuxury: {1.15, 0.65},
		}
	case "mining_city":
		table = map[content.Category]pair{
			content.CategoryFood:   {1.25, 0.65},
			content.CategoryRaw:    {0.50, 1.70},
			content.CategoryCraft:  {1.10, 0.75},
			content.CategorySea:    {1.10, 0.60},
			content.CategoryLuxury: {1.20, 0.60},
		}
	case "harbor_city":
		table = map[content.Category]pair{
			content.CategoryFood:   {0.95, 0.90},
			content.CategoryRaw:    {0.95, 0.90},
			content.CategoryCraft:  {0.90, 1.15},
			content.CategorySea:    {0.70, 1.35},
			content.CategoryLuxury: {0.85, 1.10},
		}
	default:
		return 1.0, 1.0
	}
	if p, ok := table[cat]; ok {
		return p.imp, p.exp
	}
	return 1.0, 1.0
}

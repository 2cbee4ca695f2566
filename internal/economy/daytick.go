package economy

import (
	"math"
	"math/rand/v2"

	"github.com/seafall/tradewind/internal/content"
)

// Daily tick tuning. Shock and disruption probabilities are scaled by the
// run config's event frequency multiplier.
const (
	baseShockChance  = 0.06 // per city per day
	shockLossMin     = 0.25
	shockLossMax     = 0.55
	priceStockSmooth = 0.18 // how fast PriceStock follows Stock

	disruptionChance = 0.10 // external flows break down
	disruptionMin    = 0.15
	disruptionMax    = 0.55
)

// SupplyKey addresses the persistent per-(city, category) supply index.
type SupplyKey struct {
	CityID   string
	Category content.Category
}

// SupplyIndex is a random-walk model of exogenous supply conditions
// (harvest variability, fishing luck). Values live in [0.55, 1.55] and are
// owned by the session so saves can restore them.
type SupplyIndex map[SupplyKey]float64

// CityTickSummary reports what the tick did to one city, for logging and
// event feeds.
type CityTickSummary struct {
	ShockCategory content.Category // empty when no shock hit
	ShockFactor   float64
	Disrupted     bool
}

// TickCity runs one day of stock evolution for a single city, in fixed
// order per good: spoilage, target/capacity, supply index, production,
// consumption, shock, clamp, price-stock lag. External import/export flows
// run after the per-good loop. Deterministic given (city, day).
func TickCity(
	m *MarketState,
	city *content.CityDef,
	ct *content.CityTypeDef,
	goods []*content.GoodDef,
	supply SupplyIndex,
	day int,
	eventFreqMult float64,
) CityTickSummary {
	var sum CityTickSummary
	if ct == nil {
		// A city without a resolvable type is skipped; the global tick
		// must keep running.
		return sum
	}

	rng := CityDayRNG(city.ID, day)
	capMult, prodBase, consBase := marketSizeParams(ct.MarketSize)

	// Shock roll happens up front so every good of the chosen category is
	// hit by the same factor.
	shockFactor := 1.0
	var shockCat content.Category
	if rng.Float64() < baseShockChance*eventFreqMult {
		// Food is the most likely casualty (failed harvest, blockade).
		weights := []float64{2.2, 1.0, 1.0, 1.0, 0.8}
		shockCat = content.Categories[weightedPick(rng, weights)]
		shockFactor = 1.0 - uniform(rng, shockLossMin, shockLossMax)
		sum.ShockCategory = shockCat
		sum.ShockFactor = shockFactor
	}

	for _, g := range goods {
		stock := m.StockOf(g.ID)
		ps := m.PriceStockOf(g.ID)

		// 1) Spoilage.
		if g.SpoilRatePerDay > 0 && stock > 0 {
			stock = math.Max(0, stock*(1.0-g.SpoilRatePerDay))
		}

		// 2) Target and capacity.
		target := TargetFor(ct, g)
		capacity := math.Max(2.0, target*capMult)

		// 3) Production, throttled as the warehouse fills.
		prodNoise := uniform(rng, 0.75, 1.25)
		idx := stepSupplyIndex(supply, rng, city.ID, g.Category)
		if g.Category == content.CategoryFood {
			// Food rides the supply swings harder.
			idx = math.Pow(idx, 1.35)
		}
		prod := prodBase * productionBias(ct.ID, g.Category) * prodNoise * idx * capacity * (1.0 - stock/capacity)
		prod = math.Max(0, prod)

		// 4) Consumption, scaled by need; cannot exceed what exists today.
		needW := NeedWeight(ct.Need(g.Category))
		cons := consBase * needW * uniform(rng, 0.80, 1.30) * capacity
		cons = math.Min(cons, stock+prod)

		// 5) Shock applies to the post-production/consumption stock.
		if shockCat != "" && shockCat == g.Category {
			stock = math.Max(0, stock+prod-cons) * shockFactor
		} else {
			stock = math.Max(0, stock+prod-cons)
		}

		// 6) Warehouse limit.
		stock = math.Min(stock, capacity)

		// 7) Price stock follows lazily.
		ps += priceStockSmooth * (stock - ps)

		m.Stock[g.ID] = round3(stock)
		m.PriceStock[g.ID] = round3(math.Max(ps, 0))
	}

	sum.Disrupted = applyExternalFlows(m, rng, ct, goods, eventFreqMult)
	return sum
}

// stepSupplyIndex advances the random walk: small daily drift, 8% chance of
// a larger jump, clamped to [0.55, 1.55]. The stored (unamplified) value is
// what persists.
func stepSupplyIndex(supply SupplyIndex, rng *rand.Rand, cityID string, cat content.Category) float64 {
	key := SupplyKey{CityID: cityID, Category: cat}
	v, ok := supply[key]
	if !ok {
		v = 1.0
	}
	v += uniform(rng, -0.06, 0.06)
	if rng.Float64() < 0.08 {
		v += uniform(rng, -0.18, 0.18)
	}
	v = clamp(v, 0.55, 1.55)
	supply[key] = v
	return v
}

// applyExternalFlows models off-map trade partners: imports only partially
// refill a shortage, exports drain gluts, and a disruption day scales both
// down to 15–55% of normal. Returns whether a disruption hit.
func applyExternalFlows(m *MarketState, rng *rand.Rand, ct *content.CityTypeDef, goods []*content.GoodDef, eventFreqMult float64) bool {
	importMult, exportMult := externalFlowParams(ct.ID)

	disrupted := rng.Float64() < disruptionChance*eventFreqMult
	disruptionFactor := 1.0
	if disrupted {
		disruptionFactor = uniform(rng, disruptionMin, disruptionMax)
	}

	for _, g := range goods {
		target := TargetFor(ct, g)
		stock := m.StockOf(g.ID)
		impBias, expBias := categoryExternalBias(ct.ID, g.Category)

		// Import: only when well under target, and never past 90% of it.
		importCap := 0.06 * target * importMult * impBias
		importCap *= uniform(rng, 0.55, 1.55)
		importCap *= disruptionFactor

		if stock < 0.70*target && importCap > 0 {
			w := NeedWeight(ct.Need(g.Category))
			qty := importCap * (0.6 + 0.5*w)
			qty = math.Min(qty, math.Max(0, 0.90*target-stock))
			if qty > 0 {
				m.Stock[g.ID] = round3(stock + qty)
				stock = m.Stock[g.ID]
			}
		}

		// Export: only when well over target, down to 105% of it.
		exportCap := 0.07 * target * exportMult * expBias
		exportCap *= uniform(rng, 0.55, 1.55)
		exportCap *= disruptionFactor

		if stock > 1.10*target && exportCap > 0 {
			qty := math.Min(exportCap, stock-1.05*target)
			if qty > 0 {
				m.Stock[g.ID] = round3(stock - qty)
			}
		}
	}
	return disrupted
}

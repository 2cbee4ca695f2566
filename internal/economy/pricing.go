// Package economy implements the per-city market simulation: stock
// evolution on the daily tick, need-driven bid/ask pricing, and top-needs
// scoring. All stock values are tons, rounded to 3 decimals after each step.
package economy

import (
	"math"

	"github.com/seafall/tradewind/internal/content"
)

// Price multipliers by need level. Unknown levels fall back to normal.
func bidMult(need content.NeedLevel) float64 {
	switch need {
	case content.NeedCritical:
		return 0.95
	case content.NeedHigh:
		return 0.85
	case content.NeedNormal:
		return 0.75
	case content.NeedLow:
		return 0.35
	case content.NeedIrrelevant:
		return 0.10
	default:
		return 0.75
	}
}

func askMult(need content.NeedLevel) float64 {
	switch need {
	case content.NeedCritical:
		return 1.20
	case content.NeedHigh:
		return 1.15
	case content.NeedNormal:
		return 1.10
	case content.NeedLow:
		return 1.50
	case content.NeedIrrelevant:
		return 3.50
	default:
		return 1.10
	}
}

// NeedTargetMult scales a good's base target stock by how badly the city
// wants its category.
func NeedTargetMult(need content.NeedLevel) float64 {
	switch need {
	case content.NeedCritical:
		return 1.8
	case content.NeedHigh:
		return 1.3
	case content.NeedNormal:
		return 1.0
	case content.NeedLow:
		return 0.4
	case content.NeedIrrelevant:
		return 0.1
	default:
		return 1.0
	}
}

// NeedWeight drives consumption volume and top-needs scoring.
func NeedWeight(need content.NeedLevel) float64 {
	switch need {
	case content.NeedCritical:
		return 1.75
	case content.NeedHigh:
		return 1.35
	case content.NeedNormal:
		return 1.00
	case content.NeedLow:
		return 0.65
	case content.NeedIrrelevant:
		return 0.25
	default:
		return 1.0
	}
}

// ReferencePrice maps scarcity to price: the target/stock ratio raised to
// 0.85 (steeper than sqrt, still stable), clamped so gluts and shortages
// both stay within a playable band.
func ReferencePrice(basePrice, stock, target float64) float64 {
	s := math.Max(stock, 1.0)
	t := math.Max(target, 1.0)
	mult := clamp(math.Pow(t/s, 0.85), 0.40, 3.50)
	return basePrice * mult
}

// ComputeBidAsk returns what the market pays (bid) and charges (ask) for a
// good given its perceived stock. Bid never exceeds ask: extreme need-level
// combinations clamp bid to 95% of ask.
func ComputeBidAsk(basePrice, stock, target float64, need content.NeedLevel) (bid, ask float64) {
	ref := ReferencePrice(basePrice, stock, target)
	bid = ref * bidMult(need)
	ask = ref * askMult(need)
	if bid > ask {
		bid = ask * 0.95
	}
	return bid, ask
}

// TargetFor is the effective target stock of a good in a city: the good's
// base target scaled by the city type's need level for its category. A city
// without a resolvable type falls back to the base target.
func TargetFor(ct *content.CityTypeDef, g *content.GoodDef) float64 {
	if ct == nil {
		return g.TargetStock
	}
	return g.TargetStock * NeedTargetMult(ct.Need(g.Category))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// round3 keeps market quantities at the 3-decimal precision the save
// contract guarantees.
func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// Round3 is the exported form for callers that mutate market state directly
// (player trades, shipment arrivals).
func Round3(x float64) float64 { return round3(x) }

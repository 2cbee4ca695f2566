package trade

import (
	"math"
	"math/rand/v2"

	"github.com/seafall/tradewind/internal/content"
	"github.com/seafall/tradewind/internal/economy"
)

// Global shipping risk. Losses resolve at arrival time: a failed roll is
// either a total loss (pirates took everything) or a partial one.
const (
	lossChance     = 0.06
	totalLossShare = 0.25
	partialLossMin = 0.15
	partialLossMax = 0.55
)

// Per-day deal sampling bounds.
const (
	dealsPerCityFactor = 0.65
	maxDealsPerDay     = 8
	citySampleSize     = 6
	goodSampleSize     = 10
)

// TickReport summarizes one NPC trade day for logging.
type TickReport struct {
	Arrived    int
	LostTotal  int
	LostPart   int
	NewDeals   int
	InTransit  int
}

// Tick runs the daily NPC trade pass: resolve arrivals first, then scan for
// new arbitrage deals. Runs after all city market ticks so it reads a
// consistent world. Deterministic given the day. Returns the surviving
// shipment list.
func Tick(day int, c *content.Content, markets map[string]*economy.MarketState, shipments []*Shipment) ([]*Shipment, TickReport) {
	rng := economy.DayRNG(day)
	var report TickReport

	shipments = applyArrivals(rng, c, markets, shipments, &report)

	deals := int(math.Round(float64(len(c.CitiesOrdered)) * dealsPerCityFactor))
	if deals < 1 {
		deals = 1
	}
	if deals > maxDealsPerDay {
		deals = maxDealsPerDay
	}

	for i := 0; i < deals; i++ {
		pick := chooseArbitrage(rng, c, markets)
		if pick == nil {
			continue
		}

		src, ok := markets[pick.srcID]
		if !ok {
			continue
		}
		have := src.StockOf(pick.goodID)
		qty := math.Min(pick.qty, have)
		if qty < 1.0 {
			continue
		}

		// Reserve at the source: the goods physically leave the market.
		src.Stock[pick.goodID] = economy.Round3(have - qty)

		shipments = append(shipments, NewShipment(pick.srcID, pick.dstID, pick.goodID, qty, pick.eta, day))
		report.NewDeals++
	}

	report.InTransit = len(shipments)
	return shipments, report
}

// applyArrivals decrements ETAs and delivers shipments that reach zero.
// PriceStock is deliberately untouched: the next market tick drags it
// toward the new stock at the normal lag.
func applyArrivals(rng *rand.Rand, c *content.Content, markets map[string]*economy.MarketState, shipments []*Shipment, report *TickReport) []*Shipment {
	remaining := shipments[:0]
	for _, s := range shipments {
		s.ETADays--
		if s.ETADays > 0 {
			remaining = append(remaining, s)
			continue
		}

		qty := s.Qty
		if qty <= 0 {
			continue
		}

		if rng.Float64() < lossChance {
			if rng.Float64() < totalLossShare {
				qty = 0
				report.LostTotal++
			} else {
				qty *= 1.0 - economy.Uniform(rng, partialLossMin, partialLossMax)
				report.LostPart++
			}
		}
		if qty <= 0 {
			continue
		}

		dst, ok := markets[s.DstCityID]
		if !ok {
			continue
		}
		dst.Stock[s.GoodID] = economy.Round3(dst.StockOf(s.GoodID) + qty)
		report.Arrived++
	}
	return remaining
}

type arbitragePick struct {
	srcID, dstID, goodID string
	qty                  float64
	eta                  int
}

// chooseArbitrage samples a handful of cities and goods and returns the
// single best (src, dst, good) triple by margin*quantity, or nil when
// nothing profitable exists in the sample.
func chooseArbitrage(rng *rand.Rand, c *content.Content, markets map[string]*economy.MarketState) *arbitragePick {
	cities := c.CitiesOrdered
	if len(cities) < 2 {
		return nil
	}

	citySample := economy.SampleIndices(rng, len(cities), citySampleSize)
	goodSample := economy.SampleIndices(rng, len(c.GoodsOrdered), goodSampleSize)

	var best *arbitragePick
	bestScore := 0.0

	for _, gi := range goodSample {
		g := c.GoodsOrdered[gi]
		for _, si := range citySample {
			for _, di := range citySample {
				src, dst := cities[si], cities[di]
				if src.ID == dst.ID {
					continue
				}

				srcMarket, ok := markets[src.ID]
				if !ok {
					continue
				}
				dstMarket, ok := markets[dst.ID]
				if !ok {
					continue
				}

				srcStock := srcMarket.StockOf(g.ID)
				if srcStock < 3.0 {
					continue
				}

				dstType := c.CityTypes[dst.CityTypeID]
				srcType := c.CityTypes[src.CityTypeID]
				if dstType == nil || srcType == nil {
					continue
				}

				// Destination pays its bid, source charges its ask; both
				// priced off the lagged stock.
				dstTarget := economy.TargetFor(dstType, g)
				dstBid, _ := economy.ComputeBidAsk(g.BasePrice, dstMarket.PriceStockOf(g.ID), dstTarget, dstType.Need(g.Category))

				srcTarget := economy.TargetFor(srcType, g)
				_, srcAsk := economy.ComputeBidAsk(g.BasePrice, srcMarket.PriceStockOf(g.ID), srcTarget, srcType.Need(g.Category))

				margin := dstBid - srcAsk
				if margin <= 0 {
					continue
				}

				// Only ship into a genuine shortage.
				if dstMarket.StockOf(g.ID) >= 0.9*dstTarget {
					continue
				}

				// Take a slice of the source, bounded by a slice of the
				// destination's appetite.
				qty := math.Min(
					srcStock*economy.Uniform(rng, 0.08, 0.22),
					math.Max(4.0, dstTarget*economy.Uniform(rng, 0.05, 0.12)),
				)
				if qty <= 0 {
					continue
				}

				score := margin * qty
				if score > bestScore {
					bestScore = score
					best = &arbitragePick{
						srcID:  src.ID,
						dstID:  dst.ID,
						goodID: g.ID,
						qty:    qty,
						eta:    travelTimeDays(src, dst),
					}
				}
			}
		}
	}
	return best
}

// travelTimeDays derives an ETA from Manhattan distance, 1..6 days, with a
// 2-day default when either endpoint has no usable position.
func travelTimeDays(a, b *content.CityDef) int {
	if a == nil || b == nil {
		return 2
	}
	d := math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y)
	days := int(math.Round(d / 8.0))
	if days < 1 {
		days = 1
	}
	if days > 6 {
		days = 6
	}
	return days
}

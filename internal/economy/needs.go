package economy

import (
	"math"
	"sort"

	"github.com/seafall/tradewind/internal/content"
)

// UpdateTopNeeds rescores a city's scarcity ranking from perceived stock:
// score = (target / max(priceStock, 1)) * need weight. The three highest
// good ids are kept, most scarce first. A city without a resolvable type
// gets an empty list.
func UpdateTopNeeds(m *MarketState, ct *content.CityTypeDef, goods []*content.GoodDef) {
	if ct == nil {
		m.TopNeeds = nil
		return
	}

	type scored struct {
		score float64
		id    string
	}
	var ranked []scored

	for _, g := range goods {
		w := NeedWeight(ct.Need(g.Category))
		if w <= 0 {
			continue
		}
		target := TargetFor(ct, g)
		ps := math.Max(m.PriceStockOf(g.ID), 1.0)
		ranked = append(ranked, scored{score: (target / ps) * w, id: g.ID})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	m.TopNeeds = m.TopNeeds[:0]
	for i, s := range ranked {
		if i >= 3 {
			break
		}
		m.TopNeeds = append(m.TopNeeds, s.id)
	}
}

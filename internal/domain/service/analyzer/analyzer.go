// Package analyzer finds flip opportunities in the order book of one item.
package analyzer

import (
	"math"
	"time"

	"github.com/samber/lo"

	"wfm_flipper/internal/domain/entity"
)

const hoursPerDay = 24

// Analyze returns the flip opportunity for item, if any. It overbids the best
// buy order and undercuts the best sell order by one platinum each.
//
// The traded quantity is the smaller of the two best orders' quantities; an
// order without a positive quantity counts as a single unit.
func Analyze(
	orders []entity.Order,
	item entity.Item,
	constraints entity.Constraints,
	now time.Time,
) (entity.Opportunity, bool) {
	sells := lo.Filter(orders, func(o entity.Order, _ int) bool { return o.IsSell() })
	buys := lo.Filter(orders, func(o entity.Order, _ int) bool { return o.IsBuy() })

	if len(sells) == 0 || len(buys) == 0 {
		return entity.Opportunity{}, false
	}

	// Strict comparisons keep the first of equal orders.
	lowestSell := lo.MinBy(sells, func(a, b entity.Order) bool { return a.Platinum < b.Platinum })
	highestBuy := lo.MaxBy(buys, func(a, b entity.Order) bool { return a.Platinum > b.Platinum })

	buyPrice := highestBuy.Platinum + 1
	sellPrice := lowestSell.Platinum - 1
	profit := sellPrice - buyPrice

	if orderAgeDays(highestBuy, now) > constraints.MaxOrderAgeDays {
		return entity.Opportunity{}, false
	}

	switch {
	case sellPrice <= buyPrice:
		return entity.Opportunity{}, false
	case profit < constraints.MinProfit:
		return entity.Opportunity{}, false
	case constraints.MaxInvestment != 0 && buyPrice > constraints.MaxInvestment:
		return entity.Opportunity{}, false
	}

	quantity := min(unitsOf(lowestSell), unitsOf(highestBuy))

	return entity.Opportunity{
		ItemName:        item.Name,
		ItemID:          item.ID,
		URLName:         item.URLName,
		BuyPrice:        buyPrice,
		SellPrice:       sellPrice,
		NetProfit:       profit,
		Quantity:        quantity,
		TotalInvestment: buyPrice * quantity,
		ROI:             roi(profit, buyPrice),
		SourceWTBOrder:  highestBuy,
	}, true
}

// orderAgeDays is +Inf for an order without a creation date.
func orderAgeDays(o entity.Order, now time.Time) float64 {
	if o.CreatedAt.IsZero() {
		return math.Inf(1)
	}

	return now.Sub(o.CreatedAt).Hours() / hoursPerDay
}

func unitsOf(o entity.Order) int {
	if o.Quantity <= 0 {
		return 1
	}

	return o.Quantity
}

func roi(profit, buyPrice int) float64 {
	if buyPrice <= 0 {
		return 0
	}

	return math.Round(float64(profit)/float64(buyPrice)*10000) / 100 //nolint:mnd
}

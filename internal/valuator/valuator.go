// Package valuator implements the item valuation engine: it maps a raw stash
// item plus a built market catalog to a priced, annotated result. Valuation
// is a pure function of (item, catalog); the Valuator holds no per-item state
// and is safe for concurrent use once constructed.
package valuator

import (
	"log/slog"
	"math"

	"github.com/wraeclast/stashpricer/internal/catalog"
	"github.com/wraeclast/stashpricer/internal/domain"
)

// undercut is the fraction of the estimate used as the suggested listing
// price; slightly under market moves items faster.
const undercut = 0.95

// Valuator prices items against one market catalog.
type Valuator struct {
	cat    *catalog.Catalog
	logger *slog.Logger
}

// New creates a Valuator over a built catalog.
func New(cat *catalog.Catalog, logger *slog.Logger) *Valuator {
	return &Valuator{
		cat:    cat,
		logger: logger.With(slog.String("component", "valuator")),
	}
}

// ValueItem prices a single item. The second return is false when the item is
// pre-filtered as worthless or no strategy could price it; that is a normal
// outcome, not an error.
func (v *Valuator) ValueItem(it domain.Item) (domain.ValuedItem, bool) {
	cls := Classify(it)
	if cls.Worthless {
		return domain.ValuedItem{}, false
	}

	var val *domain.Valuation
	switch cls.Category {
	case CategoryGamble:
		val = v.valueInscribedUltimatum(it)
	case CategoryUnique:
		val = v.valueUnique(it)
	case CategoryGem:
		val = v.valueGem(it)
	case CategoryCurrency:
		val = v.valueCurrency(it)
	case CategoryDivination:
		val = v.valueDivinationCard(it)
	case CategoryBase:
		// Fragments, scarabs, oils and essences carry a normal frame code;
		// try the currency chain before the rare-base rules.
		if val = v.valueCurrency(it); val == nil {
			val = v.valueRareBase(it)
		}
	}

	if val == nil || val.Value <= 0 {
		return domain.ValuedItem{}, false
	}
	return v.finalize(it, *val), true
}

// finalize derives the divine value and the suggested listing price from a
// raw strategy result. Suggested divine prices below one divine are zeroed;
// such items are listed in chaos only.
func (v *Valuator) finalize(it domain.Item, val domain.Valuation) domain.ValuedItem {
	divineValue := val.Value / v.cat.DivineRate()

	suggested := domain.SuggestedPrice{
		Chaos: int(math.Floor(val.Value * undercut)),
	}
	if divineValue >= 1 {
		suggested.Divine = math.Floor(divineValue*undercut*10) / 10
	}

	return domain.ValuedItem{
		Item:           it,
		EstimatedValue: val.Value,
		DivineValue:    divineValue,
		Confidence:     val.Confidence,
		Liquidity:      val.Liquidity,
		Reasoning:      val.Reasoning,
		Notes:          val.Notes,
		SuggestedPrice: suggested,
		History:        val.History,
	}
}

// liquidityByValue maps a chaos value onto the hours/days/slow ladder used by
// most strategies. The thresholds differ per category, so they are passed in.
func liquidityByValue(value, hoursAbove, daysAbove float64) domain.Liquidity {
	switch {
	case value > hoursAbove:
		return domain.LiquidityHours
	case value > daysAbove:
		return domain.LiquidityDays
	default:
		return domain.LiquiditySlow
	}
}

func history(sp *domain.Sparkline) *domain.PriceHistory {
	if sp == nil {
		return nil
	}
	return &domain.PriceHistory{Sparkline: sp.Data, TotalChange: sp.TotalChange}
}

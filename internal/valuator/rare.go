package valuator

import (
	"fmt"
	"strings"

	"github.com/wraeclast/stashpricer/internal/domain"
)

var influenceMarkers = []string{
	"Shaper", "Elder", "Crusader", "Hunter", "Redeemer", "Warlord",
}

// valueRareBase assigns flat heuristic values to non-unique gear the market
// feed cannot price directly: 6-link bases sell for the links, and
// high-item-level influenced bases sell as craft fodder. Everything else is
// unvalued.
func (v *Valuator) valueRareBase(it domain.Item) *domain.Valuation {
	if isSixLink(it) {
		return &domain.Valuation{
			Value:      15,
			Confidence: domain.ConfidenceMedium,
			Liquidity:  domain.LiquidityHours,
			Reasoning:  "Rare 6-link item (base value)",
			Notes:      []string{"6-LINK rare"},
		}
	}

	if it.ItemLevel >= 85 && hasInfluence(it.ImplicitMods) {
		return &domain.Valuation{
			Value:      5,
			Confidence: domain.ConfidenceLow,
			Liquidity:  domain.LiquiditySlow,
			Reasoning:  "High iLvl influenced rare (potential craft base)",
			Notes:      []string{fmt.Sprintf("iLvl %d influenced base", it.ItemLevel)},
		}
	}

	return nil
}

func hasInfluence(implicits []string) bool {
	for _, mod := range implicits {
		for _, marker := range influenceMarkers {
			if strings.Contains(mod, marker) {
				return true
			}
		}
	}
	return false
}

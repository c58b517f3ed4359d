package valuator

import (
	"fmt"
	"strings"

	"github.com/wraeclast/stashpricer/internal/domain"
)

// sixLinkFloor is the minimum estimate for any 6-linked unique; even a
// vendor-tier unique sells for the links alone.
const sixLinkFloor = 10

// valueUnique prices a unique item by picking the best-matching market
// variant: +10 for a corruption match, +10 for a link match, ties broken by
// the closest link count. A unique missing from the catalog still gets a
// token 1c estimate so it shows up for manual review instead of vanishing.
func (v *Valuator) valueUnique(it domain.Item) *domain.Valuation {
	name := it.DisplayName()
	baseType := it.BaseType
	if baseType == "" {
		baseType = it.TypeLine
	}

	variants := v.cat.UniqueVariants(name, baseType)
	if len(variants) == 0 {
		return &domain.Valuation{
			Value:      1,
			Confidence: domain.ConfidenceLow,
			Liquidity:  domain.LiquiditySlow,
			Reasoning:  fmt.Sprintf("Unique item %q not found in market data", name),
		}
	}

	sixLinked := isSixLink(it)
	itemLinks := 0
	if sixLinked {
		itemLinks = 6
	}

	var best *domain.ItemLine
	bestScore := -1
	bestLinkDiff := int(^uint(0) >> 1)

	for i := range variants {
		variant := &variants[i]

		score := 0
		if variant.Corrupted == it.Corrupted {
			score += 10
		}
		if variant.Links == itemLinks {
			score += 10
		}

		linkDiff := variant.Links - itemLinks
		if linkDiff < 0 {
			linkDiff = -linkDiff
		}

		if score > bestScore || (score == bestScore && linkDiff < bestLinkDiff) {
			bestScore = score
			bestLinkDiff = linkDiff
			best = variant
		}
	}

	value := best.ChaosValue
	var notes []string

	if sixLinked {
		notes = append(notes, "6-LINK")
		if value < sixLinkFloor {
			value = sixLinkFloor
		}
	}

	if it.Corrupted {
		notes = append(notes, "Corrupted")
		if hasGoodCorruption(it.ImplicitMods) {
			// The earlier single-file valuator also multiplied the value by
			// 1.5 here; the catalog-aware version prices from the variant
			// alone and only annotates.
			notes = append(notes, "Good corruption implicit")
		}
	}

	confidence := domain.ConfidenceLow
	switch {
	case bestScore >= 20:
		confidence = domain.ConfidenceHigh
	case bestScore >= 10:
		confidence = domain.ConfidenceMedium
	}

	reasoning := fmt.Sprintf("Unique %q (%d-link)", name, best.Links)
	if it.Corrupted {
		reasoning = fmt.Sprintf("Unique %q (%d-link, corrupted)", name, best.Links)
	}

	return &domain.Valuation{
		Value:      value,
		Confidence: confidence,
		Liquidity:  liquidityByValue(value, 100, 20),
		Reasoning:  reasoning,
		Notes:      notes,
		History:    history(best.History()),
	}
}

// hasGoodCorruption reports whether any implicit looks like a desirable
// corruption outcome (added levels, maximum resists, increased effect).
func hasGoodCorruption(implicits []string) bool {
	for _, mod := range implicits {
		if !strings.Contains(mod, "+") {
			continue
		}
		if strings.Contains(mod, "level") ||
			strings.Contains(mod, "maximum") ||
			strings.Contains(mod, "increased") {
			return true
		}
	}
	return false
}

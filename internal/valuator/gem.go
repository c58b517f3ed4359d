package valuator

import (
	"fmt"

	"github.com/wraeclast/stashpricer/internal/domain"
)

// valueGem prices a skill gem against its market variants. Level and quality
// matches weigh 10 each, a corruption match 5; ties go to the variant with
// the closest quality. No catalog entry means no valuation.
func (v *Valuator) valueGem(it domain.Item) *domain.Valuation {
	name := it.TypeLine
	variants := v.cat.GemVariants(name)
	if len(variants) == 0 {
		return nil
	}

	level := gemLevel(it)
	quality := gemQuality(it)

	var best *domain.ItemLine
	bestScore := -1
	bestQualityDiff := int(^uint(0) >> 1)

	for i := range variants {
		variant := &variants[i]

		score := 0
		if variant.GemLevel == level {
			score += 10
		}
		if variant.GemQuality == quality {
			score += 10
		}
		if variant.Corrupted == it.Corrupted {
			score += 5
		}

		qualityDiff := variant.GemQuality - quality
		if qualityDiff < 0 {
			qualityDiff = -qualityDiff
		}

		if score > bestScore || (score == bestScore && qualityDiff < bestQualityDiff) {
			bestScore = score
			bestQualityDiff = qualityDiff
			best = variant
		}
	}

	value := best.ChaosValue

	var notes []string
	if level >= 20 {
		notes = append(notes, fmt.Sprintf("Level %d", level))
	}
	if quality >= 20 {
		notes = append(notes, fmt.Sprintf("Quality %d%%", quality))
	}
	if it.Corrupted {
		notes = append(notes, "Corrupted")
	}
	if level == 21 && quality >= 20 {
		notes = append(notes, "21/20 gem")
	}
	if level == 21 && quality == 23 {
		notes = append(notes, "PERFECT 21/23")
	}

	confidence := domain.ConfidenceMedium
	if bestScore >= 20 {
		confidence = domain.ConfidenceHigh
	}

	reasoning := fmt.Sprintf("Gem %s (%d/%d)", name, level, quality)
	if it.Corrupted {
		reasoning = fmt.Sprintf("Gem %s (%d/%d, corrupted)", name, level, quality)
	}

	return &domain.Valuation{
		Value:      value,
		Confidence: confidence,
		Liquidity:  liquidityByValue(value, 50, 10),
		Reasoning:  reasoning,
		Notes:      notes,
		History:    history(best.History()),
	}
}

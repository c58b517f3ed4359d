package valuator

import (
	"fmt"
	"strings"

	"github.com/wraeclast/stashpricer/internal/domain"
)

// Inscribed Ultimatums are gamble contracts: sacrifice N of a currency for a
// chance at a multiple of it. poe.ninja does not track them, so the estimate
// is derived from the sacrifice value, the reward multiplier and a discount
// for the failure risk.

const (
	// ultimatumBaseValue covers contracts whose sacrifice the parser cannot
	// read; they still trade around this figure.
	ultimatumBaseValue = 20

	// orbDiscount prices in roughly a one-in-five failure chance on divine
	// and exalted contracts. Chaos contracts are a smaller outlay, so the
	// market discounts them less.
	orbDiscount   = 0.65
	chaosDiscount = 0.70

	// exaltedFallback is used when the market feed carries no Exalted Orb
	// line.
	exaltedFallback = 30

	// highTierLevel marks the area level where contract mobs outscale most
	// builds; those contracts carry a premium.
	highTierLevel = 83
	highTierBonus = 1.1
)

func (v *Valuator) valueInscribedUltimatum(it domain.Item) *domain.Valuation {
	sacrifice, sacOK := findPropertyContains(it.Properties, "sacrifice")
	reward, rewOK := findPropertyContains(it.Properties, "reward")

	if !sacOK || !rewOK {
		return &domain.Valuation{
			Value:      ultimatumBaseValue,
			Confidence: domain.ConfidenceLow,
			Liquidity:  domain.LiquidityHours,
			Reasoning:  "Inscribed Ultimatum (base estimate)",
			Notes:      []string{"Check trade site for exact pricing"},
		}
	}

	sacrificeText := sacrifice.Text()
	rewardText := reward.Text()
	sacrificeLower := strings.ToLower(sacrificeText)

	notes := []string{
		"Sacrifice: " + sacrificeText,
		"Reward: " + rewardText,
	}

	value := float64(ultimatumBaseValue)
	reasoning := "Inscribed Ultimatum"

	switch {
	case strings.Contains(sacrificeLower, "divine orb"):
		count := sacrificeCount(sacrificeText)
		mult := rewardMultiplier(rewardText)
		value = float64(count*mult) * v.cat.DivineRate() * orbDiscount
		reasoning = fmt.Sprintf("Inscribed Ultimatum: %d Divine → %d Divine (%.0f%% value)",
			count, count*mult, orbDiscount*100)
		notes = append(notes, "Divine Orb sacrifice - HIGH VALUE", "~20% failure risk factored in")

	case strings.Contains(sacrificeLower, "exalted orb"):
		count := sacrificeCount(sacrificeText)
		mult := rewardMultiplier(rewardText)
		unit := v.cat.CurrencyUnitPrice("Exalted Orb", exaltedFallback)
		value = float64(count*mult) * unit * orbDiscount
		reasoning = fmt.Sprintf("Inscribed Ultimatum: %d Exalted → %d Exalted", count, count*mult)
		notes = append(notes, "Exalted Orb sacrifice")

	case strings.Contains(sacrificeLower, "chaos orb"):
		count := sacrificeCount(sacrificeText)
		mult := rewardMultiplier(rewardText)
		value = float64(count*mult) * chaosDiscount
		reasoning = fmt.Sprintf("Inscribed Ultimatum: %dc → %dc", count, count*mult)
		notes = append(notes, "Chaos Orb sacrifice")

	default:
		value = 30
		reasoning = "Inscribed Ultimatum: " + sacrificeText
		notes = append(notes, "Check trade site for exact pricing")
	}

	if it.ItemLevel >= highTierLevel {
		notes = append(notes, fmt.Sprintf("Area Level %d (high tier)", it.ItemLevel))
		value *= highTierBonus
	}

	notes = append(notes, "Heuristic estimate (not tracked by poe.ninja)")

	return &domain.Valuation{
		Value:      value,
		Confidence: domain.ConfidenceMedium,
		Liquidity:  liquidityByValue(value, 100, 50),
		Reasoning:  reasoning,
		Notes:      notes,
	}
}

// sacrificeCount reads the leading quantity from a sacrifice line such as
// "2x Divine Orb", defaulting to 1.
func sacrificeCount(text string) int {
	if n, ok := leadingInt(text); ok && n > 0 {
		return n
	}
	return 1
}

// rewardMultiplier maps the reward wording onto its factor. The same ladder
// applies to every sacrifice currency; unrecognized wording means doubling.
func rewardMultiplier(text string) int {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "quintuple"):
		return 5
	case strings.Contains(lower, "quadruple"):
		return 4
	case strings.Contains(lower, "triple"):
		return 3
	default:
		return 2
	}
}

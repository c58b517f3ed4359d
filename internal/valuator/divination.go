package valuator

import (
	"fmt"

	"github.com/wraeclast/stashpricer/internal/domain"
)

// minCardValue drops bulk trash cards; anything under half a chaos per card
// is not worth listing.
const minCardValue = 0.5

func (v *Valuator) valueDivinationCard(it domain.Item) *domain.Valuation {
	name := it.TypeLine

	line, ok := v.cat.DivinationCard(name)
	if !ok || line.ChaosValue < minCardValue {
		return nil
	}

	stack := stackSize(it)
	value := line.ChaosValue * float64(stack)

	return &domain.Valuation{
		Value:      value,
		Confidence: domain.ConfidenceHigh,
		Liquidity:  liquidityByValue(value, 50, 10),
		Reasoning:  fmt.Sprintf("%s x%d @ %.1fc each", name, stack, line.ChaosValue),
		History:    history(line.History()),
	}
}

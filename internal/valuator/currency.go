package valuator

import (
	"fmt"

	"github.com/wraeclast/stashpricer/internal/domain"
)

// valueCurrency prices anything the currency chain recognises by its type
// line: orbs, fragments, scarabs, oils and essences. The unit price is
// multiplied by the stack size. Currency trades instantly at a known rate,
// so confidence and liquidity are fixed.
func (v *Valuator) valueCurrency(it domain.Item) *domain.Valuation {
	name := it.TypeLine

	line, ok := v.cat.CurrencyLike(name)
	if !ok {
		return nil
	}

	unit := line.ChaosEquivalent
	stack := stackSize(it)

	return &domain.Valuation{
		Value:      unit * float64(stack),
		Confidence: domain.ConfidenceHigh,
		Liquidity:  domain.LiquidityInstant,
		Reasoning:  fmt.Sprintf("%s x%d @ %.2fc each", name, stack, unit),
		History:    history(line.History()),
	}
}

package valuator

import (
	"strings"

	"github.com/wraeclast/stashpricer/internal/domain"
)

// Category is the valuation strategy an item resolves to. It is decided once,
// up front; strategies never re-inspect the frame type.
type Category int

const (
	CategoryNone Category = iota
	CategoryGamble
	CategoryUnique
	CategoryGem
	CategoryCurrency
	CategoryDivination
	CategoryBase
)

// Classification is the result of routing an item to a strategy.
type Classification struct {
	Category  Category
	Worthless bool
}

// currencyLikeNames marks items that are mechanically currency despite
// carrying a normal frame code. They are never pre-filtered as worthless.
var currencyLikeNames = []string{
	"scarab",
	"fragment",
	" oil",
	"essence",
	"breachstone",
	"emblem",
}

// Classify routes an item to its valuation category. The Inscribed Ultimatum
// check runs before any frame-type dispatch; those items carry a normal frame
// code but are priced by their sacrifice/reward contract, so neither the
// frame switch nor the worthless pre-filter applies to them.
func Classify(it domain.Item) Classification {
	if isInscribedUltimatum(it) {
		return Classification{Category: CategoryGamble}
	}

	switch it.FrameType {
	case domain.FrameUnique:
		return Classification{Category: CategoryUnique}
	case domain.FrameGem:
		return Classification{Category: CategoryGem}
	case domain.FrameCurrency:
		return Classification{Category: CategoryCurrency}
	case domain.FrameDivination:
		return Classification{Category: CategoryDivination}
	case domain.FrameNormal, domain.FrameMagic, domain.FrameRare:
		return Classification{Category: CategoryBase, Worthless: isWorthless(it)}
	default:
		return Classification{Category: CategoryNone}
	}
}

// isWorthless filters out the bulk of vendor trash before any catalog lookup:
// identified rares below ilvl 84 and normal/magic items below ilvl 86, unless
// the item is 6-linked or is one of the currency-like bases.
func isWorthless(it domain.Item) bool {
	typeLine := strings.ToLower(it.TypeLine)
	for _, name := range currencyLikeNames {
		if strings.Contains(typeLine, name) {
			return false
		}
	}

	if it.FrameType == domain.FrameRare && it.Identified && !isSixLink(it) && it.ItemLevel < 84 {
		return true
	}
	if (it.FrameType == domain.FrameNormal || it.FrameType == domain.FrameMagic) &&
		!isSixLink(it) && it.ItemLevel < 86 {
		return true
	}
	return false
}

func isInscribedUltimatum(it domain.Item) bool {
	return strings.Contains(strings.ToLower(it.TypeLine), "inscribed ultimatum")
}

// isSixLink reports whether the item has at least six sockets all sharing one
// link group.
func isSixLink(it domain.Item) bool {
	if len(it.Sockets) < 6 {
		return false
	}
	group := it.Sockets[0].Group
	for _, s := range it.Sockets[1:] {
		if s.Group != group {
			return false
		}
	}
	return true
}

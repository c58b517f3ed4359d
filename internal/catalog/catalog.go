// Package catalog indexes a raw market snapshot into normalized fast-lookup
// maps. A Catalog is built once per pricing session and is read-only
// afterwards, so it can be shared across valuation workers without locking.
package catalog

import (
	"fmt"
	"strings"

	"github.com/wraeclast/stashpricer/internal/domain"
)

// Catalog is the derived price index for one market snapshot. Unique items
// and gems map to all of their market variants; currency-style categories
// keep one line per name (the source data has no true duplicates, so
// last-write-wins is fine).
type Catalog struct {
	uniques    map[string][]domain.ItemLine
	gems       map[string][]domain.ItemLine
	divination map[string]domain.ItemLine

	currency  map[string]domain.CurrencyLine
	fragments map[string]domain.CurrencyLine
	scarabs   map[string]domain.CurrencyLine
	oils      map[string]domain.CurrencyLine
	essences  map[string]domain.CurrencyLine

	divineRate float64
}

// Build indexes every price line of the snapshot under its normalized key.
// A snapshot with nil categories or a non-positive divine rate is rejected;
// that is the only fatal condition in the whole pricing path.
func Build(snap *domain.MarketSnapshot) (*Catalog, error) {
	if snap == nil {
		return nil, fmt.Errorf("catalog: %w: nil snapshot", domain.ErrSnapshotIncomplete)
	}
	if err := validate(snap); err != nil {
		return nil, err
	}

	c := &Catalog{
		uniques:    make(map[string][]domain.ItemLine, len(snap.Uniques)),
		gems:       make(map[string][]domain.ItemLine, len(snap.Gems)),
		divination: make(map[string]domain.ItemLine, len(snap.Divination)),
		currency:   make(map[string]domain.CurrencyLine, len(snap.Currency)),
		fragments:  make(map[string]domain.CurrencyLine, len(snap.Fragments)),
		scarabs:    make(map[string]domain.CurrencyLine, len(snap.Scarabs)),
		oils:       make(map[string]domain.CurrencyLine, len(snap.Oils)),
		essences:   make(map[string]domain.CurrencyLine, len(snap.Essences)),
		divineRate: snap.DivineRate,
	}

	for _, line := range snap.Uniques {
		key := Normalize(line.Name, line.BaseType)
		c.uniques[key] = append(c.uniques[key], line)
	}
	for _, line := range snap.Gems {
		key := Normalize(line.Name)
		c.gems[key] = append(c.gems[key], line)
	}
	for _, line := range snap.Divination {
		c.divination[Normalize(line.Name)] = line
	}
	for _, line := range snap.Currency {
		c.currency[Normalize(line.Name)] = line
	}
	for _, line := range snap.Fragments {
		c.fragments[Normalize(line.Name)] = line
	}
	for _, line := range snap.Scarabs {
		c.scarabs[Normalize(line.Name)] = line
	}
	for _, line := range snap.Oils {
		c.oils[Normalize(line.Name)] = line
	}
	for _, line := range snap.Essences {
		c.essences[Normalize(line.Name)] = line
	}

	return c, nil
}

// validate rejects structurally incomplete snapshots. Empty categories are
// fine (a fresh league may genuinely have no priced scarabs yet); nil ones
// mean the fetch never happened.
func validate(snap *domain.MarketSnapshot) error {
	missing := func(name string) error {
		return fmt.Errorf("catalog: %w: %s", domain.ErrSnapshotIncomplete, name)
	}
	switch {
	case snap.Uniques == nil:
		return missing("uniques")
	case snap.Gems == nil:
		return missing("gems")
	case snap.Divination == nil:
		return missing("divination")
	case snap.Currency == nil:
		return missing("currency")
	case snap.Fragments == nil:
		return missing("fragments")
	case snap.Scarabs == nil:
		return missing("scarabs")
	case snap.Oils == nil:
		return missing("oils")
	case snap.Essences == nil:
		return missing("essences")
	case snap.DivineRate <= 0:
		return fmt.Errorf("catalog: %w: divine rate %.2f", domain.ErrSnapshotIncomplete, snap.DivineRate)
	}
	return nil
}

// Normalize builds the canonical lookup key from item name parts. Empty parts
// are skipped entirely so that Normalize("Foo", "") == Normalize("Foo").
// Catalog inserts and item lookups both go through this function; that is the
// invariant that keeps the two sides from diverging on case or whitespace.
func Normalize(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.ToLower(strings.Join(kept, " "))
}

// UniqueVariants returns every market variant of a unique item, keyed by
// display name plus base type.
func (c *Catalog) UniqueVariants(name, baseType string) []domain.ItemLine {
	return c.uniques[Normalize(name, baseType)]
}

// GemVariants returns every market variant of a skill gem.
func (c *Catalog) GemVariants(typeLine string) []domain.ItemLine {
	return c.gems[Normalize(typeLine)]
}

// DivinationCard returns the priced line for a divination card.
func (c *Catalog) DivinationCard(name string) (domain.ItemLine, bool) {
	line, ok := c.divination[Normalize(name)]
	return line, ok
}

// CurrencyLike looks a type line up across every currency-style category in
// fixed priority order: currency, fragments, scarabs, oils, essences. The
// first category holding the key wins; names are assumed not to collide
// across categories.
func (c *Catalog) CurrencyLike(typeLine string) (domain.CurrencyLine, bool) {
	key := Normalize(typeLine)
	for _, m := range []map[string]domain.CurrencyLine{
		c.currency, c.fragments, c.scarabs, c.oils, c.essences,
	} {
		if line, ok := m[key]; ok {
			return line, true
		}
	}
	return domain.CurrencyLine{}, false
}

// CurrencyUnitPrice returns the chaos value of a single named currency, or
// the given fallback when the snapshot does not price it.
func (c *Catalog) CurrencyUnitPrice(name string, fallback float64) float64 {
	if line, ok := c.currency[Normalize(name)]; ok && line.ChaosEquivalent > 0 {
		return line.ChaosEquivalent
	}
	return fallback
}

// DivineRate is the chaos value of one Divine Orb for this snapshot.
func (c *Catalog) DivineRate() float64 {
	return c.divineRate
}

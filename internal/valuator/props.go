package valuator

import (
	"strconv"
	"strings"

	"github.com/wraeclast/stashpricer/internal/domain"
)

// Property access lives here, at the edge of the engine, so the strategies
// work with plain ints and strings instead of scanning the free-text property
// list themselves. Every parse failure degrades to a safe default; a mangled
// property never fails the item.

// findProperty returns the first property with the exact given name.
func findProperty(props []domain.Property, name string) (domain.Property, bool) {
	for _, p := range props {
		if p.Name == name {
			return p, true
		}
	}
	return domain.Property{}, false
}

// findPropertyContains returns the first property whose name contains the
// given substring, case-insensitively.
func findPropertyContains(props []domain.Property, substr string) (domain.Property, bool) {
	for _, p := range props {
		if strings.Contains(strings.ToLower(p.Name), substr) {
			return p, true
		}
	}
	return domain.Property{}, false
}

// gemLevel reads the "Level" property, defaulting to 1.
func gemLevel(it domain.Item) int {
	if p, ok := findProperty(it.Properties, "Level"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(p.Text(), " (Max)"))); err == nil {
			return n
		}
		if n, ok := leadingInt(p.Text()); ok {
			return n
		}
	}
	return 1
}

// gemQuality reads the "Quality" property, checking additionalProperties as
// a fallback since some gems report quality there. Gems at 0% quality carry
// no Quality property at all, so the default is 0.
func gemQuality(it domain.Item) int {
	for _, props := range [][]domain.Property{it.Properties, it.AdditionalProperties} {
		if p, ok := findProperty(props, "Quality"); ok {
			if n, ok := digitsIn(p.Text()); ok {
				return n
			}
		}
	}
	return 0
}

// stackSize parses the "Stack Size" property, formatted "<n>/<max>",
// defaulting to 1.
func stackSize(it domain.Item) int {
	p, ok := findProperty(it.Properties, "Stack Size")
	if !ok {
		return 1
	}
	head, _, _ := strings.Cut(p.Text(), "/")
	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// leadingInt extracts the first run of digits from s.
func leadingInt(s string) (int, bool) {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, err := strconv.Atoi(s[start:i])
			return n, err == nil
		}
	}
	if start >= 0 {
		n, err := strconv.Atoi(s[start:])
		return n, err == nil
	}
	return 0, false
}

// digitsIn strips every non-digit rune and parses what remains, so "+20%"
// yields 20.
func digitsIn(s string) (int, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(b.String())
	return n, err == nil
}

package report

import (
	"strings"
	"testing"

	"github.com/wraeclast/stashpricer/internal/domain"
)

func sampleItems() []domain.ValuedItem {
	return []domain.ValuedItem{
		{
			Item:           domain.Item{Name: "Mageblood", TypeLine: "Heavy Belt", BaseType: "Heavy Belt"},
			EstimatedValue: 90000,
			DivineValue:    450,
			Confidence:     domain.ConfidenceHigh,
			Liquidity:      domain.LiquidityHours,
			Reasoning:      `Unique "Mageblood" (0-link)`,
			SuggestedPrice: domain.SuggestedPrice{Chaos: 85500, Divine: 427.5},
		},
		{
			Item:           domain.Item{TypeLine: "Divine Orb"},
			EstimatedValue: 200,
			DivineValue:    1,
			Confidence:     domain.ConfidenceHigh,
			Liquidity:      domain.LiquidityInstant,
			Reasoning:      "Divine Orb x1 @ 200.00c each",
			SuggestedPrice: domain.SuggestedPrice{Chaos: 190, Divine: 0.9},
		},
	}
}

func TestFormatTopItemsEmpty(t *testing.T) {
	out := FormatTopItems(nil)
	if !strings.Contains(out, "No valuable items") {
		t.Errorf("Expected empty-result message, got %q", out)
	}
}

func TestFormatTopItemsRanksAndPrices(t *testing.T) {
	out := FormatTopItems(sampleItems())

	if !strings.Contains(out, "#1") || !strings.Contains(out, "#2") {
		t.Error("Expected rank markers in output")
	}
	// TypeLine and BaseType match on unique equipment, so no base suffix.
	if !strings.Contains(out, "Mageblood") || strings.Contains(out, "Mageblood (Heavy Belt)") {
		t.Error("Expected plain item name when base type matches type line")
	}
	if !strings.Contains(out, "List at: 427.5 divine") {
		t.Error("Expected divine listing price for items above one divine")
	}
	if !strings.Contains(out, "List at: 190 chaos") {
		t.Error("Expected chaos listing price for items under one divine")
	}
}

func TestDisplayNameAppendsDistinctBaseType(t *testing.T) {
	it := domain.Item{
		Name:     "Doom Clutch",
		TypeLine: "Dragonscale Gauntlets of the Seal",
		BaseType: "Dragonscale Gauntlets",
	}
	if got := displayName(it); got != "Doom Clutch (Dragonscale Gauntlets)" {
		t.Errorf("displayName = %q, want base type suffix", got)
	}

	same := domain.Item{Name: "Mageblood", TypeLine: "Heavy Belt", BaseType: "Heavy Belt"}
	if got := displayName(same); got != "Mageblood" {
		t.Errorf("displayName = %q, want plain name", got)
	}
}

func TestFormatSummaryTotals(t *testing.T) {
	out := FormatSummary(sampleItems())

	if !strings.Contains(out, "Total items shown: 2") {
		t.Error("Expected item count in summary")
	}
	if !strings.Contains(out, "Combined value: 90200.0c") {
		t.Errorf("Expected combined chaos value, got:\n%s", out)
	}
	if !strings.Contains(out, "Quick sell (instant-hours): 2") {
		t.Error("Expected liquidity breakdown")
	}
}

func TestToCSV(t *testing.T) {
	out, err := ToCSV(sampleItems())
	if err != nil {
		t.Fatalf("ToCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Rank,Item Name") {
		t.Errorf("Unexpected header: %s", lines[0])
	}
	// The reasoning contains quotes and commas; csv must quote it.
	if !strings.Contains(lines[1], `"Unique ""Mageblood"" (0-link)"`) {
		t.Errorf("Expected quoted reasoning field, got: %s", lines[1])
	}
}

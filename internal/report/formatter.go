// Package report renders pricing results for the terminal and for export.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/wraeclast/stashpricer/internal/domain"
)

const rule = "═══════════════════════════════════════════════════════════════════════════════"

func banner(title string) string {
	pad := len(rule) - len(title)
	left := pad / 2
	right := pad - left
	return "╔" + rule + "╗\n" +
		"║" + strings.Repeat(" ", left) + title + strings.Repeat(" ", right) + "║\n" +
		"╚" + rule + "╝\n"
}

// FormatTopItems renders the ranked results as a terminal listing.
func FormatTopItems(items []domain.ValuedItem) string {
	if len(items) == 0 {
		return "No valuable items found above the minimum threshold.\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(banner("TOP VALUABLE ITEMS TO SELL"))
	b.WriteString("\n")

	for i, valued := range items {
		rank := fmt.Sprintf("#%d", i+1)
		fmt.Fprintf(&b, "%-4s %s\n", rank, displayName(valued.Item))
		fmt.Fprintf(&b, "     %s\n", strings.Repeat("═", 75))

		fmt.Fprintf(&b, "     Value: %.1fc", valued.EstimatedValue)
		if valued.DivineValue >= 1 {
			fmt.Fprintf(&b, " (%.2f div)", valued.DivineValue)
		}
		b.WriteString("\n")

		if valued.SuggestedPrice.Divine >= 1 {
			fmt.Fprintf(&b, "     List at: %.1f divine\n", valued.SuggestedPrice.Divine)
		} else {
			fmt.Fprintf(&b, "     List at: %d chaos\n", valued.SuggestedPrice.Chaos)
		}

		fmt.Fprintf(&b, "     Confidence: %s  |  Est. Sale Time: %s\n",
			confidenceIcon(valued.Confidence), liquidityString(valued.Liquidity))
		fmt.Fprintf(&b, "     %s\n", valued.Reasoning)

		if len(valued.Notes) > 0 {
			fmt.Fprintf(&b, "     Notes: %s\n", strings.Join(valued.Notes, ", "))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// FormatSummary renders aggregate statistics for the shown items.
func FormatSummary(items []domain.ValuedItem) string {
	if len(items) == 0 {
		return ""
	}

	var totalChaos, totalDivine float64
	counts := map[domain.Liquidity]int{}
	for _, it := range items {
		totalChaos += it.EstimatedValue
		totalDivine += it.DivineValue
		counts[it.Liquidity]++
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(banner("SUMMARY"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Total items shown: %d\n", len(items))
	fmt.Fprintf(&b, "  Combined value: %.1fc (%.2f divine)\n", totalChaos, totalDivine)
	fmt.Fprintf(&b, "  Average value: %.1fc per item\n", totalChaos/float64(len(items)))

	b.WriteString("\n  Liquidity breakdown:\n")
	if quick := counts[domain.LiquidityInstant] + counts[domain.LiquidityHours]; quick > 0 {
		fmt.Fprintf(&b, "    Quick sell (instant-hours): %d\n", quick)
	}
	if counts[domain.LiquidityDays] > 0 {
		fmt.Fprintf(&b, "    Medium (days): %d\n", counts[domain.LiquidityDays])
	}
	if counts[domain.LiquiditySlow] > 0 {
		fmt.Fprintf(&b, "    Slow (may take time): %d\n", counts[domain.LiquiditySlow])
	}
	b.WriteString("\n")

	return b.String()
}

// ToJSON exports the results as indented JSON.
func ToJSON(items []domain.ValuedItem) (string, error) {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: marshal results: %w", err)
	}
	return string(data), nil
}

// ToCSV exports the ranked results as CSV.
func ToCSV(items []domain.ValuedItem) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	header := []string{
		"Rank", "Item Name", "Value (Chaos)", "Value (Divine)",
		"Suggested Price (Chaos)", "Suggested Price (Divine)",
		"Confidence", "Liquidity", "Reasoning",
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("report: write csv header: %w", err)
	}

	for i, valued := range items {
		record := []string{
			strconv.Itoa(i + 1),
			displayName(valued.Item),
			fmt.Sprintf("%.1f", valued.EstimatedValue),
			fmt.Sprintf("%.2f", valued.DivineValue),
			strconv.Itoa(valued.SuggestedPrice.Chaos),
			fmt.Sprintf("%.2f", valued.SuggestedPrice.Divine),
			string(valued.Confidence),
			string(valued.Liquidity),
			valued.Reasoning,
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("report: write csv row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("report: flush csv: %w", err)
	}
	return b.String(), nil
}

// displayName renders the item name with its base type when distinct.
func displayName(it domain.Item) string {
	name := it.DisplayName()
	if it.BaseType != "" && it.BaseType != it.TypeLine {
		return name + " (" + it.BaseType + ")"
	}
	return name
}

func confidenceIcon(c domain.Confidence) string {
	switch c {
	case domain.ConfidenceHigh:
		return "●●● High"
	case domain.ConfidenceMedium:
		return "●●○ Medium"
	case domain.ConfidenceLow:
		return "●○○ Low"
	default:
		return string(c)
	}
}

func liquidityString(l domain.Liquidity) string {
	switch l {
	case domain.LiquidityInstant:
		return "Instant"
	case domain.LiquidityHours:
		return "Hours"
	case domain.LiquidityDays:
		return "Days"
	case domain.LiquiditySlow:
		return "Slow (may take time)"
	default:
		return string(l)
	}
}

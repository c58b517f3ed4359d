package valuator

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/wraeclast/stashpricer/internal/catalog"
	"github.com/wraeclast/stashpricer/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildCatalog(t *testing.T, snap *domain.MarketSnapshot) *catalog.Catalog {
	t.Helper()

	if snap.Uniques == nil {
		snap.Uniques = []domain.ItemLine{}
	}
	if snap.Gems == nil {
		snap.Gems = []domain.ItemLine{}
	}
	if snap.Divination == nil {
		snap.Divination = []domain.ItemLine{}
	}
	if snap.Currency == nil {
		snap.Currency = []domain.CurrencyLine{}
	}
	if snap.Fragments == nil {
		snap.Fragments = []domain.CurrencyLine{}
	}
	if snap.Scarabs == nil {
		snap.Scarabs = []domain.CurrencyLine{}
	}
	if snap.Oils == nil {
		snap.Oils = []domain.CurrencyLine{}
	}
	if snap.Essences == nil {
		snap.Essences = []domain.CurrencyLine{}
	}
	if snap.DivineRate == 0 {
		snap.DivineRate = 200
	}

	cat, err := catalog.Build(snap)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return cat
}

func stackProperty(text string) domain.Property {
	return domain.Property{Name: "Stack Size", Values: [][2]any{{text, 0}}}
}

func sixLinkSockets() []domain.Socket {
	sockets := make([]domain.Socket, 6)
	for i := range sockets {
		sockets[i] = domain.Socket{Group: 0}
	}
	return sockets
}

func TestCurrencyValueScalesWithStackSize(t *testing.T) {
	cat := buildCatalog(t, &domain.MarketSnapshot{
		Currency: []domain.CurrencyLine{{Name: "Divine Orb", ChaosEquivalent: 200}},
	})
	v := New(cat, testLogger())

	item := domain.Item{
		TypeLine:   "Divine Orb",
		FrameType:  domain.FrameCurrency,
		Properties: []domain.Property{stackProperty("7/10")},
	}

	valued, ok := v.ValueItem(item)
	if !ok {
		t.Fatal("Expected currency item to be priced")
	}
	if valued.EstimatedValue != 1400 {
		t.Errorf("Expected 1400 (200 x 7), got %v", valued.EstimatedValue)
	}
	if valued.Confidence != domain.ConfidenceHigh {
		t.Errorf("Expected high confidence, got %v", valued.Confidence)
	}
	if valued.Liquidity != domain.LiquidityInstant {
		t.Errorf("Expected instant liquidity, got %v", valued.Liquidity)
	}
}

func TestSixLinkUniqueFloor(t *testing.T) {
	cat := buildCatalog(t, &domain.MarketSnapshot{
		Uniques: []domain.ItemLine{
			{Name: "Tabula Rasa", BaseType: "Simple Robe", Links: 6, ChaosValue: 4},
		},
	})
	v := New(cat, testLogger())

	item := domain.Item{
		Name:      "Tabula Rasa",
		TypeLine:  "Simple Robe",
		BaseType:  "Simple Robe",
		FrameType: domain.FrameUnique,
		Sockets:   sixLinkSockets(),
	}

	valued, ok := v.ValueItem(item)
	if !ok {
		t.Fatal("Expected unique to be priced")
	}
	if valued.EstimatedValue != 10 {
		t.Errorf("Expected 6-link floor of 10, got %v", valued.EstimatedValue)
	}

	found := false
	for _, n := range valued.Notes {
		if n == "6-LINK" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a 6-LINK note, got %v", valued.Notes)
	}
}

func TestUnknownUniqueGetsTokenValue(t *testing.T) {
	cat := buildCatalog(t, &domain.MarketSnapshot{})
	v := New(cat, testLogger())

	item := domain.Item{
		Name:      "Headhunter",
		TypeLine:  "Leather Belt",
		BaseType:  "Leather Belt",
		FrameType: domain.FrameUnique,
	}

	valued, ok := v.ValueItem(item)
	if !ok {
		t.Fatal("Expected unknown unique to still be priced")
	}
	if valued.EstimatedValue != 1 {
		t.Errorf("Expected token value 1, got %v", valued.EstimatedValue)
	}
	if valued.Confidence != domain.ConfidenceLow {
		t.Errorf("Expected low confidence, got %v", valued.Confidence)
	}
}

func TestGemVariantMatching(t *testing.T) {
	cat := buildCatalog(t, &domain.MarketSnapshot{
		Gems: []domain.ItemLine{
			{Name: "Awakened Multistrike Support", GemLevel: 1, GemQuality: 0, ChaosValue: 300},
			{Name: "Awakened Multistrike Support", GemLevel: 5, GemQuality: 20, ChaosValue: 9000},
		},
	})
	v := New(cat, testLogger())

	item := domain.Item{
		TypeLine:  "Awakened Multistrike Support",
		FrameType: domain.FrameGem,
		Properties: []domain.Property{
			{Name: "Level", Values: [][2]any{{"5", 0}}},
			{Name: "Quality", Values: [][2]any{{"+20%", 1}}},
		},
	}

	valued, ok := v.ValueItem(item)
	if !ok {
		t.Fatal("Expected gem to be priced")
	}
	if valued.EstimatedValue != 9000 {
		t.Errorf("Expected the level/quality match to win, got %v", valued.EstimatedValue)
	}
	if valued.Confidence != domain.ConfidenceHigh {
		t.Errorf("Expected high confidence for a full match, got %v", valued.Confidence)
	}
}

func TestDivinationCardBelowFloorUnpriced(t *testing.T) {
	cat := buildCatalog(t, &domain.MarketSnapshot{
		Divination: []domain.ItemLine{{Name: "Rain of Chaos", ChaosValue: 0.3}},
	})
	v := New(cat, testLogger())

	item := domain.Item{
		TypeLine:   "Rain of Chaos",
		FrameType:  domain.FrameDivination,
		Properties: []domain.Property{stackProperty("8/8")},
	}

	if _, ok := v.ValueItem(item); ok {
		t.Error("Expected cards under the 0.5c floor to produce no valuation")
	}
}

func TestLowLevelRareFilteredAsWorthless(t *testing.T) {
	cat := buildCatalog(t, &domain.MarketSnapshot{})
	v := New(cat, testLogger())

	item := domain.Item{
		Name:       "Storm Grip",
		TypeLine:   "Conjurer Gloves",
		FrameType:  domain.FrameRare,
		Identified: true,
		ItemLevel:  80,
	}

	if _, ok := v.ValueItem(item); ok {
		t.Error("Expected identified ilvl 80 rare to be filtered pre-valuation")
	}
}

func TestScarabTypeLineBypassesWorthlessFilter(t *testing.T) {
	cat := buildCatalog(t, &domain.MarketSnapshot{
		Scarabs: []domain.CurrencyLine{{Name: "Gilded Divination Scarab", ChaosEquivalent: 15}},
	})
	v := New(cat, testLogger())

	item := domain.Item{
		TypeLine:   "Gilded Divination Scarab",
		FrameType:  domain.FrameNormal,
		ItemLevel:  1,
		Properties: []domain.Property{stackProperty("3/10")},
	}

	valued, ok := v.ValueItem(item)
	if !ok {
		t.Fatal("Expected scarab to be priced despite its normal frame")
	}
	if valued.EstimatedValue != 45 {
		t.Errorf("Expected 45 (15 x 3), got %v", valued.EstimatedValue)
	}
}

func TestInscribedUltimatumDivineSacrifice(t *testing.T) {
	cat := buildCatalog(t, &domain.MarketSnapshot{DivineRate: 200})
	v := New(cat, testLogger())

	item := domain.Item{
		TypeLine:  "Inscribed Ultimatum",
		FrameType: domain.FrameNormal,
		ItemLevel: 75,
		Properties: []domain.Property{
			{Name: "Requires Sacrifice", Values: [][2]any{{"2x Divine Orb", 0}}},
			{Name: "Reward", Values: [][2]any{{"Triples sacrificed Currency", 0}}},
		},
	}

	valued, ok := v.ValueItem(item)
	if !ok {
		t.Fatal("Expected ultimatum to be priced")
	}
	if valued.EstimatedValue != 780 {
		t.Errorf("Expected 780 (2 x 3 x 200 x 0.65), got %v", valued.EstimatedValue)
	}
	if valued.Confidence != domain.ConfidenceMedium {
		t.Errorf("Expected medium confidence, got %v", valued.Confidence)
	}
	if valued.Liquidity != domain.LiquidityHours {
		t.Errorf("Expected hours liquidity above 100c, got %v", valued.Liquidity)
	}
}

func TestInscribedUltimatumHighTierBonus(t *testing.T) {
	cat := buildCatalog(t, &domain.MarketSnapshot{DivineRate: 200})
	v := New(cat, testLogger())

	item := domain.Item{
		TypeLine:  "Inscribed Ultimatum",
		FrameType: domain.FrameNormal,
		ItemLevel: 83,
		Properties: []domain.Property{
			{Name: "Requires Sacrifice", Values: [][2]any{{"10x Chaos Orb", 0}}},
			{Name: "Reward", Values: [][2]any{{"Doubles sacrificed Currency", 0}}},
		},
	}

	valued, ok := v.ValueItem(item)
	if !ok {
		t.Fatal("Expected ultimatum to be priced")
	}
	want := 10 * 2 * chaosDiscount * highTierBonus
	if diff := valued.EstimatedValue - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Expected %v, got %v", want, valued.EstimatedValue)
	}
}

func TestInscribedUltimatumMultiplierLadder(t *testing.T) {
	cat := buildCatalog(t, &domain.MarketSnapshot{DivineRate: 200})
	v := New(cat, testLogger())

	// The same keyword ladder applies to every sacrifice currency; a
	// quintuple chaos contract pays out x5 like its divine counterpart.
	item := domain.Item{
		TypeLine:  "Inscribed Ultimatum",
		FrameType: domain.FrameNormal,
		ItemLevel: 75,
		Properties: []domain.Property{
			{Name: "Requires Sacrifice", Values: [][2]any{{"100x Chaos Orb", 0}}},
			{Name: "Reward", Values: [][2]any{{"Quintuples sacrificed Currency", 0}}},
		},
	}

	valued, ok := v.ValueItem(item)
	if !ok {
		t.Fatal("Expected ultimatum to be priced")
	}
	want := 100 * 5 * chaosDiscount
	if diff := valued.EstimatedValue - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Expected %v (100 x 5 x 0.70), got %v", want, valued.EstimatedValue)
	}

	if got := rewardMultiplier("Quadruples sacrificed Currency"); got != 4 {
		t.Errorf("Expected quadruple multiplier 4, got %d", got)
	}
	if got := rewardMultiplier("returns your sacrifice"); got != 2 {
		t.Errorf("Expected default multiplier 2, got %d", got)
	}
}

func TestSuggestedPriceRounding(t *testing.T) {
	cat := buildCatalog(t, &domain.MarketSnapshot{
		Currency:   []domain.CurrencyLine{{Name: "Veiled Orb", ChaosEquivalent: 40}},
		DivineRate: 150,
	})
	v := New(cat, testLogger())

	item := domain.Item{
		TypeLine:  "Veiled Orb",
		FrameType: domain.FrameCurrency,
	}

	valued, ok := v.ValueItem(item)
	if !ok {
		t.Fatal("Expected currency to be priced")
	}
	if valued.SuggestedPrice.Chaos != 38 {
		t.Errorf("Expected suggested chaos 38, got %d", valued.SuggestedPrice.Chaos)
	}
	if valued.SuggestedPrice.Divine != 0 {
		t.Errorf("Expected suggested divine 0 below one divine, got %v", valued.SuggestedPrice.Divine)
	}
}

func TestSuggestedDivinePriceAboveOneDivine(t *testing.T) {
	cat := buildCatalog(t, &domain.MarketSnapshot{
		Currency:   []domain.CurrencyLine{{Name: "Mirror of Kalandra", ChaosEquivalent: 30000}},
		DivineRate: 200,
	})
	v := New(cat, testLogger())

	item := domain.Item{
		TypeLine:  "Mirror of Kalandra",
		FrameType: domain.FrameCurrency,
	}

	valued, ok := v.ValueItem(item)
	if !ok {
		t.Fatal("Expected currency to be priced")
	}
	// 30000 / 200 = 150 divine; 150 * 0.95 = 142.5
	if valued.SuggestedPrice.Divine != 142.5 {
		t.Errorf("Expected suggested divine 142.5, got %v", valued.SuggestedPrice.Divine)
	}
}

func TestValuationIdempotent(t *testing.T) {
	cat := buildCatalog(t, &domain.MarketSnapshot{
		Uniques: []domain.ItemLine{
			{Name: "Tabula Rasa", BaseType: "Simple Robe", Links: 6, ChaosValue: 8,
				Sparkline: &domain.Sparkline{Data: []float64{1, 2, 3}, TotalChange: 5}},
		},
	})
	v := New(cat, testLogger())

	item := domain.Item{
		Name:      "Tabula Rasa",
		TypeLine:  "Simple Robe",
		BaseType:  "Simple Robe",
		FrameType: domain.FrameUnique,
		Sockets:   sixLinkSockets(),
	}

	first, ok1 := v.ValueItem(item)
	second, ok2 := v.ValueItem(item)

	if ok1 != ok2 || !reflect.DeepEqual(first, second) {
		t.Error("Expected identical results for repeated valuation of the same item")
	}
}

func TestValueBatchAndFilterAndRank(t *testing.T) {
	cat := buildCatalog(t, &domain.MarketSnapshot{
		Currency: []domain.CurrencyLine{
			{Name: "Divine Orb", ChaosEquivalent: 200},
			{Name: "Chaos Orb", ChaosEquivalent: 1},
			{Name: "Orb of Alchemy", ChaosEquivalent: 0.2},
		},
	})
	v := New(cat, testLogger())

	items := []domain.Item{
		{TypeLine: "Chaos Orb", FrameType: domain.FrameCurrency},
		{TypeLine: "Divine Orb", FrameType: domain.FrameCurrency},
		{TypeLine: "Orb of Alchemy", FrameType: domain.FrameCurrency},
		{TypeLine: "Unknown Trinket", FrameType: domain.FrameCurrency},
	}

	results, err := v.ValueBatch(context.Background(), items, 2)
	if err != nil {
		t.Fatalf("ValueBatch failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 priced items, got %d", len(results))
	}

	const threshold = 1.0
	ranked := FilterAndRank(results, threshold, 0)

	for _, r := range ranked {
		if r.EstimatedValue < threshold {
			t.Errorf("Filtered output contains %v below threshold %v", r.EstimatedValue, threshold)
		}
	}
	if len(ranked) != 2 {
		t.Fatalf("Expected 2 items at or above threshold, got %d", len(ranked))
	}
	if ranked[0].EstimatedValue < ranked[1].EstimatedValue {
		t.Error("Expected results sorted by value descending")
	}
	if ranked[0].Item.TypeLine != "Divine Orb" {
		t.Errorf("Expected Divine Orb ranked first, got %s", ranked[0].Item.TypeLine)
	}

	top := FilterAndRank(results, 0, 1)
	if len(top) != 1 || top[0].Item.TypeLine != "Divine Orb" {
		t.Errorf("Expected topN truncation to keep the most valuable item, got %v", top)
	}
}

func TestClassifyGambleBeforeFrameDispatch(t *testing.T) {
	item := domain.Item{
		TypeLine:  "Inscribed Ultimatum",
		FrameType: domain.FrameNormal,
		ItemLevel: 10,
	}

	cls := Classify(item)
	if cls.Category != CategoryGamble {
		t.Errorf("Expected gamble category, got %v", cls.Category)
	}
	if cls.Worthless {
		t.Error("Gamble contracts must never be pre-filtered as worthless")
	}
}

func TestSixLinkRequiresSingleGroup(t *testing.T) {
	split := make([]domain.Socket, 6)
	for i := range split {
		split[i] = domain.Socket{Group: i % 2}
	}

	if isSixLink(domain.Item{Sockets: split}) {
		t.Error("Six sockets across two groups must not count as a 6-link")
	}
	if !isSixLink(domain.Item{Sockets: sixLinkSockets()}) {
		t.Error("Six sockets in one group must count as a 6-link")
	}
}

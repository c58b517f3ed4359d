package domain

import "time"

// Sparkline is a short recent-price time series for a catalog entry.
type Sparkline struct {
	Data        []float64 `json:"data"`
	TotalChange float64   `json:"totalChange"`
}

// ItemLine is one priced record from an item-style price category (uniques,
// gems, divination cards). A single name may appear on several lines that
// differ by links, corruption, or gem level/quality.
type ItemLine struct {
	Name       string     `json:"name"`
	BaseType   string     `json:"baseType,omitempty"`
	Variant    string     `json:"variant,omitempty"`
	Links      int        `json:"links,omitempty"`
	Corrupted  bool       `json:"corrupted,omitempty"`
	GemLevel   int        `json:"gemLevel,omitempty"`
	GemQuality int        `json:"gemQuality,omitempty"`
	ChaosValue float64    `json:"chaosValue"`
	Sparkline  *Sparkline `json:"sparkline,omitempty"`

	// LowConfidenceSparkline is reported instead of Sparkline for thinly
	// traded entries.
	LowConfidenceSparkline *Sparkline `json:"lowConfidenceSparkline,omitempty"`
}

// History returns the line's price history, preferring the regular sparkline.
func (l ItemLine) History() *Sparkline {
	if l.Sparkline != nil {
		return l.Sparkline
	}
	return l.LowConfidenceSparkline
}

// CurrencyLine is one priced record from a currency-style category (currency,
// fragments, scarabs, oils, essences).
type CurrencyLine struct {
	Name             string     `json:"currencyTypeName"`
	ChaosEquivalent  float64    `json:"chaosEquivalent"`
	PaySparkline     *Sparkline `json:"lowConfidencePaySparkLine,omitempty"`
	ReceiveSparkline *Sparkline `json:"lowConfidenceReceiveSparkLine,omitempty"`
}

// History returns the line's price history. The pay-side series is kept when
// both are present; it tracks what buyers actually paid.
func (l CurrencyLine) History() *Sparkline {
	if l.PaySparkline != nil {
		return l.PaySparkline
	}
	return l.ReceiveSparkline
}

// MarketSnapshot bundles every price-list category for one league at one
// point in time, plus the chaos-per-divine reference rate. It is fetched once
// per pricing session and treated as immutable afterwards.
type MarketSnapshot struct {
	League    string    `json:"league"`
	FetchedAt time.Time `json:"fetchedAt"`

	Uniques    []ItemLine `json:"uniques"`
	Gems       []ItemLine `json:"gems"`
	Divination []ItemLine `json:"divination"`

	Currency  []CurrencyLine `json:"currency"`
	Fragments []CurrencyLine `json:"fragments"`
	Scarabs   []CurrencyLine `json:"scarabs"`
	Oils      []CurrencyLine `json:"oils"`
	Essences  []CurrencyLine `json:"essences"`

	// DivineRate is the chaos value of one Divine Orb.
	DivineRate float64 `json:"divineRate"`
}

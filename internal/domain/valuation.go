package domain

import "time"

// Confidence grades how well the market data matched the exact item.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Liquidity is a qualitative estimate of how quickly an item sells.
type Liquidity string

const (
	LiquidityInstant Liquidity = "instant"
	LiquidityHours   Liquidity = "hours"
	LiquidityDays    Liquidity = "days"
	LiquiditySlow    Liquidity = "slow"
)

// PriceHistory summarizes the recent price trend of the matched catalog entry.
type PriceHistory struct {
	Sparkline   []float64 `json:"sparkline,omitempty"`
	TotalChange float64   `json:"totalChange"`
}

// Valuation is the raw output of a single valuation strategy, before the
// post-processing step derives divine values and a listing price.
type Valuation struct {
	Value      float64
	Confidence Confidence
	Liquidity  Liquidity
	Reasoning  string
	Notes      []string
	History    *PriceHistory
}

// SuggestedPrice is the listing price derived from an estimate, slightly
// under market for faster sales. Divine is 0 when the item is worth less than
// one divine; such items are listed in chaos only.
type SuggestedPrice struct {
	Chaos  int     `json:"chaos"`
	Divine float64 `json:"divine"`
}

// ValuedItem is a fully priced item. EstimatedValue is always > 0; items no
// strategy could price are dropped, never emitted with a zero value.
type ValuedItem struct {
	Item           Item           `json:"item"`
	EstimatedValue float64        `json:"estimatedValue"`
	DivineValue    float64        `json:"divineValue"`
	Confidence     Confidence     `json:"confidence"`
	Liquidity      Liquidity      `json:"liquidity"`
	Reasoning      string         `json:"reasoning"`
	Notes          []string       `json:"notes,omitempty"`
	SuggestedPrice SuggestedPrice `json:"suggestedPrice"`
	History        *PriceHistory  `json:"priceHistory,omitempty"`
}

// Session records one full pricing run over a stash.
type Session struct {
	ID          string    `json:"id"`
	League      string    `json:"league"`
	Account     string    `json:"account"`
	DivineRate  float64   `json:"divineRate"`
	ItemsSeen   int       `json:"itemsSeen"`
	ItemsPriced int       `json:"itemsPriced"`
	TotalChaos  float64   `json:"totalChaos"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}

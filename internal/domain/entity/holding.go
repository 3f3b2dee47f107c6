package entity

import "github.com/shopspring/decimal"

// Category buckets a holding for risk purposes.
type Category string

const (
	CategoryNative     Category = "native"
	CategoryStablecoin Category = "stablecoin"
	CategoryDefi       Category = "defi"
	CategoryVolatile   Category = "volatile"
)

// RiskLevel is the overall portfolio risk tier.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very-high"
)

// NormalizedHolding is a chain balance after pricing and dust filtering.
type NormalizedHolding struct {
	Symbol   string
	Chain    string
	Balance  decimal.Decimal
	ValueUSD float64
}

// AggregatedHolding is one row per distinct symbol after merging across chains.
// Constituents are merged by symbol only; same-symbol tokens with different
// contracts are treated as fungible for display purposes.
type AggregatedHolding struct {
	Symbol        string
	TotalBalance  decimal.Decimal
	TotalValueUSD float64
	// Chains lists contributing chains in order of first appearance.
	Chains []string
}

// PortfolioHolding is an aggregated holding enriched with percentage and category.
type PortfolioHolding struct {
	Symbol     string   `json:"symbol"`
	Balance    string   `json:"balance"`
	ValueUSD   float64  `json:"valueUsd"`
	Percentage float64  `json:"percentage"`
	Category   Category `json:"category"`
	Chains     []string `json:"chains,omitempty"`
}

// PortfolioAnalysis is the aggregate report returned to the caller. Built once
// per request, never mutated after Advice is attached.
type PortfolioAnalysis struct {
	Address              string             `json:"address"`
	Chain                string             `json:"chain"`
	TotalValueUSD        float64            `json:"totalValueUsd"`
	Holdings             []PortfolioHolding `json:"holdings"`
	RiskLevel            RiskLevel          `json:"riskLevel"`
	StablecoinPercentage float64            `json:"stablecoinPercentage"`
	VolatilePercentage   float64            `json:"volatilePercentage"`
	ConcentrationRisk    bool               `json:"concentrationRisk"`
	Advice               string             `json:"advice"`
}

// TopHolding returns the largest holding by value, or false for an empty portfolio.
func (a PortfolioAnalysis) TopHolding() (PortfolioHolding, bool) {
	if len(a.Holdings) == 0 {
		return PortfolioHolding{}, false
	}
	return a.Holdings[0], true
}

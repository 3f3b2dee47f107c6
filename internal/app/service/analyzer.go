package service

import (
	"sort"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
)

// concentrationThresholdPct flags any single holding strictly above this share.
const concentrationThresholdPct = 50.0

// categoryTable is the closed symbol-to-category mapping. Unknown symbols fall
// to the volatile default, which is where scam and unrecognized tokens land.
var categoryTable = map[string]entity.Category{
	"USDC":  entity.CategoryStablecoin,
	"USDT":  entity.CategoryStablecoin,
	"DAI":   entity.CategoryStablecoin,
	"FRAX":  entity.CategoryStablecoin,
	"LUSD":  entity.CategoryStablecoin,
	"USDbC": entity.CategoryStablecoin,
	"BUSD":  entity.CategoryStablecoin,

	"ETH":  entity.CategoryNative,
	"STRK": entity.CategoryNative,
	"BTC":  entity.CategoryNative,
	"WBTC": entity.CategoryNative,
	"WETH": entity.CategoryNative,

	"AAVE": entity.CategoryDefi,
	"UNI":  entity.CategoryDefi,
	"LINK": entity.CategoryDefi,
	"CRV":  entity.CategoryDefi,
	"LDO":  entity.CategoryDefi,
	"ARB":  entity.CategoryDefi,
	"OP":   entity.CategoryDefi,
	"MKR":  entity.CategoryDefi,
	"COMP": entity.CategoryDefi,
}

// CategoryOf classifies a symbol. Exact match only.
func CategoryOf(symbol string) entity.Category {
	if c, ok := categoryTable[symbol]; ok {
		return c
	}
	return entity.CategoryVolatile
}

// Analyzer computes portfolio totals, percentages, category split, and the
// risk tier. Deterministic: identical input holdings produce identical output.
type Analyzer struct{}

// Analyze builds the analysis for the given aggregated holdings. Address,
// chain label, and advice are attached later by the caller.
func (Analyzer) Analyze(holdings []entity.AggregatedHolding) entity.PortfolioAnalysis {
	total := 0.0
	for _, h := range holdings {
		total += h.TotalValueUSD
	}

	out := make([]entity.PortfolioHolding, 0, len(holdings))
	for _, h := range holdings {
		pct := 0.0
		if total > 0 {
			pct = 100 * h.TotalValueUSD / total
		}
		out = append(out, entity.PortfolioHolding{
			Symbol:     h.Symbol,
			Balance:    h.TotalBalance.String(),
			ValueUSD:   h.TotalValueUSD,
			Percentage: pct,
			Category:   CategoryOf(h.Symbol),
			Chains:     h.Chains,
		})
	}

	// Ties keep original order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ValueUSD > out[j].ValueUSD
	})

	stablePct := 0.0
	volatilePct := 0.0
	concentration := false
	for _, h := range out {
		if h.Category == entity.CategoryStablecoin {
			stablePct += h.Percentage
		} else {
			// "Volatile" here means not-stablecoin, not the volatile
			// category alone.
			volatilePct += h.Percentage
		}
		if h.Percentage > concentrationThresholdPct {
			concentration = true
		}
	}

	return entity.PortfolioAnalysis{
		TotalValueUSD:        total,
		Holdings:             out,
		RiskLevel:            riskLevel(stablePct, concentration),
		StablecoinPercentage: stablePct,
		VolatilePercentage:   volatilePct,
		ConcentrationRisk:    concentration,
	}
}

// riskLevel applies the ordered threshold policy. The thresholds overlap and
// the first match wins.
func riskLevel(stablecoinPct float64, concentrationRisk bool) entity.RiskLevel {
	switch {
	case stablecoinPct >= 50:
		return entity.RiskLow
	case stablecoinPct >= 30 && !concentrationRisk:
		return entity.RiskMedium
	case stablecoinPct >= 10:
		return entity.RiskHigh
	default:
		return entity.RiskVeryHigh
	}
}

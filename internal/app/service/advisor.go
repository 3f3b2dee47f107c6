package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/app/port"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/pkg/metrics"
)

const defaultAdviceTimeout = 20 * time.Second

// Advisor attaches rebalancing advice to a completed analysis. It asks the
// external generator first and falls back to the deterministic rule-based
// composer on any failure, so callers always receive non-empty advice.
type Advisor struct {
	generator port.AdviceGenerator
	logger    port.Logger
	timeout   time.Duration
}

// NewAdvisor creates an Advisor. A nil generator means fallback-only mode.
func NewAdvisor(generator port.AdviceGenerator, l port.Logger, timeout time.Duration) *Advisor {
	if timeout <= 0 {
		timeout = defaultAdviceTimeout
	}
	return &Advisor{generator: generator, logger: l, timeout: timeout}
}

// Advise returns the advice text for the analysis. Never returns an error and
// never returns an empty string.
func (a *Advisor) Advise(ctx context.Context, analysis entity.PortfolioAnalysis, chainLabel string) string {
	if a.generator != nil {
		genCtx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()

		advice, err := a.generator.GenerateAdvice(genCtx, analysis, chainLabel)
		if err == nil && strings.TrimSpace(advice) != "" {
			return advice
		}
		if err != nil {
			a.logger.Warn("Advice generation failed, using rule-based fallback",
				"chain", chainLabel, "error", err)
		} else {
			a.logger.Warn("Advice generator returned empty text, using rule-based fallback",
				"chain", chainLabel)
		}
	}
	metrics.AdviceFallbacks.Inc()
	return ComposeFallbackAdvice(analysis)
}

// ComposeFallbackAdvice builds advice purely from the analysis fields using
// fixed per-tier templates.
func ComposeFallbackAdvice(analysis entity.PortfolioAnalysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Portfolio risk level: %s. Total value: $%.2f across %d holdings. ",
		analysis.RiskLevel, analysis.TotalValueUSD, len(analysis.Holdings))

	switch analysis.RiskLevel {
	case entity.RiskLow:
		fmt.Fprintf(&b, "With %.1f%% in stablecoins the portfolio is defensively positioned. "+
			"Consider whether some stable allocation could be deployed into yield or blue-chip assets if your horizon allows.",
			analysis.StablecoinPercentage)
	case entity.RiskMedium:
		fmt.Fprintf(&b, "The %.1f%% stablecoin allocation gives a reasonable buffer against drawdowns. "+
			"Rebalance opportunistically and keep the volatile share (%.1f%%) from drifting higher.",
			analysis.StablecoinPercentage, analysis.VolatilePercentage)
	case entity.RiskHigh:
		fmt.Fprintf(&b, "Only %.1f%% sits in stablecoins while %.1f%% is exposed to market moves. "+
			"Consider raising the stable allocation toward 30%% to reduce drawdown risk.",
			analysis.StablecoinPercentage, analysis.VolatilePercentage)
	default:
		fmt.Fprintf(&b, "With %.1f%% in stablecoins the portfolio is almost fully exposed to market volatility. "+
			"Consider taking profits into stablecoins to establish a defensive base of at least 10-20%%.",
			analysis.StablecoinPercentage)
	}

	if top, ok := analysis.TopHolding(); ok && analysis.ConcentrationRisk {
		fmt.Fprintf(&b, " Concentration warning: %s makes up %.1f%% of the portfolio; "+
			"trimming it would improve diversification.", top.Symbol, top.Percentage)
	}

	return b.String()
}

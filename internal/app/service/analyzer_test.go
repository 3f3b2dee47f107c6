package service

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
)

func aggregated(symbol string, valueUSD float64, chains ...string) entity.AggregatedHolding {
	return entity.AggregatedHolding{
		Symbol:        symbol,
		TotalBalance:  decimal.NewFromInt(1),
		TotalValueUSD: valueUSD,
		Chains:        chains,
	}
}

func TestAnalyzePercentagesAndOrdering(t *testing.T) {
	analysis := Analyzer{}.Analyze([]entity.AggregatedHolding{
		aggregated("LINK", 250, "ethereum"),
		aggregated("ETH", 6000, "ethereum"),
		aggregated("USDC", 3750, "ethereum"),
	})

	if analysis.TotalValueUSD != 10000 {
		t.Fatalf("total = %f, want 10000", analysis.TotalValueUSD)
	}

	wantOrder := []string{"ETH", "USDC", "LINK"}
	for i, sym := range wantOrder {
		if analysis.Holdings[i].Symbol != sym {
			t.Errorf("holding %d = %s, want %s (sorted by value desc)", i, analysis.Holdings[i].Symbol, sym)
		}
	}

	sum := 0.0
	for _, h := range analysis.Holdings {
		sum += h.Percentage
	}
	if math.Abs(sum-100) > 1e-6 {
		t.Errorf("percentages sum to %f, want 100", sum)
	}
	if math.Abs(analysis.StablecoinPercentage+analysis.VolatilePercentage-100) > 1e-6 {
		t.Errorf("stable (%f) + volatile (%f) should sum to 100",
			analysis.StablecoinPercentage, analysis.VolatilePercentage)
	}
}

func TestAnalyzeEmptyPortfolio(t *testing.T) {
	analysis := Analyzer{}.Analyze(nil)
	if analysis.TotalValueUSD != 0 {
		t.Errorf("total = %f, want 0", analysis.TotalValueUSD)
	}
	if len(analysis.Holdings) != 0 {
		t.Errorf("holdings = %+v, want none", analysis.Holdings)
	}
	if analysis.RiskLevel != entity.RiskVeryHigh {
		t.Errorf("risk = %s, want very-high (zero stablecoin share)", analysis.RiskLevel)
	}
	if analysis.ConcentrationRisk {
		t.Error("empty portfolio cannot be concentrated")
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		symbol string
		want   entity.Category
	}{
		{"USDC", entity.CategoryStablecoin},
		{"DAI", entity.CategoryStablecoin},
		{"ETH", entity.CategoryNative},
		{"WBTC", entity.CategoryNative},
		{"STRK", entity.CategoryNative},
		{"AAVE", entity.CategoryDefi},
		{"ARB", entity.CategoryDefi},
		{"PEPE", entity.CategoryVolatile},
		{"usdc", entity.CategoryVolatile}, // exact match only
		{"", entity.CategoryVolatile},
	}
	for _, tt := range tests {
		if got := CategoryOf(tt.symbol); got != tt.want {
			t.Errorf("CategoryOf(%q) = %s, want %s", tt.symbol, got, tt.want)
		}
	}
}

func TestAnalyzeRiskLevels(t *testing.T) {
	tests := []struct {
		name     string
		holdings []entity.AggregatedHolding
		want     entity.RiskLevel
	}{
		{
			name: "majority stable is low",
			holdings: []entity.AggregatedHolding{
				aggregated("USDC", 55, "ethereum"),
				aggregated("ETH", 45, "ethereum"),
			},
			want: entity.RiskLow,
		},
		{
			name: "moderate stable without concentration is medium",
			holdings: []entity.AggregatedHolding{
				aggregated("USDC", 35, "ethereum"),
				aggregated("ETH", 33, "ethereum"),
				aggregated("LINK", 32, "ethereum"),
			},
			want: entity.RiskMedium,
		},
		{
			name: "moderate stable with concentration falls to high",
			holdings: []entity.AggregatedHolding{
				aggregated("USDC", 35, "ethereum"),
				aggregated("ETH", 65, "ethereum"),
			},
			want: entity.RiskHigh,
		},
		{
			name: "thin stable is high",
			holdings: []entity.AggregatedHolding{
				aggregated("USDC", 15, "ethereum"),
				aggregated("ETH", 40, "ethereum"),
				aggregated("LINK", 45, "ethereum"),
			},
			want: entity.RiskHigh,
		},
		{
			name: "near-zero stable is very high",
			holdings: []entity.AggregatedHolding{
				aggregated("USDC", 5, "ethereum"),
				aggregated("PEPE", 95, "ethereum"),
			},
			want: entity.RiskVeryHigh,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := Analyzer{}.Analyze(tt.holdings)
			if analysis.RiskLevel != tt.want {
				t.Errorf("risk = %s, want %s", analysis.RiskLevel, tt.want)
			}
		})
	}
}

func TestAnalyzeConcentrationIsStrictlyAboveHalf(t *testing.T) {
	exactHalf := Analyzer{}.Analyze([]entity.AggregatedHolding{
		aggregated("ETH", 50, "ethereum"),
		aggregated("USDC", 50, "ethereum"),
	})
	if exactHalf.ConcentrationRisk {
		t.Error("exactly 50%% must not flag concentration")
	}

	justOver := Analyzer{}.Analyze([]entity.AggregatedHolding{
		aggregated("ETH", 50.1, "ethereum"),
		aggregated("USDC", 49.9, "ethereum"),
	})
	if !justOver.ConcentrationRisk {
		t.Error("50.1%% must flag concentration")
	}
}

func TestAnalyzeConcentratedEthPortfolio(t *testing.T) {
	analysis := Analyzer{}.Analyze([]entity.AggregatedHolding{
		aggregated("ETH", 8000, "ethereum"),
		aggregated("USDC", 2000, "ethereum"),
	})

	if !analysis.ConcentrationRisk {
		t.Error("80%% ETH should flag concentration")
	}
	if analysis.RiskLevel != entity.RiskHigh {
		t.Errorf("risk = %s, want high (20%% stable, concentrated)", analysis.RiskLevel)
	}
	if math.Abs(analysis.StablecoinPercentage-20) > 1e-6 {
		t.Errorf("stable = %f, want 20", analysis.StablecoinPercentage)
	}
	if math.Abs(analysis.VolatilePercentage-80) > 1e-6 {
		t.Errorf("volatile = %f, want 80", analysis.VolatilePercentage)
	}
	if top, ok := analysis.TopHolding(); !ok || top.Symbol != "ETH" {
		t.Errorf("top holding = %+v, want ETH", top)
	}
}

func TestAnalyzeStableSortKeepsTieOrder(t *testing.T) {
	analysis := Analyzer{}.Analyze([]entity.AggregatedHolding{
		aggregated("AAA", 100, "ethereum"),
		aggregated("BBB", 100, "ethereum"),
		aggregated("CCC", 200, "ethereum"),
	})
	want := []string{"CCC", "AAA", "BBB"}
	for i, sym := range want {
		if analysis.Holdings[i].Symbol != sym {
			t.Errorf("holding %d = %s, want %s", i, analysis.Holdings[i].Symbol, sym)
		}
	}
}

package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
)

func holding(symbol, chain string, balance string, valueUSD float64) entity.NormalizedHolding {
	return entity.NormalizedHolding{
		Symbol:   symbol,
		Chain:    chain,
		Balance:  decimal.RequireFromString(balance),
		ValueUSD: valueUSD,
	}
}

func TestAggregateMergesAcrossChains(t *testing.T) {
	a := NewAggregator()
	got := a.Aggregate([]entity.NormalizedHolding{
		holding("USDC", "ethereum", "100", 100),
		holding("ETH", "ethereum", "1", 3000),
		holding("USDC", "base", "50", 50),
	})

	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(got), got)
	}

	usdc := got[0]
	if usdc.Symbol != "USDC" {
		t.Fatalf("first row = %s, want USDC (first appearance order)", usdc.Symbol)
	}
	if usdc.TotalBalance.String() != "150" {
		t.Errorf("USDC balance = %s, want 150", usdc.TotalBalance)
	}
	if usdc.TotalValueUSD != 150 {
		t.Errorf("USDC value = %f, want 150", usdc.TotalValueUSD)
	}
	if len(usdc.Chains) != 2 || usdc.Chains[0] != "ethereum" || usdc.Chains[1] != "base" {
		t.Errorf("USDC chains = %v, want [ethereum base]", usdc.Chains)
	}
}

func TestAggregateSingleChainIsIdentityLike(t *testing.T) {
	a := NewAggregator()
	got := a.Aggregate([]entity.NormalizedHolding{
		holding("ETH", "ethereum", "2", 6000),
		holding("LINK", "ethereum", "10", 250),
	})

	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].Symbol != "ETH" || got[1].Symbol != "LINK" {
		t.Errorf("order = [%s %s], want first-appearance [ETH LINK]", got[0].Symbol, got[1].Symbol)
	}
	for _, row := range got {
		if len(row.Chains) != 1 || row.Chains[0] != "ethereum" {
			t.Errorf("%s chains = %v, want [ethereum]", row.Symbol, row.Chains)
		}
	}
}

func TestAggregateSymbolsAreCaseSensitive(t *testing.T) {
	a := NewAggregator()
	got := a.Aggregate([]entity.NormalizedHolding{
		holding("USDC", "ethereum", "100", 100),
		holding("usdc", "base", "50", 50),
	})
	if len(got) != 2 {
		t.Fatalf("distinct-case symbols must not merge, got %d rows: %+v", len(got), got)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	a := NewAggregator()
	if got := a.Aggregate(nil); len(got) != 0 {
		t.Fatalf("empty input should produce no rows, got %+v", got)
	}
}

func TestAggregateCustomMergeKey(t *testing.T) {
	a := Aggregator{Key: func(h entity.NormalizedHolding) string {
		return h.Symbol + "@" + h.Chain
	}}
	got := a.Aggregate([]entity.NormalizedHolding{
		holding("USDC", "ethereum", "100", 100),
		holding("USDC", "base", "50", 50),
	})
	if len(got) != 2 {
		t.Fatalf("per-chain key should keep rows apart, got %d", len(got))
	}
}

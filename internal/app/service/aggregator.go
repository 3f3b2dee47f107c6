package service

import (
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
)

// MergeKeyFunc decides which normalized holdings merge into one aggregated row.
type MergeKeyFunc func(h entity.NormalizedHolding) string

// SymbolMergeKey merges by exact symbol string, case-sensitive. Same-symbol
// tokens backed by different contracts therefore merge; this is the documented
// display approximation, not address-level dedup.
func SymbolMergeKey(h entity.NormalizedHolding) string {
	return h.Symbol
}

// Aggregator merges normalized holdings across chains into one row per merge key.
type Aggregator struct {
	Key MergeKeyFunc
}

// NewAggregator creates an Aggregator with the symbol merge key.
func NewAggregator() Aggregator {
	return Aggregator{Key: SymbolMergeKey}
}

// Aggregate merges the concatenated holdings of all queried chains. For each
// group it sums balances and USD values and collects contributing chains in
// order of first appearance. Group order follows first appearance as well;
// final ordering is the analyzer's job.
func (a Aggregator) Aggregate(holdings []entity.NormalizedHolding) []entity.AggregatedHolding {
	key := a.Key
	if key == nil {
		key = SymbolMergeKey
	}

	index := make(map[string]int, len(holdings))
	out := make([]entity.AggregatedHolding, 0, len(holdings))

	for _, h := range holdings {
		k := key(h)
		i, seen := index[k]
		if !seen {
			index[k] = len(out)
			out = append(out, entity.AggregatedHolding{
				Symbol:        h.Symbol,
				TotalBalance:  h.Balance,
				TotalValueUSD: h.ValueUSD,
				Chains:        []string{h.Chain},
			})
			continue
		}

		row := &out[i]
		row.TotalBalance = row.TotalBalance.Add(h.Balance)
		row.TotalValueUSD += h.ValueUSD
		if !containsChain(row.Chains, h.Chain) {
			row.Chains = append(row.Chains, h.Chain)
		}
	}
	return out
}

func containsChain(chains []string, chain string) bool {
	for _, c := range chains {
		if c == chain {
			return true
		}
	}
	return false
}

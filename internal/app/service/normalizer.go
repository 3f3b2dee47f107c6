package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
)

// DefaultDustThresholdUSD is the value below which a holding is dropped from reports.
const DefaultDustThresholdUSD = 0.01

// stablecoinSymbols are priced at a pinned $1.00 instead of a market lookup.
var stablecoinSymbols = map[string]struct{}{
	"USDC":  {},
	"USDT":  {},
	"DAI":   {},
	"FRAX":  {},
	"LUSD":  {},
	"USDbC": {},
	"BUSD":  {},
}

// ethVariantSymbols are priced at the per-request ETH reference price.
var ethVariantSymbols = map[string]struct{}{
	"ETH":  {},
	"WETH": {},
}

// IsStablecoinSymbol reports whether the exact symbol carries the $1 price pin.
func IsStablecoinSymbol(symbol string) bool {
	_, ok := stablecoinSymbols[symbol]
	return ok
}

// PriceLookup resolves a USD spot price for a token on a chain's price-source
// namespace. The key is the lowercased contract address, or the symbol when no
// contract exists. Returning false means no price is known.
type PriceLookup func(priceChainID, addressOrSymbol string) (float64, bool)

// Normalizer converts raw chain balances into priced holdings and applies the
// dust filter. It is a pure function of its inputs.
type Normalizer struct {
	DustThresholdUSD float64
}

// NewNormalizer creates a Normalizer with the default dust threshold.
func NewNormalizer() Normalizer {
	return Normalizer{DustThresholdUSD: DefaultDustThresholdUSD}
}

// Normalize prices each balance and drops entries valued at or below the dust
// threshold. Balances are parsed from their decimal strings here and nowhere
// earlier; upstream stages keep integer base units. Entries with no resolvable
// price and no stablecoin/ETH pin value to zero and fall to the dust filter.
func (n Normalizer) Normalize(
	balances []entity.ChainBalance,
	priceChainID string,
	ethPriceUSD float64,
	lookup PriceLookup,
) []entity.NormalizedHolding {
	out := make([]entity.NormalizedHolding, 0, len(balances))
	for _, b := range balances {
		bal, ok := parseBalance(b)
		if !ok {
			continue
		}

		price := n.resolvePrice(b, priceChainID, ethPriceUSD, lookup)
		valueUSD := 0.0
		if price > 0 {
			valueUSD, _ = bal.Mul(decimal.NewFromFloat(price)).Float64()
		}
		if valueUSD <= n.DustThresholdUSD {
			continue
		}

		out = append(out, entity.NormalizedHolding{
			Symbol:   b.Symbol,
			Chain:    b.Chain,
			Balance:  bal,
			ValueUSD: valueUSD,
		})
	}
	return out
}

func (n Normalizer) resolvePrice(
	b entity.ChainBalance,
	priceChainID string,
	ethPriceUSD float64,
	lookup PriceLookup,
) float64 {
	if IsStablecoinSymbol(b.Symbol) {
		return 1.0
	}
	if _, ok := ethVariantSymbols[b.Symbol]; ok {
		return ethPriceUSD
	}
	if lookup == nil || priceChainID == "" {
		return 0
	}
	key := strings.ToLower(b.TokenAddress)
	if key == "" || key == entity.ZeroAddress {
		key = b.Symbol
	}
	price, found := lookup(priceChainID, key)
	if !found {
		return 0
	}
	return price
}

func parseBalance(b entity.ChainBalance) (decimal.Decimal, bool) {
	if b.Formatted != "" {
		if bal, err := decimal.NewFromString(b.Formatted); err == nil {
			return bal, true
		}
	}
	if b.Amount != nil {
		return decimal.NewFromBigInt(b.Amount, -int32(b.Decimals)), true
	}
	return decimal.Decimal{}, false
}

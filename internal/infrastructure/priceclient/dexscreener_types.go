package priceclient

// PairData contains the fields we consume from one DEX Screener trading pair.
type PairData struct {
	ChainID     string        `json:"chainId"`
	DexID       string        `json:"dexId"`
	PairAddress string        `json:"pairAddress"`
	BaseToken   PairToken     `json:"baseToken"`
	QuoteToken  PairToken     `json:"quoteToken"`
	PriceNative string        `json:"priceNative"`
	PriceUsd    string        `json:"priceUsd"`
	Liquidity   *PairLiquidity `json:"liquidity"`
	Fdv         float64       `json:"fdv"`
	MarketCap   float64       `json:"marketCap"`
}

// PairToken represents a token in a trading pair.
type PairToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// PairLiquidity represents the liquidity information for a pair. Pointer at
// the call site to handle nulls.
type PairLiquidity struct {
	Usd   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

// pairsWrapper handles the wrapped-object response shape some endpoints return.
type pairsWrapper struct {
	SchemaVersion string     `json:"schemaVersion"`
	Pairs         []PairData `json:"pairs"`
}

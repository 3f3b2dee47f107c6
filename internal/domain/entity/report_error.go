package entity

import "errors"

// ReportError records a recoverable failure encountered while building a report.
type ReportError struct {
	Chain        string `json:"chain"`
	TokenSymbol  string `json:"tokenSymbol,omitempty"`
	TokenAddress string `json:"tokenAddress,omitempty"`
	Message      string `json:"message"`
}

var (
	// ErrUnsupportedChain indicates the requested chain tag is not recognized.
	ErrUnsupportedChain = errors.New("unsupported chain")
	// ErrAllChainsFailed indicates no chain returned any balance data.
	ErrAllChainsFailed = errors.New("all chain balance fetches failed")
)

// PriceQuery keys one spot-price lookup.
type PriceQuery struct {
	Chain string // price-source chain identifier, not the request tag
	Token string // lowercased token address, or symbol when no contract exists
}

// PriceQuote is the price source's answer for one query.
type PriceQuote struct {
	Price      float64
	Confidence float64
}

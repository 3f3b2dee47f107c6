package entity

import "math/big"

// ChainBalance represents the amount of one token (or the native coin) held by
// a wallet on one chain. Amount carries the raw integer base units; Formatted
// is the full-precision decimal string derived from Amount and Decimals.
type ChainBalance struct {
	Chain        string
	TokenAddress string // empty or ZeroAddress for the native coin
	Symbol       string
	Decimals     uint8
	IsNative     bool
	Amount       *big.Int
	Formatted    string
}

// ChainResult is the outcome of one per-chain balance fetch. A failed chain
// contributes zero entries to aggregation rather than aborting the request.
type ChainResult struct {
	Chain    string
	Balances []ChainBalance
	Err      error
}

// Failed reports whether the chain fetch produced no usable data.
func (r ChainResult) Failed() bool {
	return r.Err != nil
}

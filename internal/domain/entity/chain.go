package entity

// ChainFamily distinguishes how balances are fetched for a chain.
type ChainFamily string

const (
	// ChainFamilyEVM covers chains speaking standard Ethereum JSON-RPC.
	ChainFamilyEVM ChainFamily = "evm"
	// ChainFamilyStarknet covers chains speaking the Starknet JSON-RPC dialect.
	ChainFamilyStarknet ChainFamily = "starknet"
)

// ZeroAddress represents the EVM zero address, used as the native-coin marker.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// ChainTagAll requests aggregation across every supported chain.
const ChainTagAll = "all"

// TokenInfo holds the details of one tracked token contract.
type TokenInfo struct {
	Address  string `yaml:"address"`
	Symbol   string `yaml:"symbol"`
	Decimals uint8  `yaml:"decimals"`
}

// ChainDefinition holds the configuration for a specific blockchain network.
// Defined at the domain level so application and infrastructure layers share it.
type ChainDefinition struct {
	ChainID              uint64      `yaml:"chainId"`
	Name                 string      `yaml:"name"`
	Identifier           string      `yaml:"identifier"` // request-facing tag, e.g. "ethereum", "base"
	Family               ChainFamily `yaml:"family"`
	NativeSymbol         string      `yaml:"nativeSymbol"`
	NativeDecimals       uint8       `yaml:"nativeDecimals"`
	PrimaryRPCURL        string      `yaml:"primaryRpcUrl"`
	FallbackRPCURLs      []string    `yaml:"fallbackRpcUrls"`
	DEXScreenerChainID   string      `yaml:"dexScreenerChainId"`
	WrappedNativeAddress string      `yaml:"wrappedNativeAddress"`
	Tokens               []TokenInfo `yaml:"tokens"`
}

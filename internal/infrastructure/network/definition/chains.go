package definition

import (
	"strings"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/app/port"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
)

// Predefined chain definitions with their curated token lists.
var (
	Ethereum = entity.ChainDefinition{
		ChainID:              1,
		Name:                 "Ethereum Mainnet",
		Identifier:           "ethereum",
		Family:               entity.ChainFamilyEVM,
		NativeSymbol:         "ETH",
		NativeDecimals:       18,
		PrimaryRPCURL:        "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:      []string{"https://rpc.ankr.com/eth", "https://eth.llamarpc.com"},
		DEXScreenerChainID:   "ethereum",
		WrappedNativeAddress: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", // WETH
		Tokens: []entity.TokenInfo{
			{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Decimals: 6},
			{Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Symbol: "USDT", Decimals: 6},
			{Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Symbol: "DAI", Decimals: 18},
			{Address: "0x853d955aCEf822Db058eb8505911ED77F175b99e", Symbol: "FRAX", Decimals: 18},
			{Address: "0x5f98805A4E8be255a32880FDeC7F6728C6568bA0", Symbol: "LUSD", Decimals: 18},
			{Address: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", Symbol: "WBTC", Decimals: 8},
			{Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", Symbol: "WETH", Decimals: 18},
			{Address: "0x514910771AF9Ca656af840dff83E8264EcF986CA", Symbol: "LINK", Decimals: 18},
			{Address: "0x7Fc66500c84A76Ad7e9c93437bFc5Ac33E2DDaE9", Symbol: "AAVE", Decimals: 18},
			{Address: "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984", Symbol: "UNI", Decimals: 18},
			{Address: "0x5A98FcBEA516Cf06857215779Fd812CA3beF1B32", Symbol: "LDO", Decimals: 18},
			{Address: "0xD533a949740bb3306d119CC777fa900bA034cd52", Symbol: "CRV", Decimals: 18},
			{Address: "0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2", Symbol: "MKR", Decimals: 18},
			{Address: "0xc00e94Cb662C3520282E6f5717214004A7f26888", Symbol: "COMP", Decimals: 18},
		},
	}

	Base = entity.ChainDefinition{
		ChainID:              8453,
		Name:                 "Base",
		Identifier:           "base",
		Family:               entity.ChainFamilyEVM,
		NativeSymbol:         "ETH",
		NativeDecimals:       18,
		PrimaryRPCURL:        "https://mainnet.base.org",
		FallbackRPCURLs:      []string{"https://base-rpc.publicnode.com", "https://base.llamarpc.com"},
		DEXScreenerChainID:   "base",
		WrappedNativeAddress: "0x4200000000000000000000000000000000000006", // WETH
		Tokens: []entity.TokenInfo{
			{Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Symbol: "USDC", Decimals: 6},
			{Address: "0xd9aAEc86B65D86f6A7B5B1b0c42FFA531710b6CA", Symbol: "USDbC", Decimals: 6},
			{Address: "0x50c5725949A6F0c72E6C4a641F24049A917DB0Cb", Symbol: "DAI", Decimals: 18},
			{Address: "0x4200000000000000000000000000000000000006", Symbol: "WETH", Decimals: 18},
			{Address: "0x2Ae3F1Ec7F1F5012CFEab0185bfc7aa3cf0DEc22", Symbol: "cbETH", Decimals: 18},
			{Address: "0x940181a94A35A4569E4529A3CDfB74e38FD98631", Symbol: "AERO", Decimals: 18},
		},
	}

	Arbitrum = entity.ChainDefinition{
		ChainID:              42161,
		Name:                 "Arbitrum One",
		Identifier:           "arbitrum",
		Family:               entity.ChainFamilyEVM,
		NativeSymbol:         "ETH",
		NativeDecimals:       18,
		PrimaryRPCURL:        "https://arb1.arbitrum.io/rpc",
		FallbackRPCURLs:      []string{"https://arbitrum-one.publicnode.com", "https://rpc.ankr.com/arbitrum"},
		DEXScreenerChainID:   "arbitrum",
		WrappedNativeAddress: "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1", // WETH
		Tokens: []entity.TokenInfo{
			{Address: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", Symbol: "USDC", Decimals: 6},
			{Address: "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9", Symbol: "USDT", Decimals: 6},
			{Address: "0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1", Symbol: "DAI", Decimals: 18},
			{Address: "0x912CE59144191C1204E64559FE8253a0e49E6548", Symbol: "ARB", Decimals: 18},
			{Address: "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1", Symbol: "WETH", Decimals: 18},
			{Address: "0x2f2a2543B76A4166549F7aaB2e75Bef0aefC5B0f", Symbol: "WBTC", Decimals: 8},
			{Address: "0xf97f4df75117a78c1A5a0DBb814Af92458539FB4", Symbol: "LINK", Decimals: 18},
			{Address: "0xfc5A1A6EB076a2C7aD06eD22C90d7E710E35ad0a", Symbol: "GMX", Decimals: 18},
		},
	}

	Hyperliquid = entity.ChainDefinition{
		ChainID:            999,
		Name:               "Hyperliquid EVM",
		Identifier:         "hyperliquid",
		Family:             entity.ChainFamilyEVM,
		NativeSymbol:       "HYPE",
		NativeDecimals:     18,
		PrimaryRPCURL:      "https://rpc.hyperliquid.xyz/evm",
		FallbackRPCURLs:    []string{"https://rpc.hypurrscan.io"},
		DEXScreenerChainID: "hyperevm",
		// WHYPE
		WrappedNativeAddress: "0x5555555555555555555555555555555555555555",
		Tokens: []entity.TokenInfo{
			{Address: "0x5555555555555555555555555555555555555555", Symbol: "WHYPE", Decimals: 18},
			{Address: "0x9b498C3c8A0b8CD8BA1D9851d40D186F1872b44E", Symbol: "PURR", Decimals: 18},
		},
	}

	Starknet = entity.ChainDefinition{
		// Starknet has no EVM numeric chain id; 0 marks the non-EVM family.
		ChainID:            0,
		Name:               "Starknet Mainnet",
		Identifier:         "starknet",
		Family:             entity.ChainFamilyStarknet,
		NativeSymbol:       "STRK",
		NativeDecimals:     18,
		PrimaryRPCURL:      "https://starknet-mainnet.public.blastapi.io/rpc/v0_7",
		FallbackRPCURLs:    []string{"https://free-rpc.nethermind.io/mainnet-juno/v0_7"},
		DEXScreenerChainID: "starknet",
		Tokens: []entity.TokenInfo{
			{Address: "0x04718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d", Symbol: "STRK", Decimals: 18},
			{Address: "0x049d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7", Symbol: "ETH", Decimals: 18},
			{Address: "0x053c91253bc9682c04929ca02ed00b3e423f6710d2ee7e0d5ebb06f3ecf368a8", Symbol: "USDC", Decimals: 6},
		},
	}
)

// Provider implements port.ChainDefinitionProvider over the compiled-in set.
type Provider struct {
	logger port.Logger
	byTag  map[string]entity.ChainDefinition
	all    []entity.ChainDefinition
}

// NewProvider creates a Provider with every supported chain.
func NewProvider(l port.Logger) *Provider {
	all := []entity.ChainDefinition{Ethereum, Base, Arbitrum, Hyperliquid, Starknet}
	byTag := make(map[string]entity.ChainDefinition, len(all))
	for _, def := range all {
		byTag[def.Identifier] = def
	}
	l.Info("Chain definitions loaded", "count", len(all))
	return &Provider{logger: l, byTag: byTag, all: all}
}

// GetAllChainDefinitions returns every supported chain definition.
func (p *Provider) GetAllChainDefinitions() []entity.ChainDefinition {
	out := make([]entity.ChainDefinition, len(p.all))
	copy(out, p.all)
	return out
}

// GetChainDefinition returns the definition for a request chain tag.
func (p *Provider) GetChainDefinition(identifier string) (entity.ChainDefinition, bool) {
	def, ok := p.byTag[strings.ToLower(identifier)]
	return def, ok
}

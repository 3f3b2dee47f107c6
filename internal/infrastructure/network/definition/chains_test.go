package definition

import (
	"testing"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/pkg/logger"
)

func TestProviderLookup(t *testing.T) {
	p := NewProvider(logger.NewNop())

	tests := []struct {
		tag        string
		wantFound  bool
		wantFamily entity.ChainFamily
	}{
		{"ethereum", true, entity.ChainFamilyEVM},
		{"base", true, entity.ChainFamilyEVM},
		{"arbitrum", true, entity.ChainFamilyEVM},
		{"hyperliquid", true, entity.ChainFamilyEVM},
		{"starknet", true, entity.ChainFamilyStarknet},
		{"Ethereum", true, entity.ChainFamilyEVM}, // case-insensitive
		{"dogechain", false, ""},
		{"", false, ""},
	}
	for _, tt := range tests {
		def, ok := p.GetChainDefinition(tt.tag)
		if ok != tt.wantFound {
			t.Errorf("GetChainDefinition(%q) found = %t, want %t", tt.tag, ok, tt.wantFound)
			continue
		}
		if ok && def.Family != tt.wantFamily {
			t.Errorf("GetChainDefinition(%q) family = %s, want %s", tt.tag, def.Family, tt.wantFamily)
		}
	}
}

func TestProviderDefinitionsAreComplete(t *testing.T) {
	p := NewProvider(logger.NewNop())
	defs := p.GetAllChainDefinitions()
	if len(defs) != 5 {
		t.Fatalf("got %d chains, want 5", len(defs))
	}
	for _, def := range defs {
		if def.Identifier == "" || def.NativeSymbol == "" || def.PrimaryRPCURL == "" {
			t.Errorf("chain %+v is missing required fields", def)
		}
		if def.Family == entity.ChainFamilyEVM && def.ChainID == 0 {
			t.Errorf("EVM chain %s has no chain ID", def.Identifier)
		}
		if def.DEXScreenerChainID == "" {
			t.Errorf("chain %s has no price-source chain ID", def.Identifier)
		}
	}
}

func TestEthereumCarriesWrappedNative(t *testing.T) {
	p := NewProvider(logger.NewNop())
	def, ok := p.GetChainDefinition("ethereum")
	if !ok {
		t.Fatal("ethereum must be supported")
	}
	if def.WrappedNativeAddress == "" {
		t.Error("ethereum definition needs a wrapped-native address for the ETH reference price")
	}
	if len(def.Tokens) == 0 {
		t.Error("ethereum definition should track tokens")
	}
}

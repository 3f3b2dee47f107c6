package port

import (
	"context"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
)

// BalanceSource fetches the full balance set (native coin + tracked tokens)
// for one wallet on one chain. Implementations are chain-family specific.
type BalanceSource interface {
	// GetBalances returns every non-zero balance for the wallet. Per-token
	// sub-failures are skipped; an error means the chain as a whole is
	// unreachable for this request.
	GetBalances(ctx context.Context, walletAddress string) ([]entity.ChainBalance, error)

	// Definition returns the chain definition associated with this source.
	Definition() entity.ChainDefinition
}

// BalanceSourceProvider hands out balance sources per chain definition.
type BalanceSourceProvider interface {
	GetSource(def entity.ChainDefinition) (BalanceSource, error)
}

// ChainDefinitionProvider supplies the set of supported chains.
type ChainDefinitionProvider interface {
	// GetAllChainDefinitions returns every supported chain definition.
	GetAllChainDefinitions() []entity.ChainDefinition

	// GetChainDefinition returns the definition for a request chain tag and
	// true when found, otherwise false.
	GetChainDefinition(identifier string) (entity.ChainDefinition, bool)
}

package client

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/app/port"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
)

const defaultConnectionTimeout = 10 * time.Second

// sourceProvider implements port.BalanceSourceProvider. Sources are cached per
// chain to avoid reconnecting on every request.
type sourceProvider struct {
	sources           map[string]port.BalanceSource
	mu                sync.Mutex
	logger            *zap.Logger
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
}

// NewSourceProvider creates a provider that builds the right client for each
// chain family.
func NewSourceProvider(logger *zap.Logger, rpcCallTimeout time.Duration) port.BalanceSourceProvider {
	return &sourceProvider{
		sources:           make(map[string]port.BalanceSource),
		logger:            logger,
		connectionTimeout: defaultConnectionTimeout,
		rpcCallTimeout:    rpcCallTimeout,
	}
}

// GetSource retrieves (or creates and caches) the balance source for a chain.
func (p *sourceProvider) GetSource(def entity.ChainDefinition) (port.BalanceSource, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if source, exists := p.sources[def.Identifier]; exists {
		return source, nil
	}

	p.logger.Info("Creating balance source",
		zap.String("chain", def.Identifier), zap.String("family", string(def.Family)))

	var (
		source port.BalanceSource
		err    error
	)
	switch def.Family {
	case entity.ChainFamilyEVM:
		source, err = NewEVMClient(def, p.logger, p.connectionTimeout, p.rpcCallTimeout)
	case entity.ChainFamilyStarknet:
		source, err = NewStarknetClient(def, p.logger, p.connectionTimeout, p.rpcCallTimeout)
	default:
		err = fmt.Errorf("unknown chain family %q", def.Family)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create balance source for %s: %w", def.Identifier, err)
	}

	p.sources[def.Identifier] = source
	return source, nil
}

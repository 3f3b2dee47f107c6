package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/app/port"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/pkg/utils"
)

// balanceOfSelector is the Starknet entry point selector for ERC-20 balanceOf
// (starknet_keccak("balanceOf")).
const balanceOfSelector = "0x2e4263afad30923c891518314c3c95dbe830a16874e8abc5777a9a20b54c76e"

// StarknetClient implements port.BalanceSource over the Starknet JSON-RPC
// dialect. Every asset on Starknet, including ETH and STRK, is an ERC-20, so
// all balances go through starknet_call.
type StarknetClient struct {
	rpcClient      *rpc.Client
	def            entity.ChainDefinition
	logger         *zap.Logger
	rpcCallTimeout time.Duration
}

type starknetCallRequest struct {
	ContractAddress    string   `json:"contract_address"`
	EntryPointSelector string   `json:"entry_point_selector"`
	Calldata           []string `json:"calldata"`
}

// NewStarknetClient dials the chain's RPC URL, falling back through the
// configured alternatives. The generic go-ethereum rpc client carries the
// Starknet method set fine since both speak plain JSON-RPC 2.0.
func NewStarknetClient(def entity.ChainDefinition, logger *zap.Logger, connectionTimeout, rpcCallTimeout time.Duration) (port.BalanceSource, error) {
	rpcURLs := append([]string{def.PrimaryRPCURL}, def.FallbackRPCURLs...)
	var lastErr error

	for _, rpcURL := range rpcURLs {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		rpcClient, err := rpc.DialContext(ctx, rpcURL)
		cancel()

		if err == nil {
			return &StarknetClient{
				rpcClient:      rpcClient,
				def:            def,
				logger:         logger.Named("StarknetClient"),
				rpcCallTimeout: rpcCallTimeout,
			}, nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}

	return nil, fmt.Errorf("all RPC connection attempts failed for chain %s: %w", def.Identifier, lastErr)
}

// GetBalances calls balanceOf for every tracked token. A failing token is
// skipped; the chain fails only when every call fails.
func (c *StarknetClient) GetBalances(ctx context.Context, walletAddress string) ([]entity.ChainBalance, error) {
	rpcCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	balances := make([]entity.ChainBalance, 0, len(c.def.Tokens))
	var lastErr error
	failures := 0

	for _, token := range c.def.Tokens {
		amount, err := c.balanceOf(rpcCtx, token.Address, walletAddress)
		if err != nil {
			failures++
			lastErr = err
			c.logger.Warn("starknet_call balanceOf failed, skipping token",
				zap.String("symbol", token.Symbol), zap.Error(err))
			continue
		}
		if amount.Sign() == 0 {
			continue
		}
		formatted, err := utils.FormatBigInt(amount, token.Decimals)
		if err != nil {
			c.logger.Warn("Failed to format balance, skipping token",
				zap.String("symbol", token.Symbol), zap.Error(err))
			continue
		}
		balances = append(balances, entity.ChainBalance{
			Chain:        c.def.Identifier,
			TokenAddress: token.Address,
			Symbol:       token.Symbol,
			Decimals:     token.Decimals,
			IsNative:     token.Symbol == c.def.NativeSymbol,
			Amount:       amount,
			Formatted:    formatted,
		})
	}

	if failures == len(c.def.Tokens) && failures > 0 {
		return nil, fmt.Errorf("all starknet balance calls failed: %w", lastErr)
	}
	return balances, nil
}

// Definition returns the chain definition for this client.
func (c *StarknetClient) Definition() entity.ChainDefinition {
	return c.def
}

// balanceOf issues one starknet_call. The result is a u256 split into two
// felts: [low, high].
func (c *StarknetClient) balanceOf(ctx context.Context, contractAddress, walletAddress string) (*big.Int, error) {
	call := starknetCallRequest{
		ContractAddress:    contractAddress,
		EntryPointSelector: balanceOfSelector,
		Calldata:           []string{walletAddress},
	}

	var felts []string
	if err := c.rpcClient.CallContext(ctx, &felts, "starknet_call", call, "latest"); err != nil {
		return nil, fmt.Errorf("starknet_call failed for %s: %w", contractAddress, err)
	}
	if len(felts) == 0 {
		return nil, fmt.Errorf("starknet_call returned no data for %s", contractAddress)
	}

	low, err := parseFelt(felts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid low felt %q: %w", felts[0], err)
	}
	if len(felts) == 1 {
		return low, nil
	}
	high, err := parseFelt(felts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid high felt %q: %w", felts[1], err)
	}

	amount := new(big.Int).Lsh(high, 128)
	return amount.Add(amount, low), nil
}

func parseFelt(felt string) (*big.Int, error) {
	s := strings.TrimPrefix(felt, "0x")
	if s == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("not a hex felt")
	}
	return v, nil
}

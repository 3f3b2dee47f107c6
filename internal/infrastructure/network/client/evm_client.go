package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/app/port"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/pkg/utils"
)

// EVMClient implements port.BalanceSource for EVM-compatible chains using
// JSON-RPC batch requests.
type EVMClient struct {
	ethClient      *ethclient.Client
	def            entity.ChainDefinition
	logger         *zap.Logger
	rpcCallTimeout time.Duration
}

// ERC20 ABI minimal part for balanceOf
const erc20ABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}]`

var (
	parsedERC20ABI  abi.ABI
	parsedERC20Once sync.Once
	erc20MethodID   []byte
)

func initParsedERC20ABI() {
	parsedERC20Once.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
		balanceOfMethod, ok := parsedERC20ABI.Methods["balanceOf"]
		if !ok {
			panic("balanceOf method not found in parsed ERC20 ABI")
		}
		erc20MethodID = balanceOfMethod.ID
	})
}

// NewEVMClient dials the chain's primary RPC URL, falling back through the
// configured alternatives.
func NewEVMClient(def entity.ChainDefinition, logger *zap.Logger, connectionTimeout, rpcCallTimeout time.Duration) (port.BalanceSource, error) {
	initParsedERC20ABI()
	rpcURLs := append([]string{def.PrimaryRPCURL}, def.FallbackRPCURLs...)
	var lastErr error

	for _, rpcURL := range rpcURLs {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		ethClient, err := ethclient.DialContext(ctx, rpcURL)
		cancel()

		if err == nil {
			return &EVMClient{
				ethClient:      ethClient,
				def:            def,
				logger:         logger.Named("EVMClient").With(zap.String("chain", def.Identifier)),
				rpcCallTimeout: rpcCallTimeout,
			}, nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}

	return nil, fmt.Errorf("all RPC connection attempts failed for chain %s: %w", def.Identifier, lastErr)
}

// GetBalances fetches the native balance plus every tracked token balance in
// one JSON-RPC batch. Per-token sub-errors drop that token only; the returned
// slice contains non-zero balances.
func (c *EVMClient) GetBalances(ctx context.Context, walletAddress string) ([]entity.ChainBalance, error) {
	tokens := c.def.Tokens
	batchElems := make([]rpc.BatchElem, 0, len(tokens)+1)

	wallet := common.HexToAddress(walletAddress)
	batchElems = append(batchElems, rpc.BatchElem{
		Method: "eth_getBalance",
		Args:   []interface{}{wallet, "latest"},
		Result: new(*hexutil.Big),
	})

	paddedWallet := common.LeftPadBytes(wallet.Bytes(), 32)
	callData := append(append([]byte{}, erc20MethodID...), paddedWallet...)
	for _, token := range tokens {
		callArgs := map[string]interface{}{
			"to":   common.HexToAddress(token.Address),
			"data": hexutil.Bytes(callData),
		}
		batchElems = append(batchElems, rpc.BatchElem{
			Method: "eth_call",
			Args:   []interface{}{callArgs, "latest"},
			Result: new(hexutil.Bytes),
		})
	}

	rpcCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	if err := c.ethClient.Client().BatchCallContext(rpcCtx, batchElems); err != nil {
		return nil, fmt.Errorf("RPC batch call failed for %s: %w", c.def.Identifier, err)
	}

	balances := make([]entity.ChainBalance, 0, len(batchElems))

	if native, err := decodeNativeBalance(batchElems[0]); err != nil {
		c.logger.Warn("Failed to decode native balance", zap.Error(err))
	} else if native.Sign() != 0 {
		if cb, err := c.buildBalance(entity.ZeroAddress, c.def.NativeSymbol, c.def.NativeDecimals, true, native); err != nil {
			c.logger.Warn("Failed to format native balance", zap.Error(err))
		} else {
			balances = append(balances, cb)
		}
	}

	for i, token := range tokens {
		elem := batchElems[i+1]
		amount, err := decodeTokenBalance(elem)
		if err != nil {
			c.logger.Warn("Failed to decode token balance, skipping",
				zap.String("symbol", token.Symbol), zap.String("address", token.Address), zap.Error(err))
			continue
		}
		if amount.Sign() == 0 {
			continue
		}
		cb, err := c.buildBalance(token.Address, token.Symbol, token.Decimals, false, amount)
		if err != nil {
			c.logger.Warn("Failed to format token balance, skipping",
				zap.String("symbol", token.Symbol), zap.Error(err))
			continue
		}
		balances = append(balances, cb)
	}

	return balances, nil
}

// Definition returns the chain definition for this client.
func (c *EVMClient) Definition() entity.ChainDefinition {
	return c.def
}

func (c *EVMClient) buildBalance(tokenAddress, symbol string, decimals uint8, isNative bool, amount *big.Int) (entity.ChainBalance, error) {
	formatted, err := utils.FormatBigInt(amount, decimals)
	if err != nil {
		return entity.ChainBalance{}, err
	}
	return entity.ChainBalance{
		Chain:        c.def.Identifier,
		TokenAddress: tokenAddress,
		Symbol:       symbol,
		Decimals:     decimals,
		IsNative:     isNative,
		Amount:       amount,
		Formatted:    formatted,
	}, nil
}

func decodeNativeBalance(elem rpc.BatchElem) (*big.Int, error) {
	if elem.Error != nil {
		return nil, elem.Error
	}
	result, ok := elem.Result.(**hexutil.Big)
	if !ok || result == nil || *result == nil {
		return nil, fmt.Errorf("unexpected eth_getBalance result type %T", elem.Result)
	}
	return (*big.Int)(*result), nil
}

func decodeTokenBalance(elem rpc.BatchElem) (*big.Int, error) {
	if elem.Error != nil {
		return nil, elem.Error
	}
	result, ok := elem.Result.(*hexutil.Bytes)
	if !ok || result == nil {
		return nil, fmt.Errorf("unexpected eth_call result type %T", elem.Result)
	}
	if len(*result) == 0 {
		return big.NewInt(0), nil
	}
	unpacked, err := parsedERC20ABI.Unpack("balanceOf", *result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack balanceOf result: %w", err)
	}
	if len(unpacked) == 0 {
		return nil, fmt.Errorf("balanceOf unpack returned no data")
	}
	amount, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("failed to assert unpacked balanceOf result to *big.Int, got %T", unpacked[0])
	}
	return amount, nil
}

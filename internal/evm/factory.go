package evm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"exchange-indexer/internal/observability"
)

const factoryABI = `[{
	"constant": true,
	"inputs": [{"name": "tokenA", "type": "address"}, {"name": "tokenB", "type": "address"}],
	"name": "getPair",
	"outputs": [{"name": "pair", "type": "address"}],
	"stateMutability": "view",
	"type": "function"
}]`

// FactoryRegistry implements PairRegistry with eth_call against a factory contract.
type FactoryRegistry struct {
	caller  ethereum.ContractCaller
	factory common.Address
	abi     abi.ABI
}

// NewFactoryRegistry creates a registry bound to the factory at address.
// caller is usually an *ethclient.Client.
func NewFactoryRegistry(caller ethereum.ContractCaller, address string) (*FactoryRegistry, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("factory %q: %w", address, ErrInvalidAddress)
	}
	parsed, err := abi.JSON(strings.NewReader(factoryABI))
	if err != nil {
		return nil, fmt.Errorf("parse factory abi: %w", err)
	}
	return &FactoryRegistry{
		caller:  caller,
		factory: common.HexToAddress(address),
		abi:     parsed,
	}, nil
}

// GetPair calls getPair(tokenA, tokenB) at the latest block.
func (r *FactoryRegistry) GetPair(ctx context.Context, tokenA, tokenB string) (string, error) {
	if !common.IsHexAddress(tokenA) || !common.IsHexAddress(tokenB) {
		return "", fmt.Errorf("getPair(%s, %s): %w", tokenA, tokenB, ErrInvalidAddress)
	}

	input, err := r.abi.Pack("getPair", common.HexToAddress(tokenA), common.HexToAddress(tokenB))
	if err != nil {
		return "", fmt.Errorf("pack getPair: %w", err)
	}

	start := time.Now()
	out, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &r.factory, Data: input}, nil)
	observability.RecordRPCLatency("getPair", time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("%w: getPair(%s, %s): %v", ErrRegistryQueryFailed, tokenA, tokenB, err)
	}

	values, err := r.abi.Unpack("getPair", out)
	if err != nil || len(values) != 1 {
		return "", fmt.Errorf("%w: decode getPair result: %v", ErrRegistryQueryFailed, err)
	}
	pair, ok := values[0].(common.Address)
	if !ok {
		return "", fmt.Errorf("%w: unexpected getPair result type %T", ErrRegistryQueryFailed, values[0])
	}
	return strings.ToLower(pair.Hex()), nil
}

var _ PairRegistry = (*FactoryRegistry)(nil)

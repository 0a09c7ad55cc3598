package evm

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"exchange-indexer/internal/observability"
)

// Defaults used when a token contract does not answer a metadata call.
const (
	UnknownSymbol   = "unknown"
	UnknownName     = "unknown"
	DefaultDecimals = 18
)

// TokenMetadata holds ERC20 fields read once when a token is first seen.
type TokenMetadata struct {
	Symbol      string
	Name        string
	Decimals    int32
	TotalSupply *big.Int // raw base units
}

// TokenMetadataSource fetches ERC20 metadata.
type TokenMetadataSource interface {
	// TokenMetadata never fails on a misbehaving token; missing fields fall back
	// to defaults. An error means the token address itself is unusable.
	TokenMetadata(ctx context.Context, token string) (*TokenMetadata, error)
}

const erc20ABI = `[
	{"constant": true, "inputs": [], "name": "symbol", "outputs": [{"name": "", "type": "string"}], "type": "function"},
	{"constant": true, "inputs": [], "name": "name", "outputs": [{"name": "", "type": "string"}], "type": "function"},
	{"constant": true, "inputs": [], "name": "decimals", "outputs": [{"name": "", "type": "uint8"}], "type": "function"},
	{"constant": true, "inputs": [], "name": "totalSupply", "outputs": [{"name": "", "type": "uint256"}], "type": "function"}
]`

// Some early tokens (MKR, SAI) return bytes32 instead of string.
const erc20Bytes32ABI = `[
	{"constant": true, "inputs": [], "name": "symbol", "outputs": [{"name": "", "type": "bytes32"}], "type": "function"},
	{"constant": true, "inputs": [], "name": "name", "outputs": [{"name": "", "type": "bytes32"}], "type": "function"}
]`

// ERC20MetadataOptions configures ERC20Metadata.
type ERC20MetadataOptions struct {
	Logger zerolog.Logger
}

// ERC20Metadata implements TokenMetadataSource with eth_call.
type ERC20Metadata struct {
	caller  ethereum.ContractCaller
	std     abi.ABI
	bytes32 abi.ABI
	logger  zerolog.Logger
}

// NewERC20Metadata creates a metadata source on caller.
func NewERC20Metadata(caller ethereum.ContractCaller, opts ERC20MetadataOptions) (*ERC20Metadata, error) {
	std, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	b32, err := abi.JSON(strings.NewReader(erc20Bytes32ABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}
	return &ERC20Metadata{
		caller:  caller,
		std:     std,
		bytes32: b32,
		logger:  opts.Logger.With().Str("component", "erc20_metadata").Logger(),
	}, nil
}

// TokenMetadata reads symbol, name, decimals and totalSupply.
func (m *ERC20Metadata) TokenMetadata(ctx context.Context, token string) (*TokenMetadata, error) {
	if !common.IsHexAddress(token) {
		return nil, fmt.Errorf("token %q: %w", token, ErrInvalidAddress)
	}
	addr := common.HexToAddress(token)

	md := &TokenMetadata{
		Symbol:      m.text(ctx, addr, "symbol", UnknownSymbol),
		Name:        m.text(ctx, addr, "name", UnknownName),
		Decimals:    DefaultDecimals,
		TotalSupply: new(big.Int),
	}

	if v, err := m.call(ctx, m.std, addr, "decimals"); err == nil {
		if d, ok := v.(uint8); ok {
			md.Decimals = int32(d)
		}
	} else {
		m.logger.Warn().Err(err).Str("token", token).Msg("decimals call failed, using default")
	}

	if v, err := m.call(ctx, m.std, addr, "totalSupply"); err == nil {
		if s, ok := v.(*big.Int); ok {
			md.TotalSupply = s
		}
	} else {
		m.logger.Warn().Err(err).Str("token", token).Msg("totalSupply call failed, using zero")
	}

	return md, nil
}

// text reads a string getter, falling back to the bytes32 variant and then def.
func (m *ERC20Metadata) text(ctx context.Context, addr common.Address, method, def string) string {
	v, err := m.call(ctx, m.std, addr, method)
	if err == nil {
		if s, ok := v.(string); ok {
			return s
		}
	}

	v, err32 := m.call(ctx, m.bytes32, addr, method)
	if err32 == nil {
		if b, ok := v.([32]byte); ok {
			if s := string(bytes.TrimRight(b[:], "\x00")); s != "" {
				return s
			}
		}
	}

	m.logger.Warn().Err(err).Str("token", strings.ToLower(addr.Hex())).Str("method", method).Msg("metadata call failed, using default")
	return def
}

func (m *ERC20Metadata) call(ctx context.Context, contract abi.ABI, addr common.Address, method string) (any, error) {
	input, err := contract.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	start := time.Now()
	out, err := m.caller.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: input}, nil)
	observability.RecordRPCLatency(method, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := contract.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unpack %s: got %d values", method, len(values))
	}
	return values[0], nil
}

var _ TokenMetadataSource = (*ERC20Metadata)(nil)

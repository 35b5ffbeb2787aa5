package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"asset_dashboard/internal/app/port"
	"asset_dashboard/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

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
		erc20MethodID = parsedERC20ABI.Methods["balanceOf"].ID
	})
}

type endpoint struct {
	url    string
	client *ethclient.Client
}

// EVMClient reads native and ERC-20 balances over JSON-RPC batches. The
// primary RPC URL is tried first, then each fallback in order.
type EVMClient struct {
	netDef         entity.NetworkDefinition
	endpoints      []endpoint
	rpcCallTimeout time.Duration
	maxBatchSize   int
	logger         port.Logger
}

var _ port.BalanceSource = (*EVMClient)(nil)

// NewEVMClient creates a new EVM client for the given network definition.
func NewEVMClient(netDef entity.NetworkDefinition, connectionTimeout, rpcCallTimeout time.Duration, maxBatchSize int, logger port.Logger) (*EVMClient, error) {
	initParsedERC20ABI()

	rpcURLs := append([]string{netDef.PrimaryRPCURL}, netDef.FallbackRPCURLs...)
	c := &EVMClient{
		netDef:         netDef,
		rpcCallTimeout: rpcCallTimeout,
		maxBatchSize:   maxBatchSize,
		logger:         logger,
	}

	var lastErr error
	for _, rpcURL := range rpcURLs {
		if rpcURL == "" {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		ec, err := ethclient.DialContext(ctx, rpcURL)
		cancel()
		if err != nil {
			lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
			logger.Warn("Skipping RPC endpoint", "network", netDef.Name, "url", rpcURL, "error", err)
			continue
		}
		c.endpoints = append(c.endpoints, endpoint{url: rpcURL, client: ec})
	}

	if len(c.endpoints) == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("no RPC URL configured")
		}
		return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", netDef.Name, lastErr)
	}
	return c, nil
}

// GetBalances implements port.BalanceSource. Entries that fail individually
// are left nil.
func (c *EVMClient) GetBalances(ctx context.Context, account string, currencies []entity.Currency) ([]*entity.Amount, error) {
	amounts := make([]*entity.Amount, len(currencies))
	if len(currencies) == 0 {
		return amounts, nil
	}
	if !common.IsHexAddress(account) {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidAccount, account)
	}

	requests := make([]entity.BalanceRequestItem, len(currencies))
	for i, currency := range currencies {
		requests[i] = entity.BalanceRequestItem{
			Index:          i,
			Type:           entity.RequestType(currency),
			AccountAddress: account,
			Currency:       currency,
		}
	}

	batchSize := c.maxBatchSize
	if batchSize <= 0 {
		batchSize = len(requests)
	}
	for start := 0; start < len(requests); start += batchSize {
		end := start + batchSize
		if end > len(requests) {
			end = len(requests)
		}

		results, err := c.batchWithFallback(ctx, requests[start:end])
		if err != nil {
			return nil, err
		}
		for _, res := range results {
			if res.Error != nil {
				c.logger.Debug("Balance unavailable", "network", c.netDef.Name, "currency", currencies[res.Index].Symbol, "error", res.Error)
				continue
			}
			amounts[res.Index] = entity.NewAmount(currencies[res.Index], res.Balance)
		}
	}
	return amounts, nil
}

func (c *EVMClient) batchWithFallback(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	var lastErr error
	for _, ep := range c.endpoints {
		results, err := c.batch(ctx, ep, requests)
		if err == nil {
			return results, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		c.logger.Warn("RPC batch call failed, trying next endpoint", "network", c.netDef.Name, "url", ep.url, "error", err)
	}
	return nil, fmt.Errorf("RPC batch call failed for network %s: %w", c.netDef.Name, lastErr)
}

func (c *EVMClient) batch(ctx context.Context, ep endpoint, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	batchElems := make([]rpc.BatchElem, len(requests))
	results := make([]entity.BalanceResultItem, len(requests))

	for i, reqItem := range requests {
		results[i] = entity.BalanceResultItem{Index: reqItem.Index}
		owner := common.HexToAddress(reqItem.AccountAddress)

		switch reqItem.Type {
		case entity.NativeBalanceRequest:
			batchElems[i] = rpc.BatchElem{
				Method: "eth_getBalance",
				Args:   []interface{}{owner, "latest"},
				Result: new(*hexutil.Big),
			}
		case entity.TokenBalanceRequest:
			callData := append(append([]byte{}, erc20MethodID...), common.LeftPadBytes(owner.Bytes(), 32)...)
			callArgs := map[string]interface{}{
				"to":   common.HexToAddress(reqItem.Currency.Address),
				"data": hexutil.Bytes(callData),
			}
			batchElems[i] = rpc.BatchElem{
				Method: "eth_call",
				Args:   []interface{}{callArgs, "latest"},
				Result: new(hexutil.Bytes),
			}
		}
	}

	rpcCallCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	if err := ep.client.Client().BatchCallContext(rpcCallCtx, batchElems); err != nil {
		return nil, err
	}

	for i, elem := range batchElems {
		if elem.Error != nil {
			results[i].Error = fmt.Errorf("failed to fetch %s: %w", requests[i].Currency.Symbol, elem.Error)
			continue
		}
		results[i].Balance, results[i].Error = decodeBalance(requests[i], elem.Result)
	}
	return results, nil
}

func decodeBalance(req entity.BalanceRequestItem, result interface{}) (*big.Int, error) {
	switch req.Type {
	case entity.NativeBalanceRequest:
		if r, ok := result.(**hexutil.Big); ok && r != nil && *r != nil {
			return (*big.Int)(*r), nil
		}
		return nil, fmt.Errorf("failed to decode native balance for %s: unexpected type or nil result", req.Currency.Symbol)
	case entity.TokenBalanceRequest:
		r, ok := result.(*hexutil.Bytes)
		if !ok || r == nil {
			return nil, fmt.Errorf("failed to decode token balance for %s: unexpected type or nil result", req.Currency.Symbol)
		}
		if len(*r) == 0 {
			return big.NewInt(0), nil
		}
		unpacked, err := parsedERC20ABI.Unpack("balanceOf", *r)
		if err != nil {
			return nil, fmt.Errorf("failed to unpack balanceOf result for %s: %w. Raw: %s", req.Currency.Symbol, err, hexutil.Encode(*r))
		}
		if len(unpacked) == 0 {
			return nil, fmt.Errorf("balanceOf unpack returned no data for %s", req.Currency.Symbol)
		}
		balance, ok := unpacked[0].(*big.Int)
		if !ok {
			return nil, fmt.Errorf("failed to assert unpacked balanceOf result to *big.Int for %s. Got: %T", req.Currency.Symbol, unpacked[0])
		}
		return balance, nil
	default:
		return nil, fmt.Errorf("unknown balance request type: %v for %s", req.Type, req.Currency.Symbol)
	}
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Close releases every RPC connection.
func (c *EVMClient) Close() {
	for _, ep := range c.endpoints {
		ep.client.Close()
	}
}

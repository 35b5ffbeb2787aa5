// Package pricesource adapts the external price API clients to port.PriceSource.
package pricesource

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"asset_dashboard/internal/app/port"
	"asset_dashboard/internal/client"
	"asset_dashboard/internal/domain/entity"
	"asset_dashboard/internal/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentBatches = 4

// CoinGecko prices currencies through the CoinGecko simple price endpoints.
type CoinGecko struct {
	client     client.CoinGeckoClient
	vsCurrency string
	batchSize  int
	logger     *zap.Logger
}

var _ port.PriceSource = (*CoinGecko)(nil)

// NewCoinGecko creates a CoinGecko price source quoting in vsCurrency.
func NewCoinGecko(c client.CoinGeckoClient, vsCurrency string, batchSize int, logger *zap.Logger) *CoinGecko {
	if batchSize <= 0 {
		batchSize = 30
	}
	return &CoinGecko{
		client:     c,
		vsCurrency: strings.ToLower(vsCurrency),
		batchSize:  batchSize,
		logger:     logger.Named("CoinGeckoPriceSource"),
	}
}

// Name implements port.PriceSource.
func (s *CoinGecko) Name() string { return "coingecko" }

// FetchReferencePrices implements port.PriceSource. Both currencies are
// requested by CoinGecko id in a single call; a currency without an id is
// looked up by contract instead.
func (s *CoinGecko) FetchReferencePrices(ctx context.Context, chain entity.NetworkDefinition, native, reference entity.Currency) (map[string]decimal.Decimal, error) {
	if native.CoinGeckoID == "" {
		native.CoinGeckoID = chain.CoinGeckoNativeID
	}

	byID := make(map[string]string, 2)
	var byContract []entity.Currency
	for _, c := range []entity.Currency{native, reference} {
		switch {
		case c.CoinGeckoID != "":
			byID[strings.ToLower(c.CoinGeckoID)] = c.ID
		case !c.IsNative && c.Address != "":
			byContract = append(byContract, c)
		default:
			s.logger.Warn("Currency has no CoinGecko id", zap.String("symbol", c.Symbol), zap.Uint64("chainID", chain.ChainID))
		}
	}

	out := make(map[string]decimal.Decimal, 2)
	if len(byID) > 0 {
		ids := make([]string, 0, len(byID))
		for id := range byID {
			ids = append(ids, id)
		}
		quotes, err := s.client.SimplePrice(ctx, ids, s.vsCurrency)
		if err != nil {
			return nil, fmt.Errorf("coingecko reference prices: %w", err)
		}
		for cgID, price := range quotes {
			if currencyID, ok := byID[cgID]; ok {
				out[currencyID] = price
			}
		}
	}
	if len(byContract) > 0 {
		quotes, err := s.FetchTokenPrices(ctx, chain, byContract)
		if err != nil {
			return nil, err
		}
		for id, price := range quotes {
			out[id] = price
		}
	}
	return out, nil
}

// FetchTokenPrices implements port.PriceSource. Addresses are split into
// batches; the call fails only if every batch fails.
func (s *CoinGecko) FetchTokenPrices(ctx context.Context, chain entity.NetworkDefinition, tokens []entity.Currency) (map[string]decimal.Decimal, error) {
	if len(tokens) == 0 {
		return map[string]decimal.Decimal{}, nil
	}
	if chain.CoinGeckoPlatformID == "" {
		return nil, fmt.Errorf("no CoinGecko asset platform for chain %d", chain.ChainID)
	}

	addresses := make([]string, 0, len(tokens))
	for _, t := range tokens {
		addresses = append(addresses, entity.NormalizeID(t.Address))
	}

	var (
		mu       sync.Mutex
		out      = make(map[string]decimal.Decimal, len(tokens))
		failures []error
	)
	batches := utils.BatchStrings(addresses, s.batchSize)

	var g errgroup.Group
	g.SetLimit(maxConcurrentBatches)
	for _, batch := range batches {
		g.Go(func() error {
			quotes, err := s.client.TokenPrice(ctx, chain.CoinGeckoPlatformID, batch, s.vsCurrency)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("CoinGecko token price batch failed", zap.Strings("addresses", batch), zap.Error(err))
				failures = append(failures, err)
				return nil
			}
			for addr, price := range quotes {
				out[entity.NormalizeID(addr)] = price
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) == len(batches) {
		return nil, fmt.Errorf("coingecko token prices: %w", failures[0])
	}
	return out, nil
}

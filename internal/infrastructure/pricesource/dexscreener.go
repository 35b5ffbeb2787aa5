package pricesource

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"asset_dashboard/internal/app/port"
	"asset_dashboard/internal/client"
	"asset_dashboard/internal/domain/entity"
	dexscreener_entity "asset_dashboard/internal/entity"
	"asset_dashboard/internal/pkg/tokens"
	"asset_dashboard/internal/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	stablecoinUSDCSymbol = "USDC"
	stablecoinUSDTSymbol = "USDT"
	stablecoinDAISymbol  = "DAI"
)

var stablecoinSymbols = map[string]struct{}{
	stablecoinUSDCSymbol: {},
	stablecoinUSDTSymbol: {},
	stablecoinDAISymbol:  {},
}

// DEXScreener prices tokens in USD from their most liquid DEX pair.
type DEXScreener struct {
	client    client.DEXScreenerClient
	batchSize int
	logger    *zap.Logger
}

var _ port.PriceSource = (*DEXScreener)(nil)

// NewDEXScreener creates a DEXScreener price source.
func NewDEXScreener(c client.DEXScreenerClient, batchSize int, logger *zap.Logger) *DEXScreener {
	if batchSize <= 0 {
		batchSize = 30
	}
	return &DEXScreener{
		client:    c,
		batchSize: batchSize,
		logger:    logger.Named("DEXScreenerPriceSource"),
	}
}

// Name implements port.PriceSource.
func (s *DEXScreener) Name() string { return "dexscreener" }

// FetchReferencePrices implements port.PriceSource. The native asset is
// priced through its wrapped token.
func (s *DEXScreener) FetchReferencePrices(ctx context.Context, chain entity.NetworkDefinition, native, reference entity.Currency) (map[string]decimal.Decimal, error) {
	wrapped := entity.NormalizeID(tokens.ToErc20Address(native.Symbol, chain))
	if wrapped == native.ID {
		return nil, fmt.Errorf("no wrapped native token for chain %d", chain.ChainID)
	}

	quotes, err := s.fetchBatch(ctx, chain, []string{wrapped, reference.ID})
	if err != nil {
		return nil, fmt.Errorf("dexscreener reference prices: %w", err)
	}

	out := make(map[string]decimal.Decimal, 2)
	if p, ok := quotes[wrapped]; ok {
		out[native.ID] = p
	}
	if p, ok := quotes[reference.ID]; ok {
		out[reference.ID] = p
	}
	return out, nil
}

// FetchTokenPrices implements port.PriceSource.
func (s *DEXScreener) FetchTokenPrices(ctx context.Context, chain entity.NetworkDefinition, currencies []entity.Currency) (map[string]decimal.Decimal, error) {
	if len(currencies) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	addresses := make([]string, 0, len(currencies))
	for _, c := range currencies {
		addresses = append(addresses, entity.NormalizeID(c.Address))
	}

	var (
		mu       sync.Mutex
		out      = make(map[string]decimal.Decimal, len(currencies))
		failures []error
	)
	batches := utils.BatchStrings(addresses, s.batchSize)

	var g errgroup.Group
	g.SetLimit(maxConcurrentBatches)
	for _, batch := range batches {
		g.Go(func() error {
			quotes, err := s.fetchBatch(ctx, chain, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return nil
			}
			for addr, price := range quotes {
				out[addr] = price
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) == len(batches) {
		return nil, fmt.Errorf("dexscreener token prices: %w", failures[0])
	}
	return out, nil
}

func (s *DEXScreener) fetchBatch(ctx context.Context, chain entity.NetworkDefinition, addresses []string) (map[string]decimal.Decimal, error) {
	if chain.DEXScreenerChainID == "" {
		return nil, fmt.Errorf("no DEXScreener chain id for chain %d", chain.ChainID)
	}

	pairsData, err := s.client.GetTokenPairsByAddresses(ctx, chain.DEXScreenerChainID, addresses)
	if err != nil {
		s.logger.Warn("Failed to get token pairs from DEXScreener for batch",
			zap.String("dexChainID", chain.DEXScreenerChainID),
			zap.Strings("tokenAddresses", addresses),
			zap.Error(err))
		return nil, err
	}

	pairsByBaseToken := make(map[string][]dexscreener_entity.PairData)
	for _, pData := range pairsData {
		baseAddrLower := strings.ToLower(pData.BaseToken.Address)
		pairsByBaseToken[baseAddrLower] = append(pairsByBaseToken[baseAddrLower], pData)
	}

	out := make(map[string]decimal.Decimal, len(addresses))
	for _, tokenAddr := range addresses {
		relatedPairs := pairsByBaseToken[strings.ToLower(tokenAddr)]
		if len(relatedPairs) == 0 {
			s.logger.Debug("No pairs returned from DEXScreener for token address", zap.String("tokenAddress", tokenAddr))
			continue
		}
		bestPriceStr := s.selectBestPriceFromPairs(relatedPairs, tokenAddr)
		if bestPriceStr == "" {
			continue
		}
		price, err := decimal.NewFromString(bestPriceStr)
		if err != nil {
			s.logger.Warn("Failed to parse price string from DEXScreener",
				zap.String("priceStr", bestPriceStr),
				zap.String("tokenAddress", tokenAddr),
				zap.Error(err))
			continue
		}
		out[strings.ToLower(tokenAddr)] = price
	}
	return out, nil
}

// selectBestPriceFromPairs selects the best PriceUsd from a list of pairs for a given baseTokenAddress.
// Priority: pairs quoted in a stablecoin with the highest liquidity.
// Fallback: pair with the highest liquidity overall.
func (s *DEXScreener) selectBestPriceFromPairs(pairs []dexscreener_entity.PairData, baseTokenAddress string) string {
	var bestOverallPair *dexscreener_entity.PairData
	var bestStablecoinPair *dexscreener_entity.PairData

	liquidity := func(p *dexscreener_entity.PairData) float64 {
		return utils.SafeDerefFloat64(p.Liquidity, func(l dexscreener_entity.DEXLiquidity) float64 { return l.Usd })
	}

	for i := range pairs {
		pair := &pairs[i]
		if !strings.EqualFold(pair.BaseToken.Address, baseTokenAddress) {
			continue
		}
		if pair.PriceUsd == "" || pair.PriceUsd == "0" {
			continue
		}

		if _, isStablecoin := stablecoinSymbols[strings.ToUpper(pair.QuoteToken.Symbol)]; isStablecoin {
			if bestStablecoinPair == nil || liquidity(pair) > liquidity(bestStablecoinPair) {
				bestStablecoinPair = pair
			}
		}
		if bestOverallPair == nil || liquidity(pair) > liquidity(bestOverallPair) {
			bestOverallPair = pair
		}
	}

	best := bestStablecoinPair
	if best == nil {
		best = bestOverallPair
	}
	if best == nil {
		s.logger.Debug("No suitable price found from pairs",
			zap.String("baseTokenAddress", baseTokenAddress),
			zap.Int("evaluatedPairCount", len(pairs)))
		return ""
	}

	s.logger.Debug("Selected best price from pair",
		zap.String("baseTokenAddress", baseTokenAddress),
		zap.String("pairAddress", best.PairAddress),
		zap.String("priceUsd", best.PriceUsd),
		zap.Float64("liquidityUsd", liquidity(best)),
		zap.String("quoteToken", best.QuoteToken.Symbol))
	return best.PriceUsd
}
